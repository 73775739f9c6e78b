package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cybotics/groundstation/internal/api"
	"github.com/cybotics/groundstation/internal/config"
	"github.com/cybotics/groundstation/internal/db"
	"github.com/cybotics/groundstation/internal/linemux"
	"github.com/cybotics/groundstation/internal/mapper"
	"github.com/cybotics/groundstation/internal/telemetry"
)

var (
	devMode       = flag.Bool("dev", false, "Run in dev mode (replay fixtures.txt instead of a live robot)")
	listen        = flag.String("listen", ":8080", "Listen address")
	serialPort    = flag.String("serial", "/dev/ttyUSB0", "Serial port to use (ignored in dev mode)")
	robotAddr     = flag.String("robot", "", "Robot TCP address (host:port); takes precedence over -serial")
	disableRobot  = flag.Bool("disable-robot", false, "Run without any robot transport (API and map only)")
	dbFile        = flag.String("db", "groundstation.db", "SQLite database path")
	configFile    = flag.String("config", "", "Tuning config JSON path (optional)")
	migrationsDir = flag.String("migrations", "migrations", "Migrations directory")
	runMigrations = flag.Bool("migrate", false, "Apply pending database migrations at startup")
	fixturesFile  = flag.String("fixtures", "fixtures.txt", "Telemetry fixture file replayed in dev mode")
)

// eventKindName names a classified event for the telemetry log. Noise lines
// log with an empty kind.
func eventKindName(ev telemetry.Event) string {
	switch ev.(type) {
	case telemetry.Movement:
		return "Movement"
	case telemetry.ScanBegin:
		return "ScanBegin"
	case telemetry.ScanRow:
		return "ScanRow"
	case telemetry.ScanComplete:
		return "ScanComplete"
	case telemetry.DetectionHeader:
		return "DetectionHeader"
	case telemetry.DetectionRow:
		return "DetectionRow"
	case telemetry.FeatureMark:
		return "FeatureMark"
	default:
		return ""
	}
}

func handleLine(mp *mapper.Mapper, database *db.DB, line string) {
	ev := mp.HandleLine(line)
	kind := ""
	if ev != nil {
		kind = eventKindName(ev)
	}
	if err := database.RecordTelemetry(line, kind); err != nil {
		log.Printf("failed to record telemetry line: %v", err)
	}
}

func buildMux(cfg *config.TuningConfig) (linemux.Interface, error) {
	pollInterval := cfg.GetPollInterval()
	bufSize := cfg.GetReadBufferSize()

	switch {
	case *disableRobot:
		return linemux.NewDisabledLineMux(), nil
	case *devMode:
		data, err := os.ReadFile(*fixturesFile)
		if err != nil {
			return nil, err
		}
		m := linemux.NewMockLineMux(data, 5*time.Second)
		m.Tune(pollInterval, bufSize)
		return m, nil
	case *robotAddr != "":
		m, err := linemux.NewTCPLineMux(*robotAddr)
		if err != nil {
			return nil, err
		}
		m.Tune(pollInterval, bufSize)
		return m, nil
	default:
		opts := linemux.PortOptions{BaudRate: cfg.GetSerialBaud()}
		m, err := linemux.NewSerialLineMux(*serialPort, opts)
		if err != nil {
			return nil, err
		}
		m.Tune(pollInterval, bufSize)
		return m, nil
	}
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyTuningConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	robot, err := buildMux(cfg)
	if err != nil {
		log.Fatalf("failed to create robot transport: %v", err)
	}
	defer robot.Close()

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if *runMigrations {
		if err := database.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
		log.Printf("database migrations applied")
	}

	mp := mapper.New(mapper.Options{
		InitialPose: mapper.Pose{
			X:       cfg.GetInitialX(),
			Y:       cfg.GetInitialY(),
			Heading: cfg.GetInitialHeading(),
		},
		MaxRange: cfg.GetMaxRangeCM(),
		OnScanSealed: func(rec mapper.ScanRecord) {
			stats := mapper.ComputeScanStats(rec)
			summary := db.ScanSummary{
				ScanID:       rec.ID.String(),
				Kind:         string(rec.Kind),
				PointCount:   int64(stats.Count),
				MinDistance:  stats.MinDistance,
				MaxDistance:  stats.MaxDistance,
				MeanDistance: stats.MeanDistance,
				StdDev:       stats.StdDev,
				StartedAt:    rec.StartedAt,
				SealedAt:     rec.SealedAt,
			}
			if err := database.RecordScanSummary(summary); err != nil {
				log.Printf("failed to record scan summary: %v", err)
			}
		},
	})

	// Create a wait group for the HTTP server, transport monitor, and
	// telemetry handler routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the monitor routine to manage IO on the robot transport
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := robot.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor robot transport: %v", err)
		}
		log.Print("monitor routine terminated")
	}()

	// subscribe to the telemetry lines and pass them to the mapper
	wg.Add(1)
	go func() {
		defer wg.Done()
		id, c := robot.Subscribe()
		defer robot.Unsubscribe(id)
		for {
			select {
			case line, ok := <-c:
				if !ok {
					log.Printf("telemetry channel closed")
					return
				}
				handleLine(mp, database, line)
			case <-ctx.Done():
				log.Printf("telemetry routine terminated")
				return
			}
		}
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		// create a new API server instance using the robot transport,
		// database, and mapper, and mount the API handlers
		mux := api.NewServer(robot, database, mp, cfg).ServeMux()

		robot.AttachAdminRoutes(mux)
		database.AttachAdminRoutes(mux)

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			// Force close the server if graceful shutdown fails
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
