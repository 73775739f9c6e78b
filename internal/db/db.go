package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS telemetry_log (
			line              TEXT,
			event_kind        TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS commands (
			command           TEXT,
			source            TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS scan_summaries (
			scan_id           TEXT PRIMARY KEY,
			kind              TEXT,
			point_count       BIGINT,
			min_distance      DOUBLE,
			max_distance      DOUBLE,
			mean_distance     DOUBLE,
			std_dev           DOUBLE,
			started_at        TIMESTAMP,
			sealed_at         TIMESTAMP
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// RecordTelemetry logs one framed telemetry line. eventKind is the name of
// the event the classifier produced, or empty for noise lines.
func (db *DB) RecordTelemetry(line, eventKind string) error {
	_, err := db.Exec("INSERT INTO telemetry_log (line, event_kind) VALUES (?, ?)", line, eventKind)
	if err != nil {
		return err
	}
	return nil
}

// RecordCommand logs one command sent to the robot. source names the
// surface that issued it (api, admin, move).
func (db *DB) RecordCommand(command, source string) error {
	_, err := db.Exec("INSERT INTO commands (command, source) VALUES (?, ?)", command, source)
	if err != nil {
		return err
	}
	return nil
}

// ScanSummary is the per-scan row persisted when a scan seals.
type ScanSummary struct {
	ScanID       string    `json:"scan_id"`
	Kind         string    `json:"kind"`
	PointCount   int64     `json:"point_count"`
	MinDistance  float64   `json:"min_distance"`
	MaxDistance  float64   `json:"max_distance"`
	MeanDistance float64   `json:"mean_distance"`
	StdDev       float64   `json:"std_dev"`
	StartedAt    time.Time `json:"started_at"`
	SealedAt     time.Time `json:"sealed_at"`
}

func (s *ScanSummary) String() string {
	return fmt.Sprintf(
		"ScanID: %s, Kind: %s, PointCount: %d, MinDistance: %f, MaxDistance: %f, MeanDistance: %f, StdDev: %f",
		s.ScanID,
		s.Kind,
		s.PointCount,
		s.MinDistance,
		s.MaxDistance,
		s.MeanDistance,
		s.StdDev,
	)
}

// RecordScanSummary persists one sealed scan.
func (db *DB) RecordScanSummary(s ScanSummary) error {
	_, err := db.Exec(
		`INSERT INTO scan_summaries (
			scan_id, kind, point_count, min_distance, max_distance,
			mean_distance, std_dev, started_at, sealed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ScanID, s.Kind, s.PointCount, s.MinDistance, s.MaxDistance,
		s.MeanDistance, s.StdDev, s.StartedAt, s.SealedAt,
	)
	if err != nil {
		return err
	}
	return nil
}

// ScanSummaries returns the most recent sealed scans, newest first.
func (db *DB) ScanSummaries() ([]ScanSummary, error) {
	rows, err := db.Query(`SELECT scan_id, kind, point_count, min_distance, max_distance,
			mean_distance, std_dev, started_at, sealed_at
		FROM scan_summaries ORDER BY sealed_at DESC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ScanSummary
	for rows.Next() {
		var s ScanSummary
		if err := rows.Scan(
			&s.ScanID,
			&s.Kind,
			&s.PointCount,
			&s.MinDistance,
			&s.MaxDistance,
			&s.MeanDistance,
			&s.StdDev,
			&s.StartedAt,
			&s.SealedAt,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// LogEntry is one persisted telemetry line.
type LogEntry struct {
	Line      string    `json:"line"`
	EventKind string    `json:"event_kind"`
	Timestamp time.Time `json:"timestamp"`
}

// TelemetryLog returns the most recent telemetry lines, newest first.
func (db *DB) TelemetryLog(limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := db.Query("SELECT line, event_kind, timestamp FROM telemetry_log ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Line, &e.EventKind, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// CommandEntry is one persisted outbound command.
type CommandEntry struct {
	Command   string    `json:"command"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Commands returns the most recent outbound commands, newest first.
func (db *DB) Commands(limit int) ([]CommandEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query("SELECT command, source, timestamp FROM commands ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CommandEntry
	for rows.Next() {
		var e CommandEntry
		if err := rows.Scan(&e.Command, &e.Source, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	// create a tailSQL instance and point it to our DB
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://groundstation.db", db.DB, &tailsql.DBOptions{
		Label: "Groundstation DB",
	})

	// mount the tailSQL server on the debug /tailsql path
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unixTime := time.Now().Unix()
		backupPath := fmt.Sprintf("backup-%d.db", unixTime)
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}

		// close the backup file after sending it
		// and remove it from the filesystem
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()

		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}
