package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cybotics/groundstation/internal/config"
	"github.com/cybotics/groundstation/internal/db"
	"github.com/cybotics/groundstation/internal/linemux"
	"github.com/cybotics/groundstation/internal/mapper"
	"github.com/cybotics/groundstation/internal/telemetry"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	m   linemux.Interface
	db  *db.DB
	mp  *mapper.Mapper
	cfg *config.TuningConfig
}

func NewServer(m linemux.Interface, db *db.DB, mp *mapper.Mapper, cfg *config.TuningConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Server{
		m:   m,
		db:  db,
		mp:  mp,
		cfg: cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pose", s.showPose)
	mux.HandleFunc("/api/path", s.showPath)
	mux.HandleFunc("/api/scan", s.showScan)
	mux.HandleFunc("/api/scans", s.listScanSummaries)
	mux.HandleFunc("/api/objects", s.listObjects)
	mux.HandleFunc("/api/features", s.listFeatures)
	mux.HandleFunc("/api/log", s.listTelemetryLog)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/command", s.sendCommandHandler)
	mux.HandleFunc("/api/move", s.sendMoveHandler)
	mux.HandleFunc("/map", s.showMap)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) showPose(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := json.NewEncoder(w).Encode(s.mp.CurrentPose()); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write pose")
		return
	}
}

func (s *Server) showPath(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := json.NewEncoder(w).Encode(s.mp.MovementHistory()); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write path")
		return
	}
}

// scanResponse joins a scan record with its distance statistics.
type scanResponse struct {
	*mapper.ScanRecord
	Stats mapper.ScanStats `json:"stats"`
}

func (s *Server) showScan(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rec := s.mp.ActiveOrLastScan()
	if rec == nil {
		s.writeJSONError(w, http.StatusNotFound, "No scan recorded yet")
		return
	}

	resp := scanResponse{ScanRecord: rec, Stats: mapper.ComputeScanStats(*rec)}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write scan")
		return
	}
}

func (s *Server) listScanSummaries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	summaries, err := s.db.ScanSummaries()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to retrieve scan summaries: %v", err))
		return
	}

	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write scan summaries")
		return
	}
}

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := json.NewEncoder(w).Encode(s.mp.Objects()); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write objects")
		return
	}
}

func (s *Server) listFeatures(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := json.NewEncoder(w).Encode(s.mp.FeatureSamples()); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write features")
		return
	}
}

func (s *Server) listTelemetryLog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 500 // default value
	if l := r.URL.Query().Get("limit"); l != "" {
		parsedLimit, err := strconv.Atoi(l)
		if err != nil || parsedLimit < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsedLimit
	}

	entries, err := s.db.TelemetryLog(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to retrieve telemetry log: %v", err))
		return
	}

	if err := json.NewEncoder(w).Encode(entries); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write telemetry log")
		return
	}
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	resolved := map[string]interface{}{
		"max_range_cm":     s.cfg.GetMaxRangeCM(),
		"initial_x":        s.cfg.GetInitialX(),
		"initial_y":        s.cfg.GetInitialY(),
		"initial_heading":  s.cfg.GetInitialHeading(),
		"serial_baud":      s.cfg.GetSerialBaud(),
		"read_buffer_size": s.cfg.GetReadBufferSize(),
		"poll_interval":    s.cfg.GetPollInterval().String(),
		"move_token_delay": s.cfg.GetMoveTokenDelay().String(),
	}

	if err := json.NewEncoder(w).Encode(resolved); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write config")
		return
	}
}

func (s *Server) sendCommandHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	command := r.FormValue("command")
	if !telemetry.IsAllowedCommand(command) {
		http.Error(w, fmt.Sprintf("Unknown command %q", command), http.StatusBadRequest)
		return
	}

	if err := s.m.SendCommand(command); err != nil {
		http.Error(w, "Failed to send command", http.StatusInternalServerError)
		return
	}
	if s.db != nil {
		if err := s.db.RecordCommand(command, "api"); err != nil {
			log.Printf("failed to record command: %v", err)
		}
	}
	io.WriteString(w, "Command sent successfully")
}

func (s *Server) sendMoveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	distanceMM, err := strconv.Atoi(r.FormValue("distance_mm"))
	if err != nil {
		http.Error(w, "Invalid 'distance_mm' parameter", http.StatusBadRequest)
		return
	}
	turnDegrees, err := strconv.Atoi(r.FormValue("turn_degrees"))
	if err != nil {
		http.Error(w, "Invalid 'turn_degrees' parameter", http.StatusBadRequest)
		return
	}

	if err := telemetry.SendMove(s.m, distanceMM, turnDegrees, s.cfg.GetMoveTokenDelay()); err != nil {
		http.Error(w, "Failed to send move", http.StatusInternalServerError)
		return
	}
	if s.db != nil {
		cmd := fmt.Sprintf("m %d %d", distanceMM, turnDegrees)
		if err := s.db.RecordCommand(cmd, "move"); err != nil {
			log.Printf("failed to record command: %v", err)
		}
	}
	io.WriteString(w, "Move sent successfully")
}
