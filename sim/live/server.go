// Package live serves one lab session to a rendering surface: it streams
// snapshots over WebSocket, accepts intents (toggle, reset, record, stop,
// clear), and exposes the export table, the tutor and Prometheus metrics.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/charge-lab/sim"
	"github.com/inference-sim/charge-lab/sim/assistant"
	"github.com/inference-sim/charge-lab/sim/export"
)

// RecentRows is the number of rows in the recent-points table.
const RecentRows = 10

// Config configures the live server.
type Config struct {
	Addr string        `yaml:"addr"`
	Tick time.Duration `yaml:"tick"` // driver period
	Push time.Duration `yaml:"push"` // snapshot broadcast period
}

// DefaultConfig returns :8080 with a ~60 Hz tick and 10 Hz push.
func DefaultConfig() Config {
	return Config{
		Addr: ":8080",
		Tick: 16 * time.Millisecond,
		Push: 100 * time.Millisecond,
	}
}

// SnapshotMessage is pushed to every viewer.
type SnapshotMessage struct {
	Voltage   float64 `json:"voltage"`
	Time      float64 `json:"time"`
	Switch    string  `json:"switch"`
	Recording bool    `json:"recording"`
	Samples   int     `json:"samples"`
}

// IntentMessage is sent by a viewer.
type IntentMessage struct {
	Intent string `json:"intent"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

type seriesResponse struct {
	Points []sim.DataPoint   `json:"points"`
	Recent []export.LogPoint `json:"recent"`
}

// NewSnapshotMessage converts a session snapshot to its wire form.
func NewSnapshotMessage(snap sim.Snapshot) SnapshotMessage {
	return SnapshotMessage{
		Voltage:   snap.State.Voltage,
		Time:      snap.State.Time,
		Switch:    string(snap.State.Switch),
		Recording: snap.Recording,
		Samples:   len(snap.Series),
	}
}

// Server exposes a driven session over HTTP and WebSocket.
type Server struct {
	cfg      Config
	driver   *sim.Driver
	session  *sim.Session
	tutor    *assistant.Tutor
	registry *prometheus.Registry
	hub      *hub
	upgrader websocket.Upgrader
}

// NewServer wires the driver's session metrics into a fresh registry.
func NewServer(cfg Config, d *sim.Driver, tutor *assistant.Tutor) (*Server, error) {
	if cfg.Tick <= 0 || cfg.Push <= 0 {
		return nil, fmt.Errorf("live tick and push periods must be > 0 (tick=%v push=%v)", cfg.Tick, cfg.Push)
	}
	reg := prometheus.NewRegistry()
	if err := d.Session().Metrics().Register(reg); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("registering go collector: %w", err)
	}
	return &Server{
		cfg:      cfg,
		driver:   d,
		session:  d.Session(),
		tutor:    tutor,
		registry: reg,
		hub:      newHub(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /intent", s.handleIntent)
	mux.HandleFunc("GET /series", s.handleSeries)
	mux.HandleFunc("GET /export.csv", s.handleExport)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Broadcast pushes the latest snapshot to every viewer each Push period until
// ctx is done.
func (s *Server) Broadcast(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Push)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.hub.closeAll()
			return ctx.Err()
		case <-ticker.C:
			if s.hub.len() == 0 {
				continue
			}
			b, err := json.Marshal(NewSnapshotMessage(s.session.Snapshot()))
			if err != nil {
				logrus.Errorf("encoding snapshot: %v", err)
				continue
			}
			s.hub.broadcastText(b)
		}
	}
}

// ListenAndServe runs the driver, the broadcast loop and the HTTP server until
// ctx is done, then shuts the server down. It returns only after the driver
// has stopped, so the caller owns the session again.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.driver.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = s.Broadcast(ctx)
	}()

	errc := make(chan error, 1)
	go func() {
		logrus.Infof("live session on %s", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logrus.Info("live session stopped")
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.hub.add(conn)
	defer func() {
		s.hub.remove(conn)
		_ = conn.Close()
	}()

	for {
		var msg IntentMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				logrus.Debugf("ignoring malformed viewer message: %v", err)
				continue
			}
			return
		}
		s.submit(msg.Intent)
	}
}

func (s *Server) submit(raw string) (int, error) {
	in, err := sim.ParseIntent(raw)
	if err != nil {
		logrus.Debugf("rejecting intent: %v", err)
		return http.StatusBadRequest, err
	}
	if !s.driver.Submit(in) {
		return http.StatusServiceUnavailable, errors.New("intent queue full")
	}
	return http.StatusAccepted, nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewSnapshotMessage(s.session.Snapshot()))
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var msg IntentMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid intent body", http.StatusBadRequest)
		return
	}
	status, err := s.submit(msg.Intent)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(status)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	series := s.session.Snapshot().Series
	if series == nil {
		series = []sim.DataPoint{}
	}
	writeJSON(w, http.StatusOK, seriesResponse{
		Points: series,
		Recent: export.Recent(series, RecentRows),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	series := s.session.Snapshot().Series
	if len(series) == 0 {
		http.Error(w, export.ErrNoData.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="experiment_data.csv"`)
	if err := export.WriteCSV(w, series); err != nil {
		logrus.Errorf("writing export: %v", err)
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.tutor == nil {
		http.Error(w, "assistant disabled", http.StatusNotFound)
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid ask body", http.StatusBadRequest)
		return
	}
	reply := s.tutor.Ask(r.Context(), req.Question, s.session.Snapshot().State)
	writeJSON(w, http.StatusOK, askResponse{Reply: reply})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("encoding response: %v", err)
	}
}
