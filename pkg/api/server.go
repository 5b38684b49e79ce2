// Package api exposes a small HTTP control surface over a running ACS
// controller: current state-machine phase, the last persisted decision,
// and a way to trigger a fresh sweep on demand.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/open-acs/acsd/pkg/acs"
	"github.com/open-acs/acsd/pkg/audit"
	"github.com/open-acs/acsd/pkg/logx"
)

// TriggerFunc starts a fresh ACS invocation; the daemon's event loop
// supplies this, since only it owns the driver callback sequence.
type TriggerFunc func(ctx context.Context) (acs.Status, error)

// Server is acsd's HTTP control-plane API.
type Server struct {
	ctrl    *acs.Controller
	auditDB *audit.DecisionLogger
	trigger TriggerFunc
	config  *Config
	logger  *logx.Logger

	startTime time.Time
}

// Config holds API server configuration.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	AuthHash string `json:"auth_hash"` // bcrypt hash of the control secret; empty disables auth
}

// NewServer builds a Server over ctrl, using auditDB for history queries and
// trigger to start a new sweep on demand.
func NewServer(ctrl *acs.Controller, auditDB *audit.DecisionLogger, trigger TriggerFunc, config *Config, logger *logx.Logger) *Server {
	if config == nil {
		config = &Config{Enabled: false, Host: "localhost", Port: 8480}
	}
	return &Server{
		ctrl:      ctrl,
		auditDB:   auditDB,
		trigger:   trigger,
		config:    config,
		logger:    logger,
		startTime: time.Now(),
	}
}

// authMiddleware enforces the bcrypt-hashed control secret, when configured.
// Anonymous access is allowed only when AuthHash is empty.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.AuthHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.Query().Get("auth")
		if key == "" {
			key = r.Header.Get("X-API-Key")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(s.config.AuthHash), []byte(key)); err != nil {
			s.logger.Warn("rejected unauthenticated api request", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// Start launches the HTTP server in a background goroutine; a no-op when
// disabled in config.
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("acs api server is disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.authMiddleware(s.handleStatus))
	mux.HandleFunc("/api/run", s.authMiddleware(s.handleRun))
	mux.HandleFunc("/api/history", s.authMiddleware(s.handleHistory))
	mux.HandleFunc("/api/stats", s.authMiddleware(s.handleStats))
	mux.HandleFunc("/api/health", s.authMiddleware(s.handleHealth))

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting acs api server", "address", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			s.logger.Error("acs api server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	channel, chosen := s.ctrl.ChosenChannel()
	s.sendJSON(w, map[string]interface{}{
		"state":             s.ctrl.State().String(),
		"cursor":            s.ctrl.Cursor(),
		"completed_surveys": s.ctrl.CompletedSurveys(),
		"chosen_channel":    channel,
		"channel_chosen":    chosen,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	status, err := s.trigger(r.Context())
	if err != nil {
		s.sendError(w, http.StatusConflict, "acs invocation failed", err)
		return
	}
	s.sendJSON(w, map[string]interface{}{"status": status.String()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	records, err := s.auditDB.RecentDecisions(time.Now().Add(-7*24*time.Hour), limit)
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "failed to fetch history", err)
		return
	}
	s.sendJSON(w, map[string]interface{}{"decisions": records})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.auditDB.StatsSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "failed to compute stats", err)
		return
	}
	s.sendJSON(w, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode api response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) sendError(w http.ResponseWriter, statusCode int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := map[string]interface{}{"error": message}
	if err != nil {
		resp["details"] = err.Error()
	}
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		s.logger.Error("failed to encode api error response", "error", encErr)
	}
}

// HashSecret bcrypt-hashes a control secret for storage in Config.AuthHash.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}
