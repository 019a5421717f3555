// Package webhook receives Oura notification callbacks and triggers a
// calendar shift run for each new sleep session.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/corbaltcode/calendar-shift/core"
)

const (
	DefaultAddr         = "0.0.0.0:5050"
	DefaultMaxBodyBytes = int64(1 << 20)
	DefaultReadTimeout  = 15 * time.Second
	// A run makes blocking calls to two provider APIs, so response
	// writes get a generous bound.
	DefaultWriteTimeout = 2 * time.Minute
	DefaultIdleTimeout  = 60 * time.Second
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw body, keyed by
// the subscription's verification token.
const SignatureHeader = "X-Oura-Signature"

// Settings configures the webhook listener. The zero value is usable;
// unset fields fall back to defaults. Secret empty means signature
// checks are skipped.
type Settings struct {
	Addr         string
	Secret       string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SettingsFromEnv builds Settings from WEBHOOKD_ADDR and
// OURA_WEBHOOK_TOKEN.
func SettingsFromEnv() Settings {
	s := Settings{
		Addr:   strings.TrimSpace(os.Getenv("WEBHOOKD_ADDR")),
		Secret: os.Getenv("OURA_WEBHOOK_TOKEN"),
	}
	s.normalize()
	return s
}

func (s *Settings) normalize() {
	if strings.TrimSpace(s.Addr) == "" {
		s.Addr = DefaultAddr
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
}

// Notification is the body Oura posts when subscribed data changes.
type Notification struct {
	EventType string `json:"event_type"`
	DataType  string `json:"data_type"`
	ObjectID  string `json:"object_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// RunFunc starts one shift run and reports what it did.
type RunFunc func() (*core.RunResult, error)

type Logger interface {
	Printf(format string, args ...any)
}

// Server wraps the HTTP listener and handlers for Oura callbacks.
type Server struct {
	settings Settings
	run      RunFunc
	logger   Logger
	clock    func() time.Time

	server   *http.Server
	listener net.Listener
}

type Option func(*Server)

func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewServer(settings Settings, run RunFunc, opts ...Option) *Server {
	settings.normalize()
	s := &Server{
		settings: settings,
		run:      run,
		logger:   log.Default(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler exposes the route table without binding a listener, for
// serving through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/webhook/oura", s.handleOura)
	return mux
}

// Start binds the TCP listener and begins serving in the background.
func (s *Server) Start() error {
	if s.listener != nil {
		return errors.New("webhook: server already started")
	}
	listener, err := net.Listen("tcp", s.settings.Addr)
	if err != nil {
		return fmt.Errorf("webhook: listen %s: %w", s.settings.Addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("webhook: serve error: %v", err)
		}
	}()
	s.logger.Printf("webhook: listening on %s", listener.Addr())
	return nil
}

// Shutdown stops accepting connections and waits for in-flight
// requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.clock().Format(time.RFC3339),
	})
}

func (s *Server) handleOura(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleVerification(w, r)
	case http.MethodPost:
		s.handleNotification(w, r)
	default:
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodPost))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// handleVerification answers the subscription challenge Oura sends when
// a webhook subscription is created.
func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	if challenge := r.URL.Query().Get("challenge"); challenge != "" {
		s.logger.Printf("webhook: verification challenge received")
		writeJSON(w, http.StatusOK, map[string]string{"challenge": challenge})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	s.logger.Printf("webhook: received notification")

	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload exceeds limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unable to read body"})
		return
	}

	if s.settings.Secret != "" && !validSignature(s.settings.Secret, body, r.Header.Get(SignatureHeader)) {
		s.logger.Printf("webhook: invalid signature")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	var note Notification
	if err := json.Unmarshal(body, &note); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	s.logger.Printf("webhook: event %s, data type %s", note.EventType, note.DataType)

	if note.DataType != "sleep" || note.EventType != "create" {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ignored", "reason": "not sleep create event"})
		return
	}

	s.logger.Printf("webhook: new sleep data, running calendar shift")
	result, err := s.run()
	if err != nil {
		s.logger.Printf("webhook: run failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "processed", "result": result})
}

func validSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
