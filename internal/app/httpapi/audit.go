package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/glosslab/salon-service/internal/middleware"
)

// AuditEntry is one recorded API request.
type AuditEntry struct {
	Time       time.Time `json:"time"`
	User       string    `json:"user"`
	Role       string    `json:"role"`
	Path       string    `json:"path"`
	Method     string    `json:"method"`
	Status     int       `json:"status"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// AuditSink persists entries beyond the in-memory ring.
type AuditSink interface {
	Write(entry AuditEntry) error
}

// AuditTrail keeps the most recent API requests in memory and optionally
// forwards them to a sink.
type AuditTrail struct {
	mu      sync.Mutex
	entries []AuditEntry
	max     int
	sink    AuditSink
}

// NewAuditTrail creates a trail holding up to max entries.
func NewAuditTrail(max int, sink AuditSink) *AuditTrail {
	if max <= 0 {
		max = 200
	}
	return &AuditTrail{max: max, sink: sink}
}

func (t *AuditTrail) add(entry AuditEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.max {
		t.entries = t.entries[len(t.entries)-t.max:]
	}
	if t.sink != nil {
		// Best-effort persistence; ignore errors to avoid impacting request flow.
		_ = t.sink.Write(entry)
	}
}

func (t *AuditTrail) list(limit int) []AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	if limit <= 0 || limit > t.max {
		limit = t.max
	}
	all := t.entries
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]AuditEntry, len(all))
	copy(out, all)
	return out
}

// Wrap records every request passing through the handler.
func (t *AuditTrail) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &auditRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		t.add(AuditEntry{
			Time:       time.Now().UTC(),
			User:       middleware.GetUserID(r.Context()),
			Role:       middleware.GetRole(r.Context()),
			Path:       r.URL.Path,
			Method:     r.Method,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

// Handler serves the recent entries as JSON. Mount behind admin auth.
func (t *AuditTrail) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				limit = n
			}
		}
		writeJSON(w, http.StatusOK, t.list(limit))
	})
}

type auditRecorder struct {
	http.ResponseWriter
	status int
}

func (r *auditRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// FileAuditSink appends audit entries as JSONL.
type FileAuditSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileAuditSink opens path for appending. An empty path yields a nil sink.
func NewFileAuditSink(path string) (*FileAuditSink, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	return &FileAuditSink{file: f}, nil
}

func (s *FileAuditSink) Write(entry AuditEntry) error {
	if s == nil || s.file == nil {
		return nil
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.file.Write(append(b, '\n'))
	return err
}
