// Package records serves the same six REST endpoints as the hosted
// mock API, so the app can run against a local backend.
package records

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"max.ks1230/expenses-app/internal/entity/entry"
	"max.ks1230/expenses-app/internal/entity/identity"
	"max.ks1230/expenses-app/internal/logger"
	"max.ks1230/expenses-app/internal/model/storage"
)

type recordStorage interface {
	ListUsers(ctx context.Context, username string) ([]identity.Record, error)
	CreateUser(ctx context.Context, rec identity.Record) (identity.Record, error)
	ListEntries(ctx context.Context) ([]entry.Record, error)
	CreateEntry(ctx context.Context, rec entry.Record) (entry.Record, error)
	UpdateEntry(ctx context.Context, rec entry.Record) (entry.Record, error)
	DeleteEntry(ctx context.Context, id string) error
}

type Server struct {
	storage recordStorage
	server  *http.Server
}

func NewServer(addr string, storage recordStorage) *Server {
	s := &Server{storage: storage}

	mux := http.NewServeMux()
	mux.Handle("/users", observed("users", http.HandlerFunc(s.handleUsers)))
	mux.Handle("/expenses", observed("expenses", http.HandlerFunc(s.handleExpenses)))
	mux.Handle("/expenses/", observed("expense", http.HandlerFunc(s.handleExpenseByID)))
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *Server) ListenAndServe() error {
	logger.Info("record service listening", zap.String("addr", s.server.Addr))
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "record service")
}

func (s *Server) Shutdown(ctx context.Context) {
	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("record service shutdown", zap.Error(err))
	}
	logger.Info("record service stopped")
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.storage.ListUsers(r.Context(), r.URL.Query().Get("username"))
		if err != nil {
			internalError(w, err)
			return
		}
		payload := make([]userPayload, 0, len(users))
		for _, u := range users {
			payload = append(payload, newUserPayload(u))
		}
		writeJSON(w, http.StatusOK, payload)
	case http.MethodPost:
		var p userPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		created, err := s.storage.CreateUser(r.Context(), p.toRecord())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newUserPayload(created))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.storage.ListEntries(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		payload := make([]entryPayload, 0, len(entries))
		for _, e := range entries {
			payload = append(payload, newEntryPayload(e))
		}
		writeJSON(w, http.StatusOK, payload)
	case http.MethodPost:
		var p entryPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		created, err := s.storage.CreateEntry(r.Context(), p.toRecord())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newEntryPayload(created))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/expenses/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var p entryPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		rec := p.toRecord()
		rec.ID = id
		updated, err := s.storage.UpdateEntry(r.Context(), rec)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newEntryPayload(updated))
	case http.MethodDelete:
		err := s.storage.DeleteEntry(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding response", zap.Error(err))
	}
}

func internalError(w http.ResponseWriter, err error) {
	logger.Error("storage error", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

type userPayload struct {
	ID        string `json:"id,omitempty"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Password  string `json:"password"`
	CreatedAt string `json:"createdAt"`
}

func newUserPayload(rec identity.Record) userPayload {
	return userPayload{
		ID:        rec.ID,
		Username:  rec.Username,
		Name:      rec.Name,
		Password:  rec.Password,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}
}

func (p userPayload) toRecord() identity.Record {
	created, _ := time.Parse(time.RFC3339, p.CreatedAt)
	return identity.Record{
		Username:  p.Username,
		Name:      p.Name,
		Password:  p.Password,
		CreatedAt: created,
	}
}

type entryPayload struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Type        string `json:"type,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
	Username    string `json:"username"`
	CreatedAt   string `json:"createdAt"`
}

func newEntryPayload(rec entry.Record) entryPayload {
	return entryPayload{
		ID:          rec.ID,
		Name:        rec.Title,
		Amount:      strconv.FormatFloat(rec.Amount, 'f', 2, 64),
		Type:        string(rec.Type),
		Category:    string(rec.Category),
		Description: rec.Notes,
		Username:    rec.Username,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

func (p entryPayload) toRecord() entry.Record {
	amount, _ := strconv.ParseFloat(p.Amount, 64)
	created, _ := time.Parse(time.RFC3339, p.CreatedAt)

	typ := entry.Type(p.Type)
	if typ != entry.TypeIncome && typ != entry.TypeExpense {
		typ = entry.TypeExpense
	}

	return entry.Record{
		Title:     p.Name,
		Amount:    amount,
		Type:      typ,
		Category:  entry.NormalizeCategory(p.Category),
		Notes:     p.Description,
		Username:  p.Username,
		CreatedAt: created,
	}
}
