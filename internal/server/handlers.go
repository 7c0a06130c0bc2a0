package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/internal/search"
	"github.com/hyperjump/gradesearch/internal/storage"
	"go.uber.org/zap"
)

// maxQueryLength bounds the q parameter in runes.
const maxQueryLength = 256

type searchFunc func(ctx context.Context, raw, scope string) (*models.SearchResponse, error)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.serveSearch(w, r, "search", s.engine.Search)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	s.serveSearch(w, r, "autocomplete", s.engine.Autocomplete)
}

func (s *Server) serveSearch(w http.ResponseWriter, r *http.Request, mode string, fn searchFunc) {
	q := r.URL.Query().Get("q")
	scope := r.URL.Query().Get("scope")
	if msg := validateSearchParams(q, scope); msg != "" {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	s.logger.Debug(mode+" request",
		zap.String("query", q),
		zap.String("scope", scope),
		zap.String("http_request_id", middleware.GetReqID(r.Context())))

	resp, err := fn(r.Context(), q, scope)
	if resp == nil {
		s.logger.Error(mode+" failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if err != nil {
		// Per-kind failures are reported in resp.Failures.
		s.logger.Warn(mode+" returned partial results", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func validateSearchParams(q, scope string) string {
	if len([]rune(q)) > maxQueryLength {
		return "query is too long"
	}
	for _, r := range strings.TrimSpace(scope) {
		if !unicode.IsLetter(r) {
			return "scope must be a department abbreviation"
		}
	}
	return ""
}

func (s *Server) handleDescribe(kind models.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		result, err := s.engine.Describe(r.Context(), kind, id)
		switch {
		case err == nil:
			s.respondJSON(w, http.StatusOK, result)
		case errors.Is(err, storage.ErrNotFound):
			s.respondError(w, http.StatusNotFound, string(kind)+" not found")
		case errors.Is(err, search.ErrInvalidKey):
			s.respondError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("describe failed", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.storage.Counts(r.Context())
	if err != nil {
		s.logger.Error("status: counts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"counts": counts,
		"index":  s.engine.IndexName(),
		"caches": s.engine.CacheStats(),
	}

	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"database_path":    s.config.Storage.DatabasePath,
			"bleve_index_path": s.config.Storage.BleveIndexPath,
			"page_size":        s.config.Search.PageSize,
			"candidate_pool":   s.config.Search.CandidatePoolSize,
		}
		paths := storage.DatabaseFiles(s.config.Storage.DatabasePath)
		if s.engine.IndexName() == "bleve" {
			paths = append(paths, s.config.Storage.BleveIndexPath)
		}
		if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePurgeCaches(w http.ResponseWriter, r *http.Request) {
	s.engine.PurgeCaches()
	s.logger.Info("result caches purged", zap.String("http_request_id", middleware.GetReqID(r.Context())))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
