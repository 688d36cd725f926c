package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vnmchuo/llm-compare/internal/compare"
	"github.com/vnmchuo/llm-compare/internal/storage"
	"github.com/vnmchuo/llm-compare/internal/worker"
)

const (
	maxPromptLength     = 10000 // characters, inclusive
	defaultHistoryLimit = 20
)

type Handler struct {
	orchestrator *compare.Orchestrator
	store        storage.Store
	saver        *worker.Saver
	persistSync  bool
}

// NewHandler wires the comparison endpoints. persistSync selects the
// deployment variant: true saves before responding and surfaces save
// failures as request failures; false responds immediately and hands the
// save to the background saver.
func NewHandler(orchestrator *compare.Orchestrator, store storage.Store, saver *worker.Saver, persistSync bool) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		store:        store,
		saver:        saver,
		persistSync:  persistSync,
	}
}

type compareRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}
	if utf8.RuneCountInString(req.Prompt) > maxPromptLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is too long (max 10000 characters)"})
		return
	}

	log.Printf("[Compare] starting comparison for prompt: %q", truncate(req.Prompt, 50))

	results := h.orchestrator.Compare(r.Context(), req.Prompt)
	log.Printf("[Compare] models settled in %dms (%s)", time.Since(start).Milliseconds(), timingSummary(results))

	if h.persistSync {
		// Once the fan-out settled the write goes through even if the
		// caller has already disconnected.
		comparisonID, err := h.store.Save(context.WithoutCancel(r.Context()), req.Prompt, results)
		if err != nil {
			log.Printf("[Compare] failed to save comparison: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "failed to save comparison",
				"details": err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"comparison_id": comparisonID,
			"responses":     results,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"responses":            results,
		"server_total_time_ms": time.Since(start).Milliseconds(),
	})
	h.saver.Enqueue(worker.SaveJob{Prompt: req.Prompt, Results: results})
}

func (h *Handler) HandleGetComparison(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid comparison id"})
		return
	}

	detail, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "comparison not found"})
		return
	}
	if err != nil {
		log.Printf("[Compare] failed to fetch comparison %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "failed to fetch comparison",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("[Compare] failed to fetch history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "failed to fetch history",
			"details": err.Error(),
		})
		return
	}
	if history == nil {
		history = []storage.ComparisonDetail{}
	}

	writeJSON(w, http.StatusOK, history)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func timingSummary(results []compare.ModelResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.ModelName + ": " + strconv.FormatInt(r.ResponseTimeMs, 10) + "ms"
	}
	return strings.Join(parts, ", ")
}
