package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ideaspark/internal/auth"
	"ideaspark/internal/journal"
)

type JournalHandler struct {
	Svc *journal.Service
	Log *zap.Logger
}

type journalDTO struct {
	Key        string              `json:"key"`
	Owner      uuid.UUID           `json:"owner"`
	Streak     uint64              `json:"streak"`
	LastLogged int64               `json:"last_logged"`
	CreatedAt  int64               `json:"created_at"`
	LastIdea   string              `json:"last_idea"`
	Ideas      []journal.IdeaEntry `json:"ideas"`
}

func toDTO(key journal.Key, j *journal.Journal) journalDTO {
	ideas := j.Ideas
	if ideas == nil {
		ideas = []journal.IdeaEntry{}
	}
	return journalDTO{
		Key:        key.String(),
		Owner:      j.Owner,
		Streak:     j.Streak,
		LastLogged: j.LastLogged,
		CreatedAt:  j.CreatedAt,
		LastIdea:   j.LastIdea,
		Ideas:      ideas,
	}
}

type logIdeaReq struct {
	Text string `json:"text"`
}

// Initialize creates the caller's journal.
func (h *JournalHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	j, err := h.Svc.InitializeJournal(r.Context(), uid)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(journal.Derive(uid), j))
}

func (h *JournalHandler) LogIdea(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	key, ok := h.targetKey(w, r, uid)
	if !ok {
		return
	}

	var req logIdeaReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	j, err := h.Svc.LogIdea(r.Context(), uid, key, req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(key, j))
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	key, ok := h.targetKey(w, r, uid)
	if !ok {
		return
	}

	_, j, err := h.Svc.GetStreak(r.Context(), uid, key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(key, j))
}

func (h *JournalHandler) Streak(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	key, ok := h.targetKey(w, r, uid)
	if !ok {
		return
	}

	streak, j, err := h.Svc.GetStreak(r.Context(), uid, key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"key":         key.String(),
		"streak":      streak,
		"last_logged": j.LastLogged,
	})
}

// targetKey is the {key} URL param when present, else the caller's own key.
func (h *JournalHandler) targetKey(w http.ResponseWriter, r *http.Request, uid uuid.UUID) (journal.Key, bool) {
	raw := chi.URLParam(r, "key")
	if raw == "" {
		return journal.Derive(uid), true
	}
	key, err := journal.ParseKey(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "InvalidKey", Message: err.Error()})
		return journal.Key{}, false
	}
	return key, true
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *JournalHandler) writeError(w http.ResponseWriter, err error) {
	kind, ok := journal.KindOf(err)
	if !ok {
		serverError(w, h.Log, "journal operation", err)
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case journal.KindUnauthorized:
		status = http.StatusForbidden
	case journal.KindAlreadyInitialized:
		status = http.StatusConflict
	case journal.KindEmptyIdea, journal.KindIdeaTooLong:
		status = http.StatusBadRequest
	case journal.KindRecordNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorBody{Error: string(kind), Message: err.Error()})
}
