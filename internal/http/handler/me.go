package handler

import (
	"net/http"

	"ideaspark/internal/auth"
	"ideaspark/internal/journal"
)

type MeHandler struct{}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     uid,
		"journal_key": journal.Derive(uid).String(),
	})
}
