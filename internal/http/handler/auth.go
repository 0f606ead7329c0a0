package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"ideaspark/internal/auth"
)

type AuthHandler struct {
	Users auth.Users
	JWT   *auth.JWT
	Log   *zap.Logger
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		serverError(w, h.Log, "hash password", err)
		return
	}

	u := auth.NewUser(req.Email, hash)
	if err := h.Users.Create(r.Context(), u); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			http.Error(w, "email already used", http.StatusConflict)
			return
		}
		serverError(w, h.Log, "create user", err)
		return
	}

	h.writeToken(w, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) {
			serverError(w, h.Log, "find user", err)
			return
		}
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.writeToken(w, u)
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, u auth.User) {
	token, err := h.JWT.Sign(u.ID)
	if err != nil {
		serverError(w, h.Log, "sign token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"user_id": u.ID,
	})
}
