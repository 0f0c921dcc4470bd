package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/surveysheet/internal/model"
)

func (h *Handler) handleListOperators(w http.ResponseWriter, r *http.Request) {
	ops, err := h.store.ListOperators()
	if err != nil {
		slog.Error("failed to list operators", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ops == nil {
		ops = []model.Operator{}
	}
	writeJSON(w, http.StatusOK, ops)
}

func (h *Handler) handleCreateOperator(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}
	if username == AdminUsername {
		http.Error(w, "username is reserved", http.StatusConflict)
		return
	}
	existing, err := h.store.GetOperatorByUsername(username)
	if err != nil {
		slog.Error("failed to look up operator", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "operator already exists", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	op := model.Operator{Username: username, PasswordHash: string(hash), Active: true}
	op.ID, err = h.store.CreateOperator(op)
	if err != nil {
		http.Error(w, "failed to create operator: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, op)
}

func (h *Handler) handleSetOperatorActive(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	active, err := strconv.ParseBool(r.FormValue("active"))
	if err != nil {
		http.Error(w, "active must be true or false", http.StatusBadRequest)
		return
	}

	if err := h.store.SetOperatorActive(username, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "operator not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to update operator", "username", username, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("operator updated", "username", username, "active", active)
	w.WriteHeader(http.StatusNoContent)
}
