package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/surveysheet/internal/model"
)

// AdminUsername is the operator name accepted with Config.AdminPassword.
const AdminUsername = "admin"

type ctxKey struct{}

func contextWithOperator(ctx context.Context, o *model.Operator) context.Context {
	return context.WithValue(ctx, ctxKey{}, o)
}

// operatorFromContext returns the authenticated operator, or nil.
func operatorFromContext(ctx context.Context) *model.Operator {
	o, _ := ctx.Value(ctxKey{}).(*model.Operator)
	return o
}

// requireAuth checks HTTP basic credentials against the built-in admin
// password and the active operators in the store.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		op, err := h.authenticate(username, password)
		if err != nil {
			slog.Error("failed to authenticate", "username", username, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if op == nil {
			slog.Warn("rejected credentials", "username", username)
			unauthorized(w)
			return
		}

		ctx := contextWithOperator(r.Context(), op)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate returns the operator matching the credentials, or nil.
func (h *Handler) authenticate(username, password string) (*model.Operator, error) {
	if username == AdminUsername && h.config.AdminPassword != "" {
		if subtle.ConstantTimeCompare([]byte(password), []byte(h.config.AdminPassword)) == 1 {
			return &model.Operator{Username: AdminUsername, Active: true}, nil
		}
		return nil, nil
	}

	op, err := h.store.GetOperatorByUsername(username)
	if err != nil {
		return nil, err
	}
	if op == nil || !op.Active {
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	return op, nil
}

// requireAdmin lets only the built-in admin through.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := operatorFromContext(r.Context())
		if op == nil {
			unauthorized(w)
			return
		}
		if op.Username != AdminUsername {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="surveysheet"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
