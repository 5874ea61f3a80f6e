package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/store"
)

type authContextKey struct{}

type authInfo struct {
	Session store.Session
	User    models.User
}

// requireUser resolves the bearer token into a user before calling next.
func (h *Handler) requireUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		session, user, err := h.store.GetSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			log.Printf("session lookup error: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		ctx := context.WithValue(r.Context(), authContextKey{}, authInfo{Session: session, User: user})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authFromContext(ctx context.Context) authInfo {
	info, _ := ctx.Value(authContextKey{}).(authInfo)
	return info
}

func userID(r *http.Request) string {
	return authFromContext(r.Context()).User.ID
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeValidation(w, []models.ValidationIssue{{Loc: []string{"body"}, Msg: "Invalid form body", Type: "value_error"}})
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	var issues []models.ValidationIssue
	if username == "" {
		issues = append(issues, models.ValidationIssue{Loc: []string{"body", "username"}, Msg: "username: Field required", Type: "missing"})
	}
	if password == "" {
		issues = append(issues, models.ValidationIssue{Loc: []string{"body", "password"}, Msg: "password: Field required", Type: "missing"})
	}
	if len(issues) > 0 {
		writeValidation(w, issues)
		return
	}

	creds, err := h.store.GetCredentials(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "LOGIN_BAD_CREDENTIALS")
			return
		}
		writeStoreError(w, "", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		writeError(w, http.StatusBadRequest, "LOGIN_BAD_CREDENTIALS")
		return
	}

	session, err := h.store.CreateSession(r.Context(), creds.User.ID, time.Now().UTC().Add(h.tokenTTL))
	if err != nil {
		writeStoreError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: session.Token, TokenType: "bearer"})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeStoreError(w, "", err)
		return
	}
	user, err := h.store.CreateUser(r.Context(), req.Email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			writeError(w, http.StatusBadRequest, "REGISTER_USER_ALREADY_EXISTS")
			return
		}
		writeStoreError(w, "", err)
		return
	}
	log.Printf("user registered user_id=%s", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	info := authFromContext(r.Context())
	if err := h.store.DeleteSession(r.Context(), info.Session.Token); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		writeStoreError(w, "", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, authFromContext(r.Context()).User)
}
