package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/store"
)

type Handler struct {
	store    store.Store
	tokenTTL time.Duration
}

type Options struct {
	TokenTTL time.Duration
}

type errorResponse struct {
	Detail any `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func NewHandler(store store.Store, options Options) *Handler {
	ttl := options.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Handler{store: store, tokenTTL: ttl}
}

// Routes serves the API under prefix (e.g. "/api/v1") and /healthz at the root.
func (h *Handler) Routes(prefix string) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /auth/jwt/login", h.handleLogin)
	api.HandleFunc("POST /auth/register", h.handleRegister)
	api.Handle("POST /auth/jwt/logout", h.requireUser(h.handleLogout))
	api.Handle("GET /users/me", h.requireUser(h.handleMe))

	api.Handle("GET /folders/dashboard", h.requireUser(h.handleDashboard))
	api.Handle("POST /folders/{$}", h.requireUser(h.handleCreateFolder))
	api.Handle("GET /folders/{id}", h.requireUser(h.handleGetFolder))
	api.Handle("PUT /folders/{id}", h.requireUser(h.handleUpdateFolder))
	api.Handle("DELETE /folders/{id}", h.requireUser(h.handleDeleteFolder))
	api.Handle("GET /folders/{id}/applications", h.requireUser(h.handleFolderApplications))

	api.Handle("GET /applications/{$}", h.requireUser(h.handleListApplications))
	api.Handle("POST /applications/{$}", h.requireUser(h.handleCreateApplication))
	api.Handle("GET /applications/{id}", h.requireUser(h.handleGetApplication))
	api.Handle("PUT /applications/{id}", h.requireUser(h.handleUpdateApplication))
	api.Handle("DELETE /applications/{id}", h.requireUser(h.handleDeleteApplication))

	api.Handle("GET /selects/{$}", h.requireUser(h.handleListSelects))
	api.Handle("POST /selects/{kind}", h.requireUser(h.handleCreateSelect))
	api.Handle("PUT /selects/{kind}/{id}", h.requireUser(h.handleUpdateSelect))
	api.Handle("DELETE /selects/{kind}/{id}", h.requireUser(h.handleDeleteSelect))

	api.Handle("GET /search/{$}", h.requireUser(h.handleSearch))

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", h.handleHealth)
	if prefix == "" || prefix == "/" {
		root.Handle("/", api)
	} else {
		root.Handle(prefix+"/", http.StripPrefix(prefix, api))
	}
	return root
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeValidation(w http.ResponseWriter, issues []models.ValidationIssue) {
	writeError(w, http.StatusUnprocessableEntity, issues)
}

// decodeBody reads a JSON body into dst and validates it. It writes the 422
// response itself and reports false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeValidation(w, []models.ValidationIssue{{Loc: []string{"body"}, Msg: "JSON decode error: " + err.Error(), Type: "json_invalid"}})
		return false
	}
	if err := models.Validate(dst); err != nil {
		writeStoreError(w, "", err)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeValidation(w, []models.ValidationIssue{{Loc: []string{"path", name}, Msg: "Input should be a valid integer", Type: "int_parsing"}})
		return 0, false
	}
	return id, true
}

func listQuery(w http.ResponseWriter, r *http.Request) (models.ListQuery, bool) {
	q, err := models.ParseListQuery(r.URL.Query(), 10)
	if err != nil {
		writeStoreError(w, "", err)
		return q, false
	}
	return q, true
}

// writeStoreError maps store and validation errors to API responses. resource
// names the entity in 404 details, e.g. "Folder".
func writeStoreError(w http.ResponseWriter, resource string, err error) {
	var verr *models.ValidationError
	var refErr *store.ReferenceError
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr.Issues)
	case errors.As(err, &refErr):
		writeValidation(w, []models.ValidationIssue{{Loc: []string{"body", refErr.Field}, Msg: refErr.Error(), Type: "value_error"}})
	case errors.Is(err, store.ErrNotFound):
		if resource == "" {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		writeError(w, http.StatusNotFound, resource+" not found")
	case errors.Is(err, store.ErrForbidden):
		writeError(w, http.StatusForbidden, "Not authorized")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusBadRequest, "An option with this title already exists.")
	default:
		log.Printf("store error resource=%s: %v", resource, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
