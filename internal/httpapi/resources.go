package httpapi

import (
	"net/http"

	"github.com/nape-ntsoane/trax/internal/models"
)

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q, ok := listQuery(w, r)
	if !ok {
		return
	}
	page, err := h.store.Dashboard(r.Context(), userID(r), q.Page, q.PerPage)
	if err != nil {
		writeStoreError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req models.FolderCreate
	if !decodeBody(w, r, &req) {
		return
	}
	folder, err := h.store.CreateFolder(r.Context(), userID(r), req)
	if err != nil {
		writeStoreError(w, "Folder", err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *Handler) handleGetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	folder, err := h.store.GetFolder(r.Context(), userID(r), id)
	if err != nil {
		writeStoreError(w, "Folder", err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *Handler) handleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.FolderUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	folder, err := h.store.UpdateFolder(r.Context(), userID(r), id, req)
	if err != nil {
		writeStoreError(w, "Folder", err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *Handler) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteFolder(r.Context(), userID(r), id); err != nil {
		writeStoreError(w, "Folder", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Folder deleted"})
}

func (h *Handler) handleFolderApplications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q, ok := listQuery(w, r)
	if !ok {
		return
	}
	q.FolderID = &id
	page, err := h.store.ListApplications(r.Context(), userID(r), q)
	if err != nil {
		writeStoreError(w, "Folder", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	q, ok := listQuery(w, r)
	if !ok {
		return
	}
	page, err := h.store.ListApplications(r.Context(), userID(r), q)
	if err != nil {
		writeStoreError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req models.ApplicationCreate
	if !decodeBody(w, r, &req) {
		return
	}
	app, err := h.store.CreateApplication(r.Context(), userID(r), req)
	if err != nil {
		writeStoreError(w, "Application", err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	app, err := h.store.GetApplication(r.Context(), userID(r), id)
	if err != nil {
		writeStoreError(w, "Application", err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.ApplicationUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	app, err := h.store.UpdateApplication(r.Context(), userID(r), id, req)
	if err != nil {
		writeStoreError(w, "Application", err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteApplication(r.Context(), userID(r), id); err != nil {
		writeStoreError(w, "Application", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Application deleted"})
}

func (h *Handler) handleListSelects(w http.ResponseWriter, r *http.Request) {
	selects, err := h.store.ListSelects(r.Context(), userID(r))
	if err != nil {
		writeStoreError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, selects)
}

func selectKind(w http.ResponseWriter, r *http.Request) (models.SelectKind, bool) {
	kind, ok := models.ParseSelectKind(r.PathValue("kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
	}
	return kind, ok
}

func (h *Handler) handleCreateSelect(w http.ResponseWriter, r *http.Request) {
	kind, ok := selectKind(w, r)
	if !ok {
		return
	}
	var req models.SelectCreate
	if !decodeBody(w, r, &req) {
		return
	}
	option, err := h.store.CreateSelect(r.Context(), userID(r), kind, req)
	if err != nil {
		writeStoreError(w, "Option", err)
		return
	}
	writeJSON(w, http.StatusOK, option)
}

func (h *Handler) handleUpdateSelect(w http.ResponseWriter, r *http.Request) {
	kind, ok := selectKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.SelectUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	option, err := h.store.UpdateSelect(r.Context(), userID(r), kind, id, req)
	if err != nil {
		writeStoreError(w, "Option", err)
		return
	}
	writeJSON(w, http.StatusOK, option)
}

func (h *Handler) handleDeleteSelect(w http.ResponseWriter, r *http.Request) {
	kind, ok := selectKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteSelect(r.Context(), userID(r), kind, id); err != nil {
		writeStoreError(w, "Option", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Option deleted"})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, ok := listQuery(w, r)
	if !ok {
		return
	}
	folders, err := h.store.SearchFolders(r.Context(), userID(r), q)
	if err != nil {
		writeStoreError(w, "", err)
		return
	}
	apps, err := h.store.ListApplications(r.Context(), userID(r), q)
	if err != nil {
		writeStoreError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SearchResult{Folders: folders, Applications: apps})
}
