package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type authAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) AuthenticateAdmin(w http.ResponseWriter, r *http.Request) {
	var req authAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	admin, err := h.svc.AuthenticateAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if admin == nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAdmins(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

type createAdminRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	Role            string `json:"role"`
	AutoLockMinutes int    `json:"auto_lock_minutes"`
}

func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	admin, err := h.svc.CreateAdmin(r.Context(), req.Username, req.Password, req.Role, req.AutoLockMinutes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (h *Handler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	admin, err := h.svc.GetAdminByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "admin not found")
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) UpdateAdminPassword(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.UpdateAdminPassword(r.Context(), id, req.Password); err != nil {
		writeServiceError(w, err, "admin not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteAdmin(r.Context(), id); err != nil {
		writeServiceError(w, err, "admin not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type logActionRequest struct {
	ActionType    string  `json:"action_type"`
	Title         string  `json:"title"`
	Details       string  `json:"details"`
	AdminUsername *string `json:"admin_username"`
}

func (h *Handler) LogAction(w http.ResponseWriter, r *http.Request) {
	var req logActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.LogAction(r.Context(), req.ActionType, req.Title, req.Details, req.AdminUsername); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": true})
}

func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListActions(r.Context(), limit, offset, query.Get("search"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) CountActions(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.CountActions(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": count})
}
