package handlers

import (
	"net/http"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/services"
	"github.com/Dias221467/MemoMe/pkg/middleware"
)

// UserHandler serves the signed-in user's profile and dashboard.
type UserHandler struct {
	Service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

func (h *UserHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Service.GetProfile(middleware.GetSessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), middleware.GetSessionFromContext(r.Context()), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAck(w, http.StatusOK, "Profile updated", user)
}

func (h *UserHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Service.Dashboard(r.Context(), middleware.GetSessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
