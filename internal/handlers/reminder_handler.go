package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/services"
	"github.com/Dias221467/MemoMe/pkg/middleware"
)

// ReminderHandler handles HTTP requests for reminders.
type ReminderHandler struct {
	Service *services.ReminderService
}

func NewReminderHandler(service *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{Service: service}
}

func (h *ReminderHandler) GetRemindersHandler(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.Service.ListReminders(r.Context(), middleware.GetSessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (h *ReminderHandler) CreateReminderHandler(w http.ResponseWriter, r *http.Request) {
	var in models.ReminderInput
	if !decodeJSON(w, r, &in) {
		return
	}

	reminder, err := h.Service.AddReminder(r.Context(), middleware.GetSessionFromContext(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAck(w, http.StatusCreated, "Reminder added", reminder)
}

func (h *ReminderHandler) ToggleReminderHandler(w http.ResponseWriter, r *http.Request) {
	reminder, err := h.Service.ToggleReminder(r.Context(), middleware.GetSessionFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeAck(w, http.StatusOK, "Reminder updated", reminder)
}

func (h *ReminderHandler) DeleteReminderHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteReminder(r.Context(), middleware.GetSessionFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeAck(w, http.StatusOK, "Reminder deleted", nil)
}
