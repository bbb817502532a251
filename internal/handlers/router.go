package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Dias221467/MemoMe/pkg/middleware"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Note     *NoteHandler
	Care     *CareHandler
	Reminder *ReminderHandler
	Admin    *AdminHandler
	Live     *LiveHandler
}

// NewRouter registers all routes. Everything except sign-in and the
// websocket (which authenticates through its query token) sits behind
// AuthMiddleware.
func NewRouter(h Handlers, verifier middleware.TokenVerifier, resolver middleware.ProfileResolver) *mux.Router {
	router := mux.NewRouter()
	auth := middleware.AuthMiddleware(verifier, resolver)

	router.HandleFunc("/auth/register", h.Auth.RegisterHandler).Methods("POST")
	router.HandleFunc("/auth/login", h.Auth.LoginHandler).Methods("POST")
	router.HandleFunc("/ws", h.Live.LiveWebSocketHandler).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods("GET")

	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(auth)
	adminRoutes.Use(middleware.RequireAdmin)
	adminRoutes.HandleFunc("/stats", h.Admin.StatsHandler).Methods("GET")
	adminRoutes.HandleFunc("/users", h.Admin.UsersHandler).Methods("GET")

	protected := router.NewRoute().Subrouter()
	protected.Use(auth)
	protected.HandleFunc("/me", h.User.GetProfileHandler).Methods("GET")
	protected.HandleFunc("/me", h.User.UpdateProfileHandler).Methods("PATCH")
	protected.HandleFunc("/dashboard", h.User.DashboardHandler).Methods("GET")

	protected.HandleFunc("/notes", h.Note.GetNotesHandler).Methods("GET")
	protected.HandleFunc("/notes", h.Note.CreateNoteHandler).Methods("POST")
	protected.HandleFunc("/notes/{id}", h.Note.UpdateNoteHandler).Methods("PATCH")
	protected.HandleFunc("/notes/{id}", h.Note.DeleteNoteHandler).Methods("DELETE")

	protected.HandleFunc("/care", h.Care.GetCareLogsHandler).Methods("GET")
	protected.HandleFunc("/care", h.Care.LogCareHandler).Methods("POST")
	protected.HandleFunc("/care/{date}", h.Care.PutCareLogHandler).Methods("PUT")

	protected.HandleFunc("/reminders", h.Reminder.GetRemindersHandler).Methods("GET")
	protected.HandleFunc("/reminders", h.Reminder.CreateReminderHandler).Methods("POST")
	protected.HandleFunc("/reminders/{id}/toggle", h.Reminder.ToggleReminderHandler).Methods("POST")
	protected.HandleFunc("/reminders/{id}", h.Reminder.DeleteReminderHandler).Methods("DELETE")

	router.Use(middleware.LoggingMiddleware)
	return router
}
