package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/services"
	"github.com/Dias221467/MemoMe/pkg/middleware"
)

// CareHandler handles HTTP requests for daily care logs.
type CareHandler struct {
	Service *services.CareService
	Loc     *time.Location
	now     func() time.Time
}

func NewCareHandler(service *services.CareService, loc *time.Location) *CareHandler {
	if loc == nil {
		loc = time.Local
	}
	return &CareHandler{Service: service, Loc: loc, now: time.Now}
}

func (h *CareHandler) GetCareLogsHandler(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Service.ListCareLogs(r.Context(), middleware.GetSessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// LogCareHandler saves a log; a missing date means today.
func (h *CareHandler) LogCareHandler(w http.ResponseWriter, r *http.Request) {
	var log models.CareLog
	if !decodeJSON(w, r, &log) {
		return
	}
	if log.Date == "" {
		log.Date = h.now().In(h.Loc).Format(models.DateLayout)
	}
	h.save(w, r, log)
}

// PutCareLogHandler saves the log for the date in the path.
func (h *CareHandler) PutCareLogHandler(w http.ResponseWriter, r *http.Request) {
	var log models.CareLog
	if !decodeJSON(w, r, &log) {
		return
	}
	log.Date = mux.Vars(r)["date"]
	h.save(w, r, log)
}

func (h *CareHandler) save(w http.ResponseWriter, r *http.Request, log models.CareLog) {
	saved, err := h.Service.LogCare(r.Context(), middleware.GetSessionFromContext(r.Context()), log)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAck(w, http.StatusOK, "Care data logged", saved)
}
