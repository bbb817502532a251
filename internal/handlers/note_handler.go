package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/services"
	"github.com/Dias221467/MemoMe/pkg/middleware"
)

// tagList accepts tags either as a JSON array or as one comma separated
// string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = models.ParseTags(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = models.CleanTags(list)
	return nil
}

type noteRequest struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    *tagList `json:"tags"`
}

func (n noteRequest) input() models.NoteInput {
	var in models.NoteInput
	if n.Title != nil {
		in.Title = *n.Title
	}
	if n.Content != nil {
		in.Content = *n.Content
	}
	if n.Tags != nil {
		in.Tags = *n.Tags
	}
	return in
}

func (n noteRequest) update() models.NoteUpdate {
	u := models.NoteUpdate{Title: n.Title, Content: n.Content}
	if n.Tags != nil {
		tags := []string(*n.Tags)
		u.Tags = &tags
	}
	return u
}

// NoteHandler handles HTTP requests for notes.
type NoteHandler struct {
	Service *services.NoteService
}

func NewNoteHandler(service *services.NoteService) *NoteHandler {
	return &NoteHandler{Service: service}
}

// GetNotesHandler lists notes, optionally filtered by ?q=.
func (h *NoteHandler) GetNotesHandler(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Service.ListNotes(r.Context(), middleware.GetSessionFromContext(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) CreateNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.Service.CreateNote(r.Context(), middleware.GetSessionFromContext(r.Context()), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeAck(w, http.StatusCreated, "Note saved", note)
}

func (h *NoteHandler) UpdateNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.Service.UpdateNote(r.Context(), middleware.GetSessionFromContext(r.Context()), mux.Vars(r)["id"], req.update())
	if err != nil {
		writeError(w, err)
		return
	}
	writeAck(w, http.StatusOK, "Note updated", note)
}

func (h *NoteHandler) DeleteNoteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteNote(r.Context(), middleware.GetSessionFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeAck(w, http.StatusOK, "Note deleted", nil)
}
