package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/identity"
)

// AuthHandler exposes the local identity provider.
type AuthHandler struct {
	Credentials *identity.CredentialService
}

func NewAuthHandler(credentials *identity.CredentialService) *AuthHandler {
	return &AuthHandler{Credentials: credentials}
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// RegisterHandler creates a local credential and returns an identity token.
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.Credentials.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		log.WithField("email", req.Email).WithError(err).Warn("Registration failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// LoginHandler exchanges email and password for an identity token.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.Credentials.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.WithField("email", req.Email).WithError(err).Warn("Authentication failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
