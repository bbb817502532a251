package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/identity"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/realtime"
	"github.com/Dias221467/MemoMe/internal/session"
	"github.com/Dias221467/MemoMe/pkg/middleware"
)

// Client to server message types.
const (
	msgNotificationPermission = "notification_permission"
	msgSignOut                = "sign_out"
)

// Server to client message types besides notifications.
const (
	msgNotes     = "notes"
	msgCare      = "care"
	msgReminders = "reminders"
	msgSession   = "session"
)

type clientMessage struct {
	Type    string `json:"type"`
	Granted bool   `json:"granted"`
}

type snapshotMessage struct {
	Type  string      `json:"type"`
	Items interface{} `json:"items"`
}

type sessionMessage struct {
	Type    string              `json:"type"`
	Profile *models.UserProfile `json:"profile"`
}

// LiveHandler upgrades to a websocket and keeps the client's mirrors of
// notes, care logs and reminders current for as long as it stays signed in.
type LiveHandler struct {
	Verifier middleware.TokenVerifier
	Resolver *session.Resolver
	Sources  session.Sources
	Hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewLiveHandler(verifier middleware.TokenVerifier, resolver *session.Resolver, sources session.Sources, hub *realtime.Hub, allowedOrigins []string) *LiveHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &LiveHandler{
		Verifier: verifier,
		Resolver: resolver,
		Sources:  sources,
		Hub:      hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// LiveWebSocketHandler serves GET /ws?token=.
func (h *LiveHandler) LiveWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	id, err := h.Verifier.Verify(token)
	if err != nil {
		log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// The client joins the hub only while its session is open, so alerts for
	// a signed-out connection fall through to the next notifier.
	client := realtime.NewClient(id.Email, conn)
	defer h.Hub.Unregister(client)

	push := func(v interface{}) {
		if err := client.Send(v); err != nil {
			log.WithField("email", id.Email).WithError(err).Debug("WebSocket push failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auth := identity.NewAuthState()
	open := func(ctx context.Context, sess *session.Session) error {
		profile := sess.Profile()
		push(sessionMessage{Type: msgSession, Profile: &profile})
		_, err := session.OpenMirrors(ctx, sess, h.Sources, session.Listener{
			Notes:     func(items []models.Note) { push(snapshotMessage{Type: msgNotes, Items: items}) },
			Care:      func(items []models.CareLog) { push(snapshotMessage{Type: msgCare, Items: items}) },
			Reminders: func(items []models.Reminder) { push(snapshotMessage{Type: msgReminders, Items: items}) },
		})
		return err
	}
	onChange := func(sess *session.Session) {
		if sess == nil {
			h.Hub.Unregister(client)
			push(sessionMessage{Type: msgSession})
			return
		}
		h.Hub.Register(client)
	}

	auth.SignIn(id)
	stop := h.Resolver.Observe(ctx, auth, open, onChange)
	defer stop()

	log.WithField("email", id.Email).Info("WebSocket connected")

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.WithField("email", id.Email).WithError(err).Info("WebSocket disconnected")
			return
		}

		switch msg.Type {
		case msgNotificationPermission:
			client.SetPermission(msg.Granted)
		case msgSignOut:
			auth.SignOut()
		default:
			log.WithField("type", msg.Type).Debug("Ignoring unknown WebSocket message")
		}
	}
}
