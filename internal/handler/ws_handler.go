package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"roomchat/internal/app/chat"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/req"
)

const (
	// CloseChatNotFound is sent for every rejected subscription: unknown chat,
	// non-member caller and bad credentials look the same to the client.
	CloseChatNotFound = 4004

	closeChatNotFoundReason = "Chat not found"

	rejectWriteWait = 5 * time.Second
)

// rejectConn sends a close frame and drops the connection.
func rejectConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(CloseChatNotFound, closeChatNotFoundReason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(rejectWriteWait))
	_ = conn.Close()
}

// HandleMessagesWebSocket subscribes the caller to a chat's live message stream.
// The handshake is always accepted; authorization runs afterwards and any failure
// closes the connection with 4004.
func HandleMessagesWebSocket(deps *AppDeps, upgrader *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written an HTTP error.
			logx.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
			return
		}

		logger := logx.Ctx(r.Context())

		chatID, customErr := req.PathInt64(chi.URLParam(r, "chat_id"))
		if customErr != nil {
			logger.Info().Msg("WebSocket rejected: invalid chat id")
			rejectConn(conn)
			return
		}

		identity, err := deps.Auth.Resolve(r.Context(), r.URL.Query().Get("token"))
		if err != nil {
			logger.Info().Err(err).Int64("room_id", chatID).Msg("WebSocket rejected: unauthorized")
			rejectConn(conn)
			return
		}

		if err := deps.Chats.Authorize(r.Context(), chatID, identity.User.ID); err != nil {
			logger.Info().Err(err).Int64("room_id", chatID).Int64("user_id", identity.User.ID).
				Msg("WebSocket rejected: not a member")
			rejectConn(conn)
			return
		}

		client := chat.NewClient(conn, chatID, identity.User.ID)

		deps.Registry.Join(chatID, client)
		defer deps.Registry.Leave(chatID, client)

		logger.Info().Int64("room_id", chatID).Int64("user_id", identity.User.ID).Msg("WebSocket subscribed.")

		go client.WritePump()
		client.ReadPump()

		logger.Info().Int64("room_id", chatID).Int64("user_id", identity.User.ID).Msg("WebSocket closed.")
	}
}
