package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"roomchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// inbound frames are discarded, so anything large is just noise.
	maxMessageSize = 4096

	// capacity of the per-connection outbound queue.
	sendQueueSize = 256
)

var (
	// ErrClientClosed is returned by Send after the client has been closed.
	ErrClientClosed = errors.New("client closed")

	// ErrSendQueueFull is returned by Send when the client is not draining its queue.
	ErrSendQueueFull = errors.New("client send queue full")
)

// Client is a push-only WebSocket connection subscribed to a single room.
// Inbound data frames are read and discarded; the read side only exists to
// observe pongs and the peer's close.
type Client struct {
	conn *websocket.Conn

	RoomID int64
	UserID int64

	// a buffered channel used to queue messages waiting to be written.
	send chan []byte

	// closed once Close is called; never reopened.
	done      chan struct{}
	closeOnce sync.Once
	closeMsg  []byte

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn, roomID, userID int64) *Client {
	return &Client{
		conn:   conn,
		RoomID: roomID,
		UserID: userID,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: logx.Logger().With().
			Str("component", "Client").
			Int64("room_id", roomID).
			Int64("user_id", userID).
			Logger(),
	}
}

// Send queues payload without blocking.
func (c *Client) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSendQueueFull
	}
}

// Close asks the write pump to send a close frame with code and reason and then
// drop the connection. Only the first call has any effect.
func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeMsg = websocket.FormatCloseMessage(code, reason)
		close(c.done)
	})
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// ReadPump reads until the peer closes or the transport fails. Data frames are ignored.
// It closes the client on return, which in turn stops the write pump.
func (c *Client) ReadPump() {
	defer c.Close(websocket.CloseNormalClosure, "")

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			return
		}
	}
}

// WritePump drains the send queue into the connection and keeps it alive with pings.
// It owns the underlying connection and closes it on return.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message := <-c.send:
			if !c.write(websocket.TextMessage, message) {
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}

		case <-c.done:
			c.writeClose()
			return
		}
	}
}

// write sends one frame under a write deadline. It returns false if the pump should stop.
func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Warn().Err(err).Int("message_type", messageType).Msg("Error writing message")
		return false
	}

	return true
}

// writeClose sends the close frame recorded by Close. The peer may already have
// closed its side, in which case the write fails harmlessly.
func (c *Client) writeClose() {
	err := c.conn.WriteControl(websocket.CloseMessage, c.closeMsg, time.Now().Add(writeWait))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		c.logger.Debug().Err(err).Msg("Failed to write close frame")
	}
}
