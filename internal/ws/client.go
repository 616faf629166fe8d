package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

// errHubStopped rejects upgrades arriving during shutdown.
var errHubStopped = errors.New("hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Spectator streams are public; scorekeeping auth lives on the REST side.
		return true
	},
}

// Client is one websocket subscriber of a single match.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan service.Update
	matchID int64
	log     zerolog.Logger
}

// ServeWS upgrades the request and starts the read/write pumps.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, matchID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Error().Err(err).Int64("match_id", matchID).Msg("websocket upgrade failed")
		return err
	}
	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan service.Update, 64),
		matchID: matchID,
		log:     hub.log.With().Int64("match_id", matchID).Logger(),
	}
	select {
	case hub.register <- client:
	case <-hub.stopChan:
		_ = conn.Close()
		return errHubStopped
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump keeps the connection alive and notices disconnects. The stream is
// one-way; inbound frames are discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case u, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				c.log.Error().Err(err).Msg("marshal update failed")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
