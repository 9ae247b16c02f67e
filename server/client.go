package server

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teranos/qfactor/factor/parser"
	"github.com/teranos/qfactor/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size accepted from the peer
	maxMessageSize = 16 * 1024

	sendBuffer = 32
)

// Client is one WebSocket connection. Every text frame is parsed and
// answered with one reply frame, in order.
type Client struct {
	server    *FactorServer
	conn      *websocket.Conn
	send      chan wsResponse
	done      chan struct{}
	id        string
	addr      string
	closeOnce sync.Once
}

func newClient(s *FactorServer, conn *websocket.Conn, addr string) *Client {
	return &Client{
		server: s,
		conn:   conn,
		send:   make(chan wsResponse, sendBuffer),
		done:   make(chan struct{}),
		id:     uuid.NewString(),
		addr:   addr,
	}
}

// closeWith sends a close frame and tears the connection down
func (c *Client) closeWith(code int, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(writeWait))
		c.conn.Close()
	})
}

// readPump reads frames until the peer disconnects
func (c *Client) readPump() {
	defer func() {
		c.server.unregister(c)
		c.closeWith(websocket.CloseNormalClosure, "")
		c.server.wg.Done()
		c.server.logger.Debugw("websocket client disconnected", "client_id", shortID(c.id))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}
		if msgType != websocket.TextMessage {
			c.queue(wsResponse{Type: "error", Error: "only text frames are supported"})
			continue
		}
		c.queue(c.handleFrame(data))
	}
}

// handleReadError logs unexpected read errors. Normal closure codes are
// silent.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		c.server.logger.Warnw("websocket read error",
			"client_id", shortID(c.id),
			logger.FieldError, err)
	}
}

// handleFrame parses one frame. A frame starting with "{" is a wsRequest,
// anything else is the factor text itself.
func (c *Client) handleFrame(data []byte) wsResponse {
	req := wsRequest{Text: string(data)}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		req = wsRequest{}
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return wsResponse{Type: "error", Error: "invalid JSON frame: " + err.Error()}
		}
	}
	if lim := c.server.limiter; lim != nil && !lim.Allow() {
		c.server.rateLimited.Add(1)
		return wsResponse{Type: "error", ID: req.ID, Error: "rate limit exceeded"}
	}
	if err := checkText(req.Text); err != nil {
		return wsResponse{Type: "error", ID: req.ID, Error: err.Error()}
	}

	pf := c.server.Parser().ParseWithOptions(req.Text, parser.ParseOptions{League: req.League})
	valid, reason := parser.Validate(pf)
	return wsResponse{Type: "factor", ID: req.ID, Factor: pf, Valid: valid, Reason: reason}
}

// queue hands a reply to the write pump, dropping it when the client is
// not keeping up.
func (c *Client) queue(resp wsResponse) {
	select {
	case c.send <- resp:
	case <-c.done:
	default:
		c.server.logger.Warnw("dropping websocket reply, send buffer full", "client_id", shortID(c.id))
	}
}

// writePump writes queued replies and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.server.wg.Done()
	}()

	for {
		select {
		case <-c.server.ctx.Done():
			c.closeWith(websocket.CloseGoingAway, "server shutting down")
			return
		case <-c.done:
			return
		case resp := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(resp); err != nil {
				c.server.logger.Warnw("websocket write error",
					"client_id", shortID(c.id),
					logger.FieldError, err)
				c.closeWith(websocket.CloseInternalServerErr, "")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closeWith(websocket.CloseGoingAway, "")
				return
			}
		}
	}
}
