// Package transport binds the room/registry engine to the network: a
// gorilla/websocket gateway whose only game knowledge is deserialize
// envelope, resolve (session, room) via the registry, forward, serialize
// whatever comes back. It never inspects game state
// directly.
package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"knockwhist/registry"
	"knockwhist/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	readLimitBytes  = 65536
	pongWait        = 60 * time.Second
	pingInterval    = 30 * time.Second
	writeWait       = 10 * time.Second
	outboundBufSize = 64
)

// Gateway upgrades incoming HTTP requests to WebSocket connections and
// wires each one to the registry, mirroring the reference server's
// gateway.Gateway/Connection split.
type Gateway struct {
	registry *registry.Registry
	debug    bool
}

// New creates a Gateway bound to reg. debug enables verbose per-message
// logging (the CLI's -debug flag, the room protocol).
func New(reg *registry.Registry, debug bool) *Gateway {
	return &Gateway{registry: reg, debug: debug}
}

// Connection is one upgraded client socket. It owns no game state — only a
// session ID once the client has created/joined/reconnected — and
// implements registry.Socket so the room engine can address it by session
// ID without ever importing this package.
type Connection struct {
	conn      *websocket.Conn
	send      chan []byte
	gw        *Gateway
	sessionID string
}

// Send implements registry.Socket: marshal msg and queue it for delivery,
// dropping it if the outbound buffer is full rather than blocking the
// room's lane.
func (c *Connection) Send(msg room.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Gateway] failed to marshal %s message: %v", msg.Type, err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[Gateway] dropping %s message, send buffer full", msg.Type)
	}
}

// HandleWebSocket upgrades the request and starts the connection's
// read/write pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] upgrade error: %v", err)
		return
	}

	c := &Connection{
		conn: conn,
		send: make(chan []byte, outboundBufSize),
		gw:   g,
	}
	go c.writePump()
	go c.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		if c.sessionID != "" {
			c.gw.registry.Disconnect(c.sessionID)
		}
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimitBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] read error: %v", err)
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("Malformed message")
		return
	}
	if c.gw.debug {
		log.Printf("[Gateway] recv type=%s session=%s", msg.Type, c.sessionID)
	}

	switch msg.Type {
	case msgCreate:
		c.handleCreate(msg)
	case msgJoin:
		c.handleJoin(msg)
	case msgReconnect:
		c.handleReconnect(msg)
	case msgAddAI:
		c.dispatch(room.Event{Type: room.EventAddAI, Name: msg.Name})
	case msgStartGame:
		c.dispatch(room.Event{Type: room.EventStartGame})
	case msgCallTrumps:
		c.dispatch(room.Event{Type: room.EventCallTrumps, Suit: msg.Suit})
	case msgPlayCard:
		c.dispatch(room.Event{Type: room.EventPlayCard, Card: msg.Card})
	case msgPlayAgain:
		c.dispatch(room.Event{Type: room.EventPlayAgain})
	default:
		c.sendError("Unknown message type")
	}
}

func (c *Connection) handleCreate(msg ClientMessage) {
	code, sess, err := c.gw.registry.Create(msg.Name, c)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sessionID = sess.ID
	c.Send(room.Message{Type: "gameCreated", Code: code, SessionID: sess.ID})
}

func (c *Connection) handleJoin(msg ClientMessage) {
	sess, err := c.gw.registry.Join(msg.Code, msg.Name, c)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sessionID = sess.ID
	c.Send(room.Message{Type: "joined", Code: msg.Code, SessionID: sess.ID})
}

func (c *Connection) handleReconnect(msg ClientMessage) {
	if err := c.gw.registry.Reconnect(msg.SessionID, c); err != nil {
		c.sendError(err.Error())
		return
	}
	c.sessionID = msg.SessionID
}

// dispatch forwards an in-room event for the connection's bound session.
// Errors from the room engine are replied to the originating socket only,
// never broadcast.
func (c *Connection) dispatch(e room.Event) {
	if c.sessionID == "" {
		c.sendError("Not in a game")
		return
	}
	if err := c.gw.registry.Dispatch(c.sessionID, e); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Connection) sendError(message string) {
	c.Send(room.Message{Type: "error", Message: message})
}
