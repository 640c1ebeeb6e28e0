package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/blackboard/blackboard/internal/command"
	"github.com/blackboard/blackboard/internal/engine"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Client is one connected editor UI. Its send channel is owned by the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	ID   string
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		ID:   uuid.New().String(),
	}
}

// Serve registers the client and pumps messages until either side goes
// away.
func (c *Client) Serve(ctx context.Context) error {
	if err := c.hub.Register(ctx, c); err != nil {
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
		return err
	}
	go c.WritePump(ctx)
	c.ReadPump(ctx)
	return nil
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.leave(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				slog.Debug("read error", "error", err, "client", c.ID)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ID)
			continue
		}
		msg.ClientID = c.ID

		if err := c.handleMessage(ctx, &msg); err != nil {
			if !errors.Is(err, ErrHubStopped) && ctx.Err() == nil {
				slog.Warn("handle message failed", "error", err, "client", c.ID)
			}
			return
		}
	}
}

// handleMessage answers on the hub goroutine so replies never race the
// hub closing the send channel.
func (c *Client) handleMessage(ctx context.Context, msg *Message) error {
	switch msg.Type {
	case TypeCmdSubmit:
		var cmd command.Command
		if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
			return c.hub.Do(ctx, func(*engine.Engine) {
				c.Send(newMessage(TypeCmdNack, c.hub.seq, CommandNackPayload{Reason: "invalid command payload"}))
			})
		}
		return c.hub.Do(ctx, func(*engine.Engine) {
			out, err := c.hub.apply(cmd)
			if err != nil {
				c.Send(newMessage(TypeCmdNack, out.Seq, CommandNackPayload{CommandID: cmd.ID, Reason: err.Error()}))
				return
			}
			c.Send(newMessage(TypeCmdAck, out.Seq, CommandAckPayload{
				CommandID: cmd.ID,
				Seq:       out.Seq,
				Changed:   out.Changed,
				Result:    out.Result,
			}))
		})
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", c.ID)
		return c.hub.Do(ctx, func(*engine.Engine) {
			c.Send(newMessage(TypeError, c.hub.seq, ErrorPayload{Message: "unknown message type: " + msg.Type}))
		})
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", c.ID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for the client. Must be called on the hub goroutine.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}
	c.enqueue(data)
}

func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ID)
	}
}
