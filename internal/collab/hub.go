package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blackboard/blackboard/internal/command"
	"github.com/blackboard/blackboard/internal/engine"
)

var ErrHubStopped = errors.New("hub stopped")

// Hub is the single goroutine allowed to touch the engine. Socket clients
// and HTTP handlers post work with Do; after each piece of work that
// notified the engine's listeners, the new scene is broadcast to every
// client.
type Hub struct {
	engine *engine.Engine
	board  func() string

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	requests   chan func()
	done       chan struct{}

	seq   int64
	dirty bool
}

type HubOption func(*Hub)

// WithBoardName labels scene broadcasts with the open board.
func WithBoardName(fn func() string) HubOption {
	return func(h *Hub) { h.board = fn }
}

// NewHub wraps e. The engine must not be used outside Do from here on.
func NewHub(e *engine.Engine, opts ...HubOption) *Hub {
	h := &Hub{
		engine:     e,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan func()),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	e.AddListener(func() { h.dirty = true })
	return h
}

// Run serves requests until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		close(h.done)
	}()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			client.Send(h.sceneMessage(TypeWelcome))
			slog.Info("client joined", "client", client.ID, "clients", len(h.clients))
		case client := <-h.unregister:
			if h.clients[client] {
				delete(h.clients, client)
				close(client.send)
				slog.Info("client left", "client", client.ID, "clients", len(h.clients))
			}
		case req := <-h.requests:
			req()
			h.publish()
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) Register(ctx context.Context, client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Do runs fn on the hub goroutine and waits for it. Once accepted, fn
// always runs to completion; ctx only bounds the wait to be accepted.
func (h *Hub) Do(ctx context.Context, fn func(*engine.Engine)) error {
	finished := make(chan error, 1)
	req := func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("hub request panicked", "panic", r)
				finished <- fmt.Errorf("hub request panicked: %v", r)
			}
		}()
		fn(h.engine)
		finished <- nil
	}

	select {
	case h.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
	return <-finished
}

// Outcome is what a submitted command did.
type Outcome struct {
	Seq     int64
	Changed bool
	Result  any
}

// Submit applies one command on the hub goroutine.
func (h *Hub) Submit(ctx context.Context, cmd command.Command) (Outcome, error) {
	var (
		out  Outcome
		cerr error
	)
	if err := h.Do(ctx, func(*engine.Engine) { out, cerr = h.apply(cmd) }); err != nil {
		return Outcome{}, err
	}
	return out, cerr
}

// apply runs on the hub goroutine.
func (h *Hub) apply(cmd command.Command) (Outcome, error) {
	h.publish()
	result, err := command.Dispatch(h.engine, cmd)
	if err != nil {
		slog.Debug("command rejected", "type", cmd.Type, "error", err)
		return Outcome{Seq: h.seq}, err
	}
	changed := h.dirty
	h.publish()
	return Outcome{Seq: h.seq, Changed: changed, Result: result}, nil
}

// publish broadcasts the scene if the engine notified since the last call.
func (h *Hub) publish() {
	if !h.dirty {
		return
	}
	h.dirty = false
	h.seq++
	h.broadcast(h.sceneMessage(TypeSceneChanged))
}

func (h *Hub) sceneMessage(msgType string) *Message {
	payload := ScenePayload{
		Document:  h.engine.Document(),
		Selection: h.engine.Selected(),
		Tool:      string(h.engine.Tool()),
		CanUndo:   h.engine.CanUndo(),
		CanRedo:   h.engine.CanRedo(),
	}
	if payload.Selection == nil {
		payload.Selection = []string{}
	}
	if h.board != nil {
		payload.Board = h.board()
	}
	return newMessage(msgType, h.seq, payload)
}

func (h *Hub) broadcast(msg *Message) {
	if len(h.clients) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal broadcast", "error", err)
		return
	}
	for c := range h.clients {
		c.enqueue(data)
	}
}

func newMessage(msgType string, seq int64, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", msgType, "error", err)
		data = nil
	}
	return &Message{Type: msgType, Seq: seq, Payload: data}
}
