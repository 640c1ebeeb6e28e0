package collab

import (
	"encoding/json"

	"github.com/blackboard/blackboard/internal/document"
)

type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeError = "error"

	// Connection
	TypeWelcome = "welcome"

	// Commands
	TypeCmdSubmit = "cmd.submit"
	TypeCmdAck    = "cmd.ack"
	TypeCmdNack   = "cmd.nack"

	// Broadcast after every command that changed the board or the
	// selection.
	TypeSceneChanged = "scene.changed"
)

// CommandAckPayload is the payload for cmd.ack messages
type CommandAckPayload struct {
	CommandID string `json:"commandId,omitempty"`
	Seq       int64  `json:"seq"`
	Changed   bool   `json:"changed"`
	Result    any    `json:"result,omitempty"`
}

// CommandNackPayload is the payload for cmd.nack messages
type CommandNackPayload struct {
	CommandID string `json:"commandId,omitempty"`
	Reason    string `json:"reason"`
}

// ScenePayload is the payload for welcome and scene.changed messages
type ScenePayload struct {
	Board     string             `json:"board,omitempty"`
	Document  *document.Document `json:"document"`
	Selection []string           `json:"selection"`
	Tool      string             `json:"tool"`
	CanUndo   bool               `json:"canUndo"`
	CanRedo   bool               `json:"canRedo"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
