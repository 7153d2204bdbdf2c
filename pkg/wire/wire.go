// Package wire defines the messages exchanged over the document-sync
// websocket transport.
package wire

import "encoding/json"

// Message types sent by the sync service.
const (
	TypeSnapshot = "Snapshot"
	TypeError    = "Error"
)

// ServerMessage is one frame from the sync service. Snapshot frames carry a
// complete copy of the session document (Exists is false once the document
// has been deleted, and the Doc field is absent).
type ServerMessage struct {
	Type    string          `json:"type"`
	Version int             `json:"version,omitempty"`
	Exists  bool            `json:"exists,omitempty"`
	Doc     json.RawMessage `json:"doc,omitempty"`
	Error   string          `json:"error,omitempty"`
}
