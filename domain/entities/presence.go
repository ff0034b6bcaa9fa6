package entities

import "time"

// PresenceAction is the lifecycle transition carried by a presence event.
type PresenceAction string

const (
	PresenceConnected    PresenceAction = "connected"
	PresenceDisconnected PresenceAction = "disconnected"
	PresenceJoined       PresenceAction = "joined"
	PresenceLeft         PresenceAction = "left"
)

// PresenceEvent is a fire-and-forget lifecycle notification published to
// the shared bus. It is never stored by the gateway.
type PresenceEvent struct {
	UserID      string         `json:"user_id"`
	Action      PresenceAction `json:"action"`
	WorkspaceID string         `json:"workspace_id,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
