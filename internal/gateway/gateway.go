// Package gateway implements the real-time voice and collaboration
// streaming endpoints: per-connection sessions with bounded audio
// buffering and transcription hand-off, plus workspace-scoped broadcast
// channels backed by the shared pub/sub bus.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/domain/repositories"
	"github.com/voiceflow-cms/server/internal/bus"
	"github.com/voiceflow-cms/server/internal/metrics"
	"github.com/voiceflow-cms/server/internal/nlu"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks

	// Outbound queue depth per connection.
	sendBuffer = 256

	// Budget for fire-and-forget bus operations.
	publishTimeout = 2 * time.Second
)

// Application close codes.
const (
	CloseMissingUserID   = 4001
	CloseSessionReplaced = 4002
	CloseGatewayDisabled = 4003
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Config holds the gateway knobs.
type Config struct {
	// RingCapacity bounds how many audio chunks a session retains.
	RingCapacity int
	// FillThreshold is the buffered chunk count that triggers a
	// transcription drain. Independent from RingCapacity.
	FillThreshold int
	// Audio describes the assembled PCM stream handed to the transcriber.
	Audio repositories.AudioConfig
	// TranscribeTimeout bounds a single drain cycle.
	TranscribeTimeout time.Duration
}

// Gateway owns the session registry and the collaborators shared by all
// connections. It is handed to each connection task explicitly; there is
// no ambient shared state.
type Gateway struct {
	registry    *Registry
	transcriber repositories.Transcriber
	classifier  *nlu.Classifier
	bus         repositories.EventBus
	metrics     *metrics.Metrics
	logger      *zap.Logger
	cfg         Config
}

// New creates a gateway.
func New(
	transcriber repositories.Transcriber,
	classifier *nlu.Classifier,
	eventBus repositories.EventBus,
	m *metrics.Metrics,
	cfg Config,
	logger *zap.Logger,
) *Gateway {
	return &Gateway{
		registry:    NewRegistry(),
		transcriber: transcriber,
		classifier:  classifier,
		bus:         eventBus,
		metrics:     m,
		logger:      logger,
		cfg:         cfg,
	}
}

// Registry exposes the session registry, for handlers and tests.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// closeWith rejects a connection with an application close code before
// any message is read.
func closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), deadline)
	_ = conn.Close()
}

// voiceEnabled consults the feature flag kill switch. The gateway stays
// open when the flag is unset or the bus is unreachable.
func (g *Gateway) voiceEnabled(ctx context.Context) bool {
	value, err := g.bus.GetFlag(ctx, bus.FlagVoiceGate)
	if err != nil {
		return true
	}
	return value != "off"
}

func (g *Gateway) publishPresence(action entities.PresenceAction, userID, workspaceID string) {
	event := entities.PresenceEvent{
		UserID:      userID,
		Action:      action,
		WorkspaceID: workspaceID,
		Timestamp:   time.Now().UTC(),
	}
	payload, _ := json.Marshal(event)

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := g.bus.Publish(ctx, bus.TopicPresence, payload); err != nil {
		g.logger.Warn("Failed to publish presence event",
			zap.String("userID", userID),
			zap.String("action", string(action)),
			zap.Error(err))
		return
	}
	g.metrics.PresenceEvents.Inc()
}
