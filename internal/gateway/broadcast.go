package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/domain/repositories"
	"github.com/voiceflow-cms/server/internal/bus"
)

// broadcastSession is a single connection on a workspace-scoped fan-out
// channel. Every inbound text frame is wrapped in an envelope and
// published to the bus; every bus message on the topic is forwarded to
// the socket, including the sender's own.
type broadcastSession struct {
	gw          *Gateway
	conn        *websocket.Conn
	userID      string
	workspaceID string
	topic       string
	sub         repositories.Subscription
	logger      *zap.Logger

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

// HandleCollab runs the document collaboration channel for a workspace.
func (g *Gateway) HandleCollab(c echo.Context) error {
	return g.handleBroadcast(c, bus.CollabTopic)
}

// HandleSpatial runs the spatial presence channel for a workspace.
func (g *Gateway) HandleSpatial(c echo.Context) error {
	return g.handleBroadcast(c, bus.SpatialTopic)
}

func (g *Gateway) handleBroadcast(c echo.Context, topicFor func(string) string) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		g.logger.Error("Failed to upgrade broadcast connection", zap.Error(err))
		return err
	}

	userID := c.QueryParam("user_id")
	if userID == "" {
		closeWith(conn, CloseMissingUserID, "user_id query parameter is required")
		return nil
	}

	workspaceID := c.Param("workspace_id")
	topic := topicFor(workspaceID)

	sub, err := g.bus.Subscribe(context.Background(), topic)
	if err != nil {
		g.logger.Error("Failed to subscribe to broadcast topic",
			zap.String("topic", topic), zap.Error(err))
		closeWith(conn, websocket.CloseInternalServerErr, "subscription failed")
		return nil
	}

	session := &broadcastSession{
		gw:          g,
		conn:        conn,
		userID:      userID,
		workspaceID: workspaceID,
		topic:       topic,
		sub:         sub,
		logger: g.logger.With(
			zap.String("userID", userID),
			zap.String("topic", topic)),
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	g.publishPresence(entities.PresenceJoined, userID, workspaceID)

	go session.writePump()
	go session.forward()
	go session.readPump()

	return nil
}

func (b *broadcastSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload := <-b.send:
			_ = b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				b.finish()
				return
			}
		case <-ticker.C:
			_ = b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				b.finish()
				return
			}
		case <-b.done:
			return
		}
	}
}

// forward pumps bus messages for the topic onto the socket.
func (b *broadcastSession) forward() {
	for {
		select {
		case payload, ok := <-b.sub.Messages():
			if !ok {
				b.finish()
				return
			}
			select {
			case b.send <- payload:
			default:
				b.logger.Warn("Send queue full, dropping broadcast message")
			}
		case <-b.done:
			return
		}
	}
}

func (b *broadcastSession) readPump() {
	b.conn.SetReadLimit(maxMessageSize)
	_ = b.conn.SetReadDeadline(time.Now().Add(pongWait))
	b.conn.SetPongHandler(func(string) error {
		return b.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := b.conn.ReadMessage()
		if err != nil {
			b.finish()
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		envelope := newBroadcastEnvelope(b.userID, data)
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := b.gw.bus.Publish(ctx, b.topic, envelope); err != nil {
			b.logger.Warn("Failed to publish broadcast message", zap.Error(err))
		} else {
			b.gw.metrics.BroadcastMessages.Inc()
		}
		cancel()
	}
}

// finish tears the channel down exactly once and publishes a single
// "left" presence event.
func (b *broadcastSession) finish() {
	b.closeOnce.Do(func() {
		_ = b.sub.Close()
		b.gw.publishPresence(entities.PresenceLeft, b.userID, b.workspaceID)
		close(b.done)
		_ = b.conn.Close()
	})
}
