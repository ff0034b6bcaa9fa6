package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/internal/bus"
)

// closeOutcome names why a session ended. Every exit path picks one; the
// outcome decides the close code written to the peer and keeps the
// distinct shutdown causes from collapsing into a single generic error.
type closeOutcome int

const (
	// outcomeClientClose is a close initiated by the peer, including an
	// abruptly dropped connection.
	outcomeClientClose closeOutcome = iota
	// outcomeProtocolError means the peer violated the protocol, for
	// example by exceeding the message size limit.
	outcomeProtocolError
	// outcomeInternalFault is an unrecoverable fault in the session loop.
	outcomeInternalFault
	// outcomeReplaced means a newer connection for the same user evicted
	// this session.
	outcomeReplaced
)

func (o closeOutcome) closeCode() int {
	switch o {
	case outcomeProtocolError:
		return websocket.CloseProtocolError
	case outcomeInternalFault:
		return websocket.CloseInternalServerErr
	case outcomeReplaced:
		return CloseSessionReplaced
	default:
		return websocket.CloseNormalClosure
	}
}

func (o closeOutcome) reason() string {
	switch o {
	case outcomeProtocolError:
		return "protocol error"
	case outcomeInternalFault:
		return "internal error"
	case outcomeReplaced:
		return "session replaced by newer connection"
	default:
		return ""
	}
}

// Session is a single voice connection. The read loop owns the audio
// buffer and the partial-transcript state, so neither needs locking.
type Session struct {
	gw     *Gateway
	conn   *websocket.Conn
	userID string
	logger *zap.Logger

	send chan []byte
	done chan struct{}

	buffer      *ChunkBuffer
	lastPartial string

	closeOnce sync.Once
}

// UserID returns the owning user's identifier.
func (s *Session) UserID() string {
	return s.userID
}

// HandleVoice upgrades the request and runs the voice session protocol.
// A missing user_id is rejected with close code 4001 before any frame is
// read.
func (g *Gateway) HandleVoice(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		g.logger.Error("Failed to upgrade voice connection", zap.Error(err))
		return err
	}

	userID := c.QueryParam("user_id")
	if userID == "" {
		closeWith(conn, CloseMissingUserID, "user_id query parameter is required")
		return nil
	}

	if !g.voiceEnabled(c.Request().Context()) {
		closeWith(conn, CloseGatewayDisabled, "voice gateway is disabled")
		return nil
	}

	session := &Session{
		gw:     g,
		conn:   conn,
		userID: userID,
		logger: g.logger.With(zap.String("userID", userID)),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		buffer: NewChunkBuffer(g.cfg.RingCapacity, g.cfg.FillThreshold),
	}

	// Last write wins: the displaced session is told why before its
	// socket goes away.
	if displaced := g.registry.Register(session); displaced != nil {
		g.metrics.SessionsEvicted.Inc()
		displaced.finish(outcomeReplaced)
	}

	g.metrics.SessionsAccepted.Inc()
	g.metrics.ActiveSessions.Inc()
	g.publishPresence(entities.PresenceConnected, userID, "")

	session.enqueue(newHelloFrame())

	go session.writePump()
	go session.readPump()

	return nil
}

// enqueue hands a frame to the write pump. A full queue means the client
// cannot keep up; the frame is dropped rather than blocking the read loop.
func (s *Session) enqueue(payload []byte) {
	select {
	case s.send <- payload:
	default:
		s.logger.Warn("Send queue full, dropping frame")
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.finish(outcomeClientClose)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.finish(outcomeClientClose)
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			s.finish(classifyReadError(err))
			return
		}

		switch messageType {
		case websocket.TextMessage:
			s.handleTextFrame(data)
		case websocket.BinaryMessage:
			// Raw binary frames are audio chunks without the JSON wrapper.
			s.appendAudio(data)
		}
	}
}

func classifyReadError(err error) closeOutcome {
	if err == websocket.ErrReadLimit {
		return outcomeProtocolError
	}
	if websocket.IsCloseError(err,
		websocket.CloseProtocolError,
		websocket.CloseUnsupportedData,
		websocket.CloseInvalidFramePayloadData) {
		return outcomeProtocolError
	}
	return outcomeClientClose
}

func (s *Session) handleTextFrame(data []byte) {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.gw.metrics.MalformedFrames.Inc()
		s.enqueue(newErrorFrame("invalid json"))
		return
	}

	switch frame.Type {
	case frameTypePartial:
		s.gw.metrics.FramesReceived.WithLabelValues(frameTypePartial).Inc()
		// Echoed back unchanged so the client UI can render its own
		// interim text while audio is still in flight.
		s.enqueue(newPartialFrame(frame.Text, 0))

	case frameTypeAudioFrame:
		s.gw.metrics.FramesReceived.WithLabelValues(frameTypeAudioFrame).Inc()
		chunk, err := base64.StdEncoding.DecodeString(frame.Data)
		if err != nil {
			s.gw.metrics.MalformedFrames.Inc()
			s.enqueue(newErrorFrame("invalid audio frame"))
			return
		}
		s.appendAudio(chunk)

	case frameTypeFinal:
		s.gw.metrics.FramesReceived.WithLabelValues(frameTypeFinal).Inc()
		s.handleFinal(frame.Text)

	default:
		// Unknown types are acknowledged without effect so older clients
		// keep working against newer servers.
		s.enqueue(newNoopFrame())
	}
}

func (s *Session) appendAudio(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	if evicted := s.buffer.Append(chunk); evicted {
		s.gw.metrics.ChunksEvicted.Inc()
	}
	s.gw.metrics.ChunksBuffered.Inc()

	if s.buffer.ShouldDrain() {
		s.drain()
	}
}

// drain hands the buffered audio to the transcriber and forwards any new
// partial transcript. Consecutive identical transcripts are suppressed.
func (s *Session) drain() {
	pcm := s.buffer.Drain()

	ctx, cancel := context.WithTimeout(context.Background(), s.gw.cfg.TranscribeTimeout)
	defer cancel()

	s.gw.metrics.TranscriptionRequests.Inc()
	start := time.Now()
	transcript, err := s.gw.transcriber.Transcribe(ctx, pcm, s.gw.cfg.Audio)
	s.gw.metrics.TranscriptionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.gw.metrics.TranscriptionFailures.Inc()
		s.logger.Error("Transcription failed", zap.Error(err))
		return
	}

	if transcript.Text == "" || transcript.Text == s.lastPartial {
		return
	}
	s.lastPartial = transcript.Text
	s.enqueue(newPartialFrame(transcript.Text, transcript.Confidence))
}

func (s *Session) handleFinal(text string) {
	result := s.gw.classifier.Detect(text)
	s.enqueue(newFinalFrame(text, result))
	s.lastPartial = ""

	entry, _ := json.Marshal(map[string]interface{}{
		"user_id":    s.userID,
		"text":       text,
		"intent":     result.Intent,
		"confidence": result.Confidence,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.gw.bus.AppendLog(ctx, bus.VoiceLogKey, entry); err != nil {
		s.logger.Warn("Failed to append voice audit log", zap.Error(err))
	}
}

// finish tears the session down exactly once: deregister, publish a
// single disconnected presence event, tell the peer why, close the
// socket.
func (s *Session) finish(outcome closeOutcome) {
	s.closeOnce.Do(func() {
		s.gw.registry.Remove(s)
		s.gw.metrics.ActiveSessions.Dec()
		s.gw.publishPresence(entities.PresenceDisconnected, s.userID, "")

		if outcome != outcomeClientClose {
			deadline := time.Now().Add(writeWait)
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(outcome.closeCode(), outcome.reason()), deadline)
		}

		close(s.done)
		_ = s.conn.Close()

		s.logger.Info("Voice session closed",
			zap.Int("closeCode", outcome.closeCode()))
	})
}
