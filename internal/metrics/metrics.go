package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the voice gateway
type Metrics struct {
	// Session metrics
	ActiveSessions   prometheus.Gauge
	SessionsAccepted prometheus.Counter
	SessionsEvicted  prometheus.Counter

	// Frame metrics
	FramesReceived  *prometheus.CounterVec
	MalformedFrames prometheus.Counter

	// Audio buffering metrics
	ChunksBuffered prometheus.Counter
	ChunksEvicted  prometheus.Counter

	// Transcription metrics
	TranscriptionRequests prometheus.Counter
	TranscriptionFailures prometheus.Counter
	TranscriptionDuration prometheus.Histogram

	// Bus metrics
	PresenceEvents    prometheus.Counter
	BroadcastMessages prometheus.Counter
}

// New creates and registers all gateway metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voiceflow_active_sessions",
			Help: "Current number of live voice sessions",
		}),
		SessionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceflow_sessions_accepted_total",
			Help: "Total number of accepted voice sessions",
		}),
		SessionsEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceflow_sessions_evicted_total",
			Help: "Total number of sessions displaced by a newer connection with the same user id",
		}),
		FramesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceflow_frames_received_total",
			Help: "Total number of frames received, by frame type",
		}, []string{"type"}),
		MalformedFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceflow_malformed_frames_total",
			Help: "Total number of frames rejected as malformed",
		}),
		ChunksBuffered: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceflow_audio_chunks_buffered_total",
			Help: "Total number of audio chunks appended to session buffers",
		}),
		ChunksEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceflow_audio_chunks_evicted_total",
			Help: "Total number of audio chunks dropped by the bounded ring",
		}),
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceflow_transcriptions_total",
			Help: "Total number of transcription drain cycles",
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceflow_transcription_failures_total",
			Help: "Total number of failed transcription drain cycles",
		}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voiceflow_transcription_duration_seconds",
			Help:    "Time spent in the transcription adapter per drain cycle",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		PresenceEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceflow_presence_events_total",
			Help: "Total number of presence events published",
		}),
		BroadcastMessages: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceflow_broadcast_messages_total",
			Help: "Total number of messages republished to workspace topics",
		}),
	}
}
