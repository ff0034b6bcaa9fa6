package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/repositories"
	"github.com/voiceflow-cms/server/usecase"
)

func (h *Handler) transcribe(c echo.Context) error {
	var req TranscribeRequest
	if err := c.Bind(&req); err != nil || req.Audio == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Base64 audio payload is required",
		})
	}

	transcript, err := h.voice.TranscribeBase64(c.Request().Context(), req.Audio)
	if err != nil {
		h.logger.Warn("Transcription request failed", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "transcription_failed",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, TranscribeResponse{
		Text:       transcript.Text,
		Confidence: transcript.Confidence,
	})
}

func (h *Handler) synthesize(c echo.Context) error {
	var req SynthesizeRequest
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Text is required",
		})
	}

	audio, err := h.voice.Synthesize(c.Request().Context(), req.Text, req.Language)
	if err != nil {
		h.logger.Warn("Synthesis request failed", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "synthesis_failed",
			Message: err.Error(),
		})
	}

	return c.Blob(http.StatusOK, "audio/pcm", audio)
}

func (h *Handler) enroll(c echo.Context) error {
	var req EnrollRequest
	if err := c.Bind(&req); err != nil || len(req.Samples) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "At least one base64 audio sample is required",
		})
	}

	samples := make([][]byte, 0, len(req.Samples))
	for _, encoded := range req.Samples {
		pcm, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Samples must be base64 encoded",
			})
		}
		samples = append(samples, pcm)
	}

	profile, err := h.voice.Enroll(c.Request().Context(), currentClaims(c).UserID, samples)
	if err != nil {
		h.logger.Warn("Enrollment failed", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "enrollment_failed",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, EnrollResponse{
		UserID:  profile.UserID,
		Samples: profile.Samples,
	})
}

func (h *Handler) identify(c echo.Context) error {
	var req IdentifyRequest
	if err := c.Bind(&req); err != nil || req.Audio == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Base64 audio payload is required",
		})
	}

	pcm, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Audio must be base64 encoded",
		})
	}

	profile, similarity, err := h.voice.Identify(c.Request().Context(), pcm)
	if err != nil {
		if errors.Is(err, usecase.ErrSpeakerUnknown) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "speaker_unknown",
				Message: "No enrolled profile matches this voice",
			})
		}
		h.logger.Warn("Identification failed", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "identification_failed",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, IdentifyResponse{
		UserID:     profile.UserID,
		Similarity: similarity,
	})
}

func (h *Handler) setFlag(c echo.Context) error {
	var req FlagRequest
	if err := c.Bind(&req); err != nil || req.Value == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Flag value is required",
		})
	}

	key := c.Param("key")
	if err := h.bus.SetFlag(c.Request().Context(), key, req.Value); err != nil {
		h.logger.Error("Failed to set flag", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

func (h *Handler) getFlag(c echo.Context) error {
	key := c.Param("key")
	value, err := h.bus.GetFlag(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, repositories.ErrFlagNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found"})
		}
		h.logger.Error("Failed to get flag", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key, "value": value})
}
