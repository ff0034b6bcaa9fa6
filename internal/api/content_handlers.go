package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/domain/repositories"
)

func (h *Handler) createWorkspace(c echo.Context) error {
	var req WorkspaceRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Workspace name is required",
		})
	}

	workspace := &entities.Workspace{
		Name:    req.Name,
		OwnerID: currentClaims(c).UserID,
	}
	if err := h.workspaces.Create(c.Request().Context(), workspace); err != nil {
		h.logger.Error("Failed to create workspace", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	return c.JSON(http.StatusCreated, workspace)
}

func (h *Handler) listWorkspaces(c echo.Context) error {
	workspaces, err := h.workspaces.ListByOwner(c.Request().Context(), currentClaims(c).UserID)
	if err != nil {
		h.logger.Error("Failed to list workspaces", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	if workspaces == nil {
		workspaces = []*entities.Workspace{}
	}
	return c.JSON(http.StatusOK, workspaces)
}

// ownedWorkspace loads a workspace and checks the caller owns it.
func (h *Handler) ownedWorkspace(c echo.Context, id string) (*entities.Workspace, error) {
	workspace, err := h.workspaces.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	claims := currentClaims(c)
	if workspace.OwnerID != claims.UserID && claims.Role != string(entities.RoleAdmin) {
		return nil, repositories.ErrNotFound
	}
	return workspace, nil
}

func (h *Handler) getWorkspace(c echo.Context) error {
	workspace, err := h.ownedWorkspace(c, c.Param("id"))
	if err != nil {
		return h.storageError(c, err)
	}
	return c.JSON(http.StatusOK, workspace)
}

func (h *Handler) deleteWorkspace(c echo.Context) error {
	if _, err := h.ownedWorkspace(c, c.Param("id")); err != nil {
		return h.storageError(c, err)
	}
	if err := h.workspaces.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.storageError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) createContent(c echo.Context) error {
	if _, err := h.ownedWorkspace(c, c.Param("id")); err != nil {
		return h.storageError(c, err)
	}

	var req ContentRequest
	if err := c.Bind(&req); err != nil || req.Title == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Content title is required",
		})
	}

	content := &entities.Content{
		WorkspaceID: c.Param("id"),
		Title:       req.Title,
		Body:        req.Body,
		Category:    req.Category,
		Status:      entities.ContentDraft,
	}
	if err := h.content.Create(c.Request().Context(), content); err != nil {
		h.logger.Error("Failed to create content", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	return c.JSON(http.StatusCreated, content)
}

func (h *Handler) listContent(c echo.Context) error {
	if _, err := h.ownedWorkspace(c, c.Param("id")); err != nil {
		return h.storageError(c, err)
	}

	items, err := h.content.ListByWorkspace(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to list content", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	if items == nil {
		items = []*entities.Content{}
	}
	return c.JSON(http.StatusOK, items)
}

// ownedContent loads a content item and checks the caller owns its
// workspace.
func (h *Handler) ownedContent(c echo.Context, id string) (*entities.Content, error) {
	content, err := h.content.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if _, err := h.ownedWorkspace(c, content.WorkspaceID); err != nil {
		return nil, err
	}
	return content, nil
}

func (h *Handler) getContent(c echo.Context) error {
	content, err := h.ownedContent(c, c.Param("id"))
	if err != nil {
		return h.storageError(c, err)
	}
	return c.JSON(http.StatusOK, content)
}

func (h *Handler) updateContent(c echo.Context) error {
	content, err := h.ownedContent(c, c.Param("id"))
	if err != nil {
		return h.storageError(c, err)
	}

	var req ContentRequest
	if err := c.Bind(&req); err != nil || req.Title == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Content title is required",
		})
	}

	content.Title = req.Title
	content.Body = req.Body
	content.Category = req.Category
	if err := h.content.Update(c.Request().Context(), content); err != nil {
		return h.storageError(c, err)
	}
	return c.JSON(http.StatusOK, content)
}

func (h *Handler) publishContent(c echo.Context) error {
	content, err := h.ownedContent(c, c.Param("id"))
	if err != nil {
		return h.storageError(c, err)
	}

	content.Status = entities.ContentPublished
	if err := h.content.Update(c.Request().Context(), content); err != nil {
		return h.storageError(c, err)
	}

	h.logger.Info("Content published",
		zap.String("contentID", content.ID),
		zap.String("workspaceID", content.WorkspaceID))
	return c.JSON(http.StatusOK, content)
}

func (h *Handler) deleteContent(c echo.Context) error {
	if _, err := h.ownedContent(c, c.Param("id")); err != nil {
		return h.storageError(c, err)
	}
	if err := h.content.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.storageError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) storageError(c echo.Context, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found"})
	}
	h.logger.Error("Storage operation failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
}
