package entities

import (
	"errors"
	"time"
)

// UserRole distinguishes regular creators from administrators.
type UserRole string

const (
	RoleCreator UserRole = "creator"
	RoleAdmin   UserRole = "admin"
)

// User represents an account that can own workspaces and content.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         UserRole  `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Workspace groups content and scopes the collaboration channels.
type Workspace struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	OwnerID   string    `json:"owner_id" bson:"owner_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ContentStatus is the publication state of a content item.
type ContentStatus string

const (
	ContentDraft     ContentStatus = "draft"
	ContentPublished ContentStatus = "published"
)

// Content is a single content item inside a workspace.
type Content struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	WorkspaceID string        `json:"workspace_id" bson:"workspace_id"`
	Title       string        `json:"title" bson:"title"`
	Body        string        `json:"body" bson:"body"`
	Category    string        `json:"category,omitempty" bson:"category,omitempty"`
	Status      ContentStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

// VoiceProfile holds a user's enrolled speaker embedding.
type VoiceProfile struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Embedding []float64 `json:"embedding" bson:"embedding"`
	Threshold float64   `json:"threshold" bson:"threshold"`
	Samples   int       `json:"samples" bson:"samples"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Domain validation methods
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

func (w *Workspace) Validate() error {
	if w.Name == "" {
		return errors.New("name is required")
	}
	if w.OwnerID == "" {
		return errors.New("owner is required")
	}
	return nil
}

func (c *Content) Validate() error {
	if c.WorkspaceID == "" {
		return errors.New("workspace is required")
	}
	if c.Title == "" {
		return errors.New("title is required")
	}
	if c.Status != ContentDraft && c.Status != ContentPublished {
		return errors.New("invalid content status")
	}
	return nil
}
