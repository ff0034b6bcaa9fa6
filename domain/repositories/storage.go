package repositories

import (
	"context"
	"errors"

	"github.com/voiceflow-cms/server/domain/entities"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("record not found")

// UserRepository defines data access methods for users
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	Delete(ctx context.Context, id string) error
}

// WorkspaceRepository defines data access methods for workspaces
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *entities.Workspace) error
	GetByID(ctx context.Context, id string) (*entities.Workspace, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Workspace, error)
	Delete(ctx context.Context, id string) error
}

// ContentRepository defines data access methods for content items
type ContentRepository interface {
	Create(ctx context.Context, content *entities.Content) error
	GetByID(ctx context.Context, id string) (*entities.Content, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*entities.Content, error)
	Update(ctx context.Context, content *entities.Content) error
	Delete(ctx context.Context, id string) error
}

// VoiceProfileRepository stores enrolled speaker embeddings
type VoiceProfileRepository interface {
	Upsert(ctx context.Context, profile *entities.VoiceProfile) error
	GetByUserID(ctx context.Context, userID string) (*entities.VoiceProfile, error)
	List(ctx context.Context) ([]*entities.VoiceProfile, error)
}
