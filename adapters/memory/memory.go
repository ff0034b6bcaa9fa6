// Package memory provides map-backed repository implementations for
// development and tests. All stores are safe for concurrent use.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/domain/repositories"
)

// UserRepository is an in-memory implementation of repositories.UserRepository
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entities.User
}

// NewUserRepository creates a new in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entities.User)}
}

func (m *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return errors.New("email already registered")
		}
		if existing.Username == user.Username {
			return errors.New("username already taken")
		}
	}

	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) Update(ctx context.Context, user *entities.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *UserRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// WorkspaceRepository is an in-memory implementation of repositories.WorkspaceRepository
type WorkspaceRepository struct {
	mu         sync.RWMutex
	workspaces map[string]*entities.Workspace
}

// NewWorkspaceRepository creates a new in-memory workspace repository
func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{workspaces: make(map[string]*entities.Workspace)}
}

func (m *WorkspaceRepository) Create(ctx context.Context, workspace *entities.Workspace) error {
	if workspace == nil {
		return errors.New("workspace cannot be nil")
	}
	if err := workspace.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	workspace.ID = uuid.NewString()
	workspace.CreatedAt = time.Now()
	clone := *workspace
	m.workspaces[workspace.ID] = &clone
	return nil
}

func (m *WorkspaceRepository) GetByID(ctx context.Context, id string) (*entities.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	workspace, ok := m.workspaces[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *workspace
	return &clone, nil
}

func (m *WorkspaceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*entities.Workspace
	for _, workspace := range m.workspaces {
		if workspace.OwnerID == ownerID {
			clone := *workspace
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workspaces[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.workspaces, id)
	return nil
}

// ContentRepository is an in-memory implementation of repositories.ContentRepository
type ContentRepository struct {
	mu    sync.RWMutex
	items map[string]*entities.Content
}

// NewContentRepository creates a new in-memory content repository
func NewContentRepository() *ContentRepository {
	return &ContentRepository{items: make(map[string]*entities.Content)}
}

func (m *ContentRepository) Create(ctx context.Context, content *entities.Content) error {
	if content == nil {
		return errors.New("content cannot be nil")
	}
	if err := content.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	content.ID = uuid.NewString()
	content.CreatedAt = now
	content.UpdatedAt = now
	clone := *content
	m.items[content.ID] = &clone
	return nil
}

func (m *ContentRepository) GetByID(ctx context.Context, id string) (*entities.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *content
	return &clone, nil
}

func (m *ContentRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*entities.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*entities.Content
	for _, content := range m.items {
		if content.WorkspaceID == workspaceID {
			clone := *content
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *ContentRepository) Update(ctx context.Context, content *entities.Content) error {
	if content == nil {
		return errors.New("content cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[content.ID]; !ok {
		return repositories.ErrNotFound
	}
	content.UpdatedAt = time.Now()
	clone := *content
	m.items[content.ID] = &clone
	return nil
}

func (m *ContentRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// VoiceProfileRepository is an in-memory implementation of repositories.VoiceProfileRepository
type VoiceProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*entities.VoiceProfile // keyed by user ID
}

// NewVoiceProfileRepository creates a new in-memory voice profile repository
func NewVoiceProfileRepository() *VoiceProfileRepository {
	return &VoiceProfileRepository{profiles: make(map[string]*entities.VoiceProfile)}
}

func (m *VoiceProfileRepository) Upsert(ctx context.Context, profile *entities.VoiceProfile) error {
	if profile == nil {
		return errors.New("profile cannot be nil")
	}
	if profile.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	if len(profile.Embedding) == 0 {
		return errors.New("embedding cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.UpdatedAt = time.Now()
	clone := *profile
	m.profiles[profile.UserID] = &clone
	return nil
}

func (m *VoiceProfileRepository) GetByUserID(ctx context.Context, userID string) (*entities.VoiceProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *profile
	return &clone, nil
}

func (m *VoiceProfileRepository) List(ctx context.Context) ([]*entities.VoiceProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*entities.VoiceProfile, 0, len(m.profiles))
	for _, profile := range m.profiles {
		clone := *profile
		result = append(result, &clone)
	}
	return result, nil
}
