package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voiceflow-cms/server/domain/entities"
	"github.com/voiceflow-cms/server/domain/repositories"
)

type WorkspaceRepository struct {
	collection *mongo.Collection
}

type workspaceDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	OwnerID   string             `bson:"owner_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *workspaceDoc) toEntity() *entities.Workspace {
	return &entities.Workspace{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt,
	}
}

// NewWorkspaceRepository creates a new MongoDB workspace repository
func NewWorkspaceRepository(db *mongo.Database) repositories.WorkspaceRepository {
	return &WorkspaceRepository{
		collection: db.Collection("workspaces"),
	}
}

// Create implements repositories.WorkspaceRepository
func (r *WorkspaceRepository) Create(ctx context.Context, workspace *entities.Workspace) error {
	if workspace == nil {
		return errors.New("workspace cannot be nil")
	}
	if err := workspace.Validate(); err != nil {
		return err
	}
	if workspace.CreatedAt.IsZero() {
		workspace.CreatedAt = time.Now()
	}

	doc := workspaceDoc{
		Name:      workspace.Name,
		OwnerID:   workspace.OwnerID,
		CreatedAt: workspace.CreatedAt,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		workspace.ID = oid.Hex()
	}
	return nil
}

// GetByID implements repositories.WorkspaceRepository
func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*entities.Workspace, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}

	var doc workspaceDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return doc.toEntity(), nil
}

// ListByOwner implements repositories.WorkspaceRepository
func (r *WorkspaceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Workspace, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer cursor.Close(ctx)

	var workspaces []*entities.Workspace
	for cursor.Next(ctx) {
		var doc workspaceDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode workspace: %w", err)
		}
		workspaces = append(workspaces, doc.toEntity())
	}
	return workspaces, cursor.Err()
}

// Delete implements repositories.WorkspaceRepository
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if result.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

type ContentRepository struct {
	collection *mongo.Collection
}

type contentDoc struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty"`
	WorkspaceID string                 `bson:"workspace_id"`
	Title       string                 `bson:"title"`
	Body        string                 `bson:"body"`
	Category    string                 `bson:"category,omitempty"`
	Status      entities.ContentStatus `bson:"status"`
	CreatedAt   time.Time              `bson:"created_at"`
	UpdatedAt   time.Time              `bson:"updated_at"`
}

func (d *contentDoc) toEntity() *entities.Content {
	return &entities.Content{
		ID:          d.ID.Hex(),
		WorkspaceID: d.WorkspaceID,
		Title:       d.Title,
		Body:        d.Body,
		Category:    d.Category,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// NewContentRepository creates a new MongoDB content repository
func NewContentRepository(db *mongo.Database) repositories.ContentRepository {
	return &ContentRepository{
		collection: db.Collection("content"),
	}
}

// Create implements repositories.ContentRepository
func (r *ContentRepository) Create(ctx context.Context, content *entities.Content) error {
	if content == nil {
		return errors.New("content cannot be nil")
	}
	if err := content.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	content.UpdatedAt = now

	doc := contentDoc{
		WorkspaceID: content.WorkspaceID,
		Title:       content.Title,
		Body:        content.Body,
		Category:    content.Category,
		Status:      content.Status,
		CreatedAt:   content.CreatedAt,
		UpdatedAt:   content.UpdatedAt,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		content.ID = oid.Hex()
	}
	return nil
}

// GetByID implements repositories.ContentRepository
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*entities.Content, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}

	var doc contentDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return doc.toEntity(), nil
}

// ListByWorkspace implements repositories.ContentRepository
func (r *ContentRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*entities.Content, error) {
	opts := options.Find().SetSort(bson.M{"updated_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"workspace_id": workspaceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*entities.Content
	for cursor.Next(ctx) {
		var doc contentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode content: %w", err)
		}
		items = append(items, doc.toEntity())
	}
	return items, cursor.Err()
}

// Update implements repositories.ContentRepository
func (r *ContentRepository) Update(ctx context.Context, content *entities.Content) error {
	if content == nil {
		return errors.New("content cannot be nil")
	}
	objectID, err := primitive.ObjectIDFromHex(content.ID)
	if err != nil {
		return fmt.Errorf("invalid content ID format: %w", err)
	}

	content.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":      content.Title,
			"body":       content.Body,
			"category":   content.Category,
			"status":     content.Status,
			"updated_at": content.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete implements repositories.ContentRepository
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	if result.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
