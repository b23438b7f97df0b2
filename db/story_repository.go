package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"once/engine"
	"once/models"
)

const (
	storiesCollection      = "stories"
	protagonistsCollection = "protagonists"
	scenesCollection       = "scenes"
	echoesCollection       = "echoes"
	codexCollection        = "codex_entries"
)

// StoryRepository is the Mongo-backed persistence layer. It implements
// engine.Store and carries the listing queries the read endpoints use.
type StoryRepository struct{}

// NewStoryRepository returns a repository over the initialized database.
func NewStoryRepository() *StoryRepository {
	return &StoryRepository{}
}

// Story fetches a story by id.
func (r *StoryRepository) Story(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	var story models.Story
	err := GetCollection(storiesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&story)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: story %s", engine.ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// StoriesByUser returns a user's stories, most recently updated first.
func (r *StoryRepository) StoriesByUser(ctx context.Context, userID string) ([]models.Story, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := GetCollection(storiesCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// InsertStory inserts a new story and returns its id.
func (r *StoryRepository) InsertStory(ctx context.Context, story *models.Story) (primitive.ObjectID, error) {
	result, err := GetCollection(storiesCollection).InsertOne(ctx, story)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// SetStoryTurnCount records the story's new turn counter.
func (r *StoryRepository) SetStoryTurnCount(ctx context.Context, id primitive.ObjectID, turnCount int) error {
	_, err := GetCollection(storiesCollection).UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"turn_count": turnCount, "updated_at": time.Now().UTC()},
	})
	return err
}

// CompleteStory transitions the story to completed.
func (r *StoryRepository) CompleteStory(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := GetCollection(storiesCollection).UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": models.StoryCompleted, "completed_at": at, "updated_at": at},
	})
	return err
}

// ArchiveStory transitions the story to abandoned.
func (r *StoryRepository) ArchiveStory(ctx context.Context, id primitive.ObjectID) error {
	result, err := GetCollection(storiesCollection).UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": models.StoryAbandoned, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: story %s", engine.ErrNotFound, id.Hex())
	}
	return nil
}

// InsertProtagonist inserts a protagonist and returns its id.
func (r *StoryRepository) InsertProtagonist(ctx context.Context, p *models.Protagonist) (primitive.ObjectID, error) {
	result, err := GetCollection(protagonistsCollection).InsertOne(ctx, p)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// Protagonists returns all protagonists of a story.
func (r *StoryRepository) Protagonists(ctx context.Context, storyID primitive.ObjectID) ([]models.Protagonist, error) {
	cursor, err := GetCollection(protagonistsCollection).Find(ctx, bson.M{"story_id": storyID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	protagonists := []models.Protagonist{}
	if err := cursor.All(ctx, &protagonists); err != nil {
		return nil, err
	}
	return protagonists, nil
}

// ActiveProtagonist returns the story's active protagonist, or nil when
// the story tracks none (narrator mode).
func (r *StoryRepository) ActiveProtagonist(ctx context.Context, storyID primitive.ObjectID) (*models.Protagonist, error) {
	var p models.Protagonist
	err := GetCollection(protagonistsCollection).
		FindOne(ctx, bson.M{"story_id": storyID, "is_active": true}).
		Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProtagonist persists the protagonist's current attributes.
func (r *StoryRepository) UpdateProtagonist(ctx context.Context, p *models.Protagonist) error {
	_, err := GetCollection(protagonistsCollection).ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	return err
}

// InsertScene inserts a scene and returns its id.
func (r *StoryRepository) InsertScene(ctx context.Context, scene *models.Scene) (primitive.ObjectID, error) {
	result, err := GetCollection(scenesCollection).InsertOne(ctx, scene)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// RecentScenes returns up to limit of the latest scenes, oldest first.
func (r *StoryRepository) RecentScenes(ctx context.Context, storyID primitive.ObjectID, limit int) ([]models.Scene, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "turn_number", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := GetCollection(scenesCollection).Find(ctx, bson.M{"story_id": storyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var scenes []models.Scene
	if err := cursor.All(ctx, &scenes); err != nil {
		return nil, err
	}
	// Query order is newest first; the prompt wants oldest first.
	for i, j := 0, len(scenes)-1; i < j; i, j = i+1, j-1 {
		scenes[i], scenes[j] = scenes[j], scenes[i]
	}
	return scenes, nil
}

// Scenes returns all scenes of a story in turn order.
func (r *StoryRepository) Scenes(ctx context.Context, storyID primitive.ObjectID) ([]models.Scene, error) {
	opts := options.Find().SetSort(bson.D{{Key: "turn_number", Value: 1}})
	cursor, err := GetCollection(scenesCollection).Find(ctx, bson.M{"story_id": storyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	scenes := []models.Scene{}
	if err := cursor.All(ctx, &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// PendingEchoes returns the story's echoes still awaiting their trigger.
func (r *StoryRepository) PendingEchoes(ctx context.Context, storyID primitive.ObjectID) ([]models.Echo, error) {
	cursor, err := GetCollection(echoesCollection).Find(ctx, bson.M{
		"story_id": storyID,
		"status":   models.EchoPending,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var echoes []models.Echo
	if err := cursor.All(ctx, &echoes); err != nil {
		return nil, err
	}
	return echoes, nil
}

// Echoes returns all echoes of a story.
func (r *StoryRepository) Echoes(ctx context.Context, storyID primitive.ObjectID) ([]models.Echo, error) {
	cursor, err := GetCollection(echoesCollection).Find(ctx, bson.M{"story_id": storyID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	echoes := []models.Echo{}
	if err := cursor.All(ctx, &echoes); err != nil {
		return nil, err
	}
	return echoes, nil
}

// ResolveEchoes marks the given echoes resolved at sceneID. The status
// filter makes resolution idempotent: an echo that already resolved in an
// earlier turn is not touched again.
func (r *StoryRepository) ResolveEchoes(ctx context.Context, ids []primitive.ObjectID, sceneID primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := GetCollection(echoesCollection).UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "status": models.EchoPending},
		bson.M{"$set": bson.M{
			"status":               models.EchoResolved,
			"resolved_at_scene_id": sceneID,
			"updated_at":           time.Now().UTC(),
		}})
	return err
}

// InsertEcho inserts a planted echo and returns its id.
func (r *StoryRepository) InsertEcho(ctx context.Context, echo *models.Echo) (primitive.ObjectID, error) {
	result, err := GetCollection(echoesCollection).InsertOne(ctx, echo)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// InsertCodexEntries inserts extracted codex facts.
func (r *StoryRepository) InsertCodexEntries(ctx context.Context, entries []models.CodexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, entry)
	}
	_, err := GetCollection(codexCollection).InsertMany(ctx, docs)
	return err
}

// CodexEntries returns all codex entries of a story.
func (r *StoryRepository) CodexEntries(ctx context.Context, storyID primitive.ObjectID) ([]models.CodexEntry, error) {
	cursor, err := GetCollection(codexCollection).Find(ctx, bson.M{"story_id": storyID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.CodexEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateIndexes creates the indexes the turn pipeline leans on. The
// unique (story_id, turn_number) index is a database-level backstop for
// the contiguous-turn-number invariant.
func CreateIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sceneIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "story_id", Value: 1}, {Key: "turn_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := GetCollection(scenesCollection).Indexes().CreateMany(ctx, sceneIndexes); err != nil {
		log.Printf("Failed to create scene indexes: %v", err)
	}

	echoIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "story_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := GetCollection(echoesCollection).Indexes().CreateMany(ctx, echoIndexes); err != nil {
		log.Printf("Failed to create echo indexes: %v", err)
	}

	protagonistIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "story_id", Value: 1}, {Key: "is_active", Value: 1}}},
	}
	if _, err := GetCollection(protagonistsCollection).Indexes().CreateMany(ctx, protagonistIndexes); err != nil {
		log.Printf("Failed to create protagonist indexes: %v", err)
	}
}
