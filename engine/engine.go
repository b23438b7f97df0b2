package engine

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"google.golang.org/genai"

	"once/memory"
	"once/models"
)

// Store is the persistence surface the turn pipeline needs. Implemented by
// db.StoryRepository; tests substitute an in-memory fake.
type Store interface {
	Story(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	InsertStory(ctx context.Context, story *models.Story) (primitive.ObjectID, error)
	SetStoryTurnCount(ctx context.Context, id primitive.ObjectID, turnCount int) error
	CompleteStory(ctx context.Context, id primitive.ObjectID, at time.Time) error

	InsertProtagonist(ctx context.Context, p *models.Protagonist) (primitive.ObjectID, error)
	// ActiveProtagonist returns (nil, nil) when the story tracks no
	// character, as in narrator mode.
	ActiveProtagonist(ctx context.Context, storyID primitive.ObjectID) (*models.Protagonist, error)
	UpdateProtagonist(ctx context.Context, p *models.Protagonist) error

	InsertScene(ctx context.Context, scene *models.Scene) (primitive.ObjectID, error)
	// RecentScenes returns up to limit of the latest scenes, oldest first.
	RecentScenes(ctx context.Context, storyID primitive.ObjectID, limit int) ([]models.Scene, error)

	PendingEchoes(ctx context.Context, storyID primitive.ObjectID) ([]models.Echo, error)
	// ResolveEchoes marks the given echoes resolved at sceneID. Echoes
	// that are no longer pending must be left untouched.
	ResolveEchoes(ctx context.Context, ids []primitive.ObjectID, sceneID primitive.ObjectID) error
	InsertEcho(ctx context.Context, echo *models.Echo) (primitive.ObjectID, error)

	InsertCodexEntries(ctx context.Context, entries []models.CodexEntry) error
}

// LLM produces schema-conforming structured output for a prompt. Implemented
// by llm.Client over Gemini; tests substitute a scripted fake.
type LLM interface {
	GenerateStructured(ctx context.Context, systemPrompt, prompt string, schema *genai.Schema, out any) error
}

// Memory is the external semantic memory index. Store failures are
// best-effort; Search runs in the synchronous part of a turn.
type Memory interface {
	Store(ctx context.Context, ownerID string, messages []memory.Message) error
	Search(ctx context.Context, ownerID, query string, limit int) ([]string, error)
}

// Engine sequences story creation and turn processing.
type Engine struct {
	store Store
	llm   LLM
	mem   Memory

	locks storyLocks
}

// New builds an Engine over the given collaborators.
func New(store Store, llm LLM, mem Memory) *Engine {
	return &Engine{store: store, llm: llm, mem: mem}
}

// storyLocks serializes turns per story id. The original pipeline had no
// guard around the turn-counter read-modify-write, so two concurrent
// submissions could mint duplicate turn numbers; an in-process mutex keyed
// by story id closes that for a single server process. Multi-process
// deployments would need a database-level guard instead.
type storyLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *storyLocks) lock(id primitive.ObjectID) *sync.Mutex {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	sm, ok := l.m[id.Hex()]
	if !ok {
		sm = &sync.Mutex{}
		l.m[id.Hex()] = sm
	}
	l.mu.Unlock()

	sm.Lock()
	return sm
}
