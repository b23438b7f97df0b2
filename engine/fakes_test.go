package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"google.golang.org/genai"

	"once/memory"
	"once/models"
)

// fakeStore is an in-memory Store. It locks around every method because
// the engine's post-commit side effects run on goroutines.
type fakeStore struct {
	mu           sync.Mutex
	stories      map[primitive.ObjectID]*models.Story
	protagonists map[primitive.ObjectID]*models.Protagonist
	scenes       []*models.Scene
	echoes       map[primitive.ObjectID]*models.Echo
	codex        []models.CodexEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stories:      make(map[primitive.ObjectID]*models.Story),
		protagonists: make(map[primitive.ObjectID]*models.Protagonist),
		echoes:       make(map[primitive.ObjectID]*models.Echo),
	}
}

func (s *fakeStore) addStory(story *models.Story) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	copied := *story
	s.stories[story.ID] = &copied
	return story.ID
}

func (s *fakeStore) addProtagonist(p *models.Protagonist) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	copied := *p
	s.protagonists[p.ID] = &copied
	return p.ID
}

func (s *fakeStore) addEcho(echo *models.Echo) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if echo.ID.IsZero() {
		echo.ID = primitive.NewObjectID()
	}
	copied := *echo
	s.echoes[echo.ID] = &copied
	return echo.ID
}

func (s *fakeStore) Story(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	story, ok := s.stories[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *story
	return &copied, nil
}

func (s *fakeStore) InsertStory(ctx context.Context, story *models.Story) (primitive.ObjectID, error) {
	return s.addStory(story), nil
}

func (s *fakeStore) SetStoryTurnCount(ctx context.Context, id primitive.ObjectID, turnCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	story, ok := s.stories[id]
	if !ok {
		return ErrNotFound
	}
	story.TurnCount = turnCount
	return nil
}

func (s *fakeStore) CompleteStory(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	story, ok := s.stories[id]
	if !ok {
		return ErrNotFound
	}
	story.Status = models.StoryCompleted
	story.CompletedAt = &at
	return nil
}

func (s *fakeStore) InsertProtagonist(ctx context.Context, p *models.Protagonist) (primitive.ObjectID, error) {
	return s.addProtagonist(p), nil
}

func (s *fakeStore) ActiveProtagonist(ctx context.Context, storyID primitive.ObjectID) (*models.Protagonist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.protagonists {
		if p.StoryID == storyID && p.IsActive {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) UpdateProtagonist(ctx context.Context, p *models.Protagonist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.protagonists[p.ID]; !ok {
		return errors.New("unknown protagonist")
	}
	copied := *p
	s.protagonists[p.ID] = &copied
	return nil
}

func (s *fakeStore) InsertScene(ctx context.Context, scene *models.Scene) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *scene
	copied.ID = primitive.NewObjectID()
	s.scenes = append(s.scenes, &copied)
	return copied.ID, nil
}

func (s *fakeStore) RecentScenes(ctx context.Context, storyID primitive.ObjectID, limit int) ([]models.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var scenes []models.Scene
	for _, scene := range s.scenes {
		if scene.StoryID == storyID {
			scenes = append(scenes, *scene)
		}
	}
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].TurnNumber < scenes[j].TurnNumber })
	if len(scenes) > limit {
		scenes = scenes[len(scenes)-limit:]
	}
	return scenes, nil
}

func (s *fakeStore) PendingEchoes(ctx context.Context, storyID primitive.ObjectID) ([]models.Echo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []models.Echo
	for _, echo := range s.echoes {
		if echo.StoryID == storyID && echo.Status == models.EchoPending {
			pending = append(pending, *echo)
		}
	}
	return pending, nil
}

func (s *fakeStore) ResolveEchoes(ctx context.Context, ids []primitive.ObjectID, sceneID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		echo, ok := s.echoes[id]
		if !ok || echo.Status != models.EchoPending {
			continue
		}
		echo.Status = models.EchoResolved
		resolved := sceneID
		echo.ResolvedAtSceneID = &resolved
	}
	return nil
}

func (s *fakeStore) InsertEcho(ctx context.Context, echo *models.Echo) (primitive.ObjectID, error) {
	return s.addEcho(echo), nil
}

func (s *fakeStore) InsertCodexEntries(ctx context.Context, entries []models.CodexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codex = append(s.codex, entries...)
	return nil
}

func (s *fakeStore) sceneCount(storyID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, scene := range s.scenes {
		if scene.StoryID == storyID {
			n++
		}
	}
	return n
}

func (s *fakeStore) protagonist(id primitive.ObjectID) models.Protagonist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.protagonists[id]
}

func (s *fakeStore) story(id primitive.ObjectID) models.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.stories[id]
}

func (s *fakeStore) echo(id primitive.ObjectID) models.Echo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.echoes[id]
}

// fakeLLM scripts model behavior per output type. evalCalls counts echo
// evaluation calls so tests can assert the empty-set short circuit.
type fakeLLM struct {
	mu        sync.Mutex
	evalCalls int

	evalFn    func(prompt string) ([]string, error)
	sceneFn   func(prompt string) (sceneResponse, error)
	openingFn func(prompt string) (openingResponse, error)
}

func (f *fakeLLM) GenerateStructured(ctx context.Context, systemPrompt, prompt string, schema *genai.Schema, out any) error {
	switch out := out.(type) {
	case *echoEvalResponse:
		f.mu.Lock()
		f.evalCalls++
		f.mu.Unlock()
		if f.evalFn == nil {
			out.TriggeredEchoIDs = nil
			return nil
		}
		ids, err := f.evalFn(prompt)
		if err != nil {
			return err
		}
		out.TriggeredEchoIDs = ids
		return nil
	case *sceneResponse:
		if f.sceneFn == nil {
			return errors.New("unexpected scene generation call")
		}
		resp, err := f.sceneFn(prompt)
		if err != nil {
			return err
		}
		*out = resp
		return nil
	case *openingResponse:
		if f.openingFn == nil {
			return errors.New("unexpected opening generation call")
		}
		resp, err := f.openingFn(prompt)
		if err != nil {
			return err
		}
		*out = resp
		return nil
	case *codexResponse:
		// Background extraction; nothing to record.
		return nil
	default:
		return errors.New("unexpected output type")
	}
}

func (f *fakeLLM) evalCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.evalCalls
}

// fakeMemory records stored messages and serves canned facts.
type fakeMemory struct {
	mu     sync.Mutex
	stored [][]memory.Message
	facts  []string
	err    error
}

func (m *fakeMemory) Store(ctx context.Context, ownerID string, messages []memory.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, messages)
	return nil
}

func (m *fakeMemory) Search(ctx context.Context, ownerID, query string, limit int) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.facts, nil
}
