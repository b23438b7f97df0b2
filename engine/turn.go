package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"once/memory"
	"once/models"
)

const (
	// recentSceneWindow bounds how many past scenes the narration model
	// sees, oldest first.
	recentSceneWindow = 5

	memorySearchLimit = 10

	// sideEffectTimeout bounds the post-commit memory store and codex
	// extraction, which run detached from the request.
	sideEffectTimeout = 60 * time.Second
)

// TurnResult is the outcome of a committed turn.
type TurnResult struct {
	Scene              *models.Scene       `json:"scene"`
	ProtagonistUpdates *ProtagonistUpdates `json:"protagonist_updates,omitempty"`
	EchoPlanted        bool                `json:"echo_planted"`
	StoryEnded         bool                `json:"story_ended"`
}

// ContinueStory runs one full turn: evaluate pending echoes, retrieve
// memory, generate the next scene, apply state deltas, persist, resolve
// triggered echoes, maybe plant a new one, then dispatch best-effort
// memory storage and codex extraction.
//
// onNarration, when non-nil, is invoked with the complete narration after
// generation succeeds and before anything is persisted; the streaming
// handler uses it to start emitting text early. Failures before that
// point mean the caller never sees narration and nothing was written.
//
// Turns for the same story are serialized; see storyLocks.
func (e *Engine) ContinueStory(ctx context.Context, storyID, action string, onNarration func(narration string)) (*TurnResult, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, fmt.Errorf("%w: action is required", ErrValidation)
	}
	id, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid story id", ErrValidation)
	}

	lock := e.locks.lock(id)
	defer lock.Unlock()

	story, err := e.store.Story(ctx, id)
	if err != nil {
		return nil, err
	}
	if story.Status != models.StoryActive {
		return nil, fmt.Errorf("%w: story is %s", ErrStateConflict, story.Status)
	}

	prot, err := e.store.ActiveProtagonist(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := e.store.RecentScenes(ctx, id, recentSceneWindow)
	if err != nil {
		return nil, err
	}
	pending, err := e.store.PendingEchoes(ctx, id)
	if err != nil {
		return nil, err
	}

	lastNarration := ""
	if len(recent) > 0 {
		lastNarration = recent[len(recent)-1].Narration
	}

	triggered, err := e.evaluateEchoes(ctx, pending, prot, action, lastNarration)
	if err != nil {
		return nil, err
	}

	facts, err := e.mem.Search(ctx, story.UserID, action, memorySearchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: memory search: %v", ErrGeneration, err)
	}

	resp, err := e.generateContinuation(ctx, story, prot, recent, action, triggered, facts)
	if err != nil {
		return nil, err
	}

	if onNarration != nil {
		onNarration(resp.Narration)
	}

	now := time.Now().UTC()
	newTurnNumber := story.TurnCount + 1

	if prot != nil && resp.ProtagonistUpdates != nil {
		applyProtagonistUpdates(prot, resp.ProtagonistUpdates)
		prot.UpdatedAt = now
		if err := e.store.UpdateProtagonist(ctx, prot); err != nil {
			return nil, err
		}
	}

	scene := &models.Scene{
		StoryID:    id,
		TurnNumber: newTurnNumber,
		UserAction: action,
		Narration:  resp.Narration,
		CreatedAt:  now,
	}
	if prot != nil {
		protID := prot.ID
		scene.ProtagonistID = &protID
		scene.ProtagonistSnapshot = prot.Snapshot()
	}

	sceneID, err := e.store.InsertScene(ctx, scene)
	if err != nil {
		return nil, err
	}
	scene.ID = sceneID

	if err := e.store.SetStoryTurnCount(ctx, id, newTurnNumber); err != nil {
		return nil, err
	}
	if resp.IsStoryEnd {
		if err := e.store.CompleteStory(ctx, id, now); err != nil {
			return nil, err
		}
	}

	if len(triggered) > 0 {
		ids := make([]primitive.ObjectID, 0, len(triggered))
		for _, echo := range triggered {
			ids = append(ids, echo.ID)
		}
		if err := e.store.ResolveEchoes(ctx, ids, sceneID); err != nil {
			return nil, err
		}
	}

	planted := false
	if resp.EchoPlanted != nil {
		echo := &models.Echo{
			StoryID:          id,
			SourceSceneID:    sceneID,
			Description:      resp.EchoPlanted.Description,
			TriggerCondition: resp.EchoPlanted.TriggerCondition,
			Status:           models.EchoPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if _, err := e.store.InsertEcho(ctx, echo); err != nil {
			return nil, err
		}
		planted = true
	}

	// The turn is committed; everything past this point is best effort.
	e.dispatchSideEffects(story, id, sceneID, action, resp.Narration)

	var updates *ProtagonistUpdates
	if prot != nil {
		updates = resp.ProtagonistUpdates
	}
	return &TurnResult{
		Scene:              scene,
		ProtagonistUpdates: updates,
		EchoPlanted:        planted,
		StoryEnded:         resp.IsStoryEnd,
	}, nil
}

// dispatchSideEffects fires the post-commit memory store and codex
// extraction without blocking the response. Each runs under its own
// context and error boundary; failures are logged, never surfaced.
func (e *Engine) dispatchSideEffects(story *models.Story, storyID, sceneID primitive.ObjectID, action, narration string) {
	go func() {
		defer logPanic("[MEMORY]")
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		err := e.mem.Store(ctx, story.UserID, []memory.Message{
			{Role: "user", Content: action},
			{Role: "assistant", Content: narration},
		})
		if err != nil {
			log.Printf("[MEMORY] store failed for story %s: %v", storyID.Hex(), err)
		}
	}()

	go func() {
		defer logPanic("[CODEX]")
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		e.extractCodexEntries(ctx, storyID, sceneID, narration)
	}()
}

func logPanic(tag string) {
	if r := recover(); r != nil {
		log.Printf("%s panic in background task: %v", tag, r)
	}
}
