package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"once/memory"
	"once/models"
	"once/prompts"
)

// CreateStoryInput is the validated request to start a story.
type CreateStoryInput struct {
	UserID          string
	Title           string
	Description     string
	Genre           string
	NarrativeStance models.NarrativeStance
	StoryMode       models.StoryMode
	Protagonist     *prompts.ProtagonistSeed
}

// CreateStoryResult is the freshly created story, its protagonist (nil in
// narrator mode), and the generated opening scene.
type CreateStoryResult struct {
	Story       *models.Story       `json:"story"`
	Protagonist *models.Protagonist `json:"protagonist,omitempty"`
	Scene       *models.Scene       `json:"scene"`
}

// CreateStory inserts a new story, generates its opening scene, and
// persists the scene as turn 1. In protagonist mode a supplied character
// seed is used as-is; without one the model invents the protagonist.
func (e *Engine) CreateStory(ctx context.Context, in CreateStoryInput) (*CreateStoryResult, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Genre) == "" {
		return nil, fmt.Errorf("%w: genre is required", ErrValidation)
	}
	if in.NarrativeStance == "" {
		in.NarrativeStance = models.StanceHeroic
	}
	if !models.ValidStance(in.NarrativeStance) {
		return nil, fmt.Errorf("%w: unknown narrative stance %q", ErrValidation, in.NarrativeStance)
	}
	if in.StoryMode == "" {
		in.StoryMode = models.ModeProtagonist
	}
	if !models.ValidMode(in.StoryMode) {
		return nil, fmt.Errorf("%w: unknown story mode %q", ErrValidation, in.StoryMode)
	}
	if seed := in.Protagonist; seed != nil {
		if strings.TrimSpace(seed.Name) == "" || strings.TrimSpace(seed.Location) == "" {
			return nil, fmt.Errorf("%w: protagonist needs a name and a starting location", ErrValidation)
		}
	}

	now := time.Now().UTC()
	story := &models.Story{
		UserID:          in.UserID,
		Title:           in.Title,
		Description:     in.Description,
		Genre:           in.Genre,
		NarrativeStance: in.NarrativeStance,
		StoryMode:       in.StoryMode,
		Status:          models.StoryActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	storyID, err := e.store.InsertStory(ctx, story)
	if err != nil {
		return nil, err
	}
	story.ID = storyID

	var prot *models.Protagonist
	if in.StoryMode == models.ModeProtagonist && in.Protagonist != nil {
		prot = newProtagonist(story, in.Protagonist.Name, in.Protagonist.Description, in.Protagonist.Traits, in.Protagonist.Location, now)
		if err := e.insertProtagonist(ctx, prot); err != nil {
			return nil, err
		}
	}

	opening, err := e.generateOpening(ctx, story, in.Protagonist)
	if err != nil {
		return nil, err
	}

	if prot == nil && in.StoryMode == models.ModeProtagonist && opening.ProtagonistGenerated != nil {
		gen := opening.ProtagonistGenerated
		prot = newProtagonist(story, gen.Name, gen.Description, gen.Traits, gen.Location, now)
		if err := e.insertProtagonist(ctx, prot); err != nil {
			return nil, err
		}
	}

	scene := &models.Scene{
		StoryID:    storyID,
		TurnNumber: 1,
		UserAction: models.OpeningAction,
		Narration:  opening.Narration,
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

	// The opening scene is turn 1, so continuation starts at 2.
	if err := e.store.SetStoryTurnCount(ctx, storyID, 1); err != nil {
		return nil, err
	}
	story.TurnCount = 1

	go func() {
		defer logPanic("[MEMORY]")
		mctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		err := e.mem.Store(mctx, in.UserID, []memory.Message{
			{Role: "assistant", Content: opening.Narration},
		})
		if err != nil {
			log.Printf("[MEMORY] store failed for story %s: %v", storyID.Hex(), err)
		}
	}()

	return &CreateStoryResult{Story: story, Protagonist: prot, Scene: scene}, nil
}

func newProtagonist(story *models.Story, name, description string, traits []string, location string, now time.Time) *models.Protagonist {
	if traits == nil {
		traits = []string{}
	}
	return &models.Protagonist{
		StoryID:       story.ID,
		Name:          name,
		Description:   description,
		Health:        100,
		Energy:        100,
		Location:      location,
		BaseTraits:    traits,
		CurrentTraits: traits,
		Inventory:     []string{},
		Scars:         []string{},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (e *Engine) insertProtagonist(ctx context.Context, prot *models.Protagonist) error {
	id, err := e.store.InsertProtagonist(ctx, prot)
	if err != nil {
		return err
	}
	prot.ID = id
	return nil
}
