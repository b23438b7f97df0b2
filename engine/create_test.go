package engine

import (
	"context"
	"errors"
	"testing"

	"once/models"
	"once/prompts"
)

func TestCreateStoryValidation(t *testing.T) {
	eng := New(newFakeStore(), &fakeLLM{}, &fakeMemory{})

	tests := []struct {
		name  string
		input CreateStoryInput
	}{
		{"missing title", CreateStoryInput{UserID: "u", Genre: "fantasy"}},
		{"missing genre", CreateStoryInput{UserID: "u", Title: "A Tale"}},
		{"unknown stance", CreateStoryInput{UserID: "u", Title: "A Tale", Genre: "fantasy", NarrativeStance: "cozy"}},
		{"unknown mode", CreateStoryInput{UserID: "u", Title: "A Tale", Genre: "fantasy", StoryMode: "ensemble"}},
		{"protagonist without location", CreateStoryInput{
			UserID: "u", Title: "A Tale", Genre: "fantasy",
			Protagonist: &prompts.ProtagonistSeed{Name: "Wren"},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.CreateStory(context.Background(), tc.input)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreateStoryWithSuppliedProtagonist(t *testing.T) {
	store := newFakeStore()
	llm := &fakeLLM{
		openingFn: func(string) (openingResponse, error) {
			return openingResponse{Narration: "The village wakes to rain."}, nil
		},
	}
	eng := New(store, llm, &fakeMemory{})

	result, err := eng.CreateStory(context.Background(), CreateStoryInput{
		UserID: "test-user-1",
		Title:  "The Long Road",
		Genre:  "fantasy",
		Protagonist: &prompts.ProtagonistSeed{
			Name:     "Wren",
			Traits:   []string{"curious", "stubborn"},
			Location: "village",
		},
	})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}

	if result.Story.Status != models.StoryActive {
		t.Errorf("story status = %s, want active", result.Story.Status)
	}
	if result.Story.TurnCount != 1 {
		t.Errorf("turn count = %d, want 1 (the opening scene)", result.Story.TurnCount)
	}
	if result.Story.NarrativeStance != models.StanceHeroic {
		t.Errorf("default stance = %s, want heroic", result.Story.NarrativeStance)
	}

	prot := result.Protagonist
	if prot == nil {
		t.Fatal("expected a protagonist")
	}
	if prot.Health != 100 || prot.Energy != 100 {
		t.Errorf("starting health/energy = %d/%d, want 100/100", prot.Health, prot.Energy)
	}
	if len(prot.BaseTraits) != 2 || len(prot.CurrentTraits) != 2 {
		t.Errorf("traits not seeded: base=%v current=%v", prot.BaseTraits, prot.CurrentTraits)
	}
	if !prot.IsActive {
		t.Error("protagonist not active")
	}

	scene := result.Scene
	if scene.TurnNumber != 1 {
		t.Errorf("opening scene turn = %d, want 1", scene.TurnNumber)
	}
	if scene.UserAction != models.OpeningAction {
		t.Errorf("opening scene action = %q, want %q", scene.UserAction, models.OpeningAction)
	}
	if scene.ProtagonistSnapshot == nil {
		t.Error("opening scene missing protagonist snapshot")
	}
}

func TestCreateStoryGeneratesProtagonistWhenMissing(t *testing.T) {
	store := newFakeStore()
	llm := &fakeLLM{
		openingFn: func(string) (openingResponse, error) {
			return openingResponse{
				Narration: "A stranger steps off the night train.",
				ProtagonistGenerated: &GeneratedProtagonist{
					Name:     "Moss",
					Traits:   []string{"wary"},
					Location: "the station",
				},
			}, nil
		},
	}
	eng := New(store, llm, &fakeMemory{})

	result, err := eng.CreateStory(context.Background(), CreateStoryInput{
		UserID: "test-user-1",
		Title:  "Night Train",
		Genre:  "noir",
	})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	if result.Protagonist == nil {
		t.Fatal("expected a generated protagonist")
	}
	if result.Protagonist.Name != "Moss" {
		t.Errorf("protagonist name = %q, want Moss", result.Protagonist.Name)
	}
	if result.Protagonist.Location != "the station" {
		t.Errorf("protagonist location = %q, want the station", result.Protagonist.Location)
	}
}

func TestCreateStoryNarratorModeHasNoProtagonist(t *testing.T) {
	store := newFakeStore()
	llm := &fakeLLM{
		openingFn: func(string) (openingResponse, error) {
			return openingResponse{Narration: "The age of iron begins."}, nil
		},
	}
	eng := New(store, llm, &fakeMemory{})

	result, err := eng.CreateStory(context.Background(), CreateStoryInput{
		UserID:    "test-user-1",
		Title:     "Chronicle",
		Genre:     "historical",
		StoryMode: models.ModeNarrator,
	})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	if result.Protagonist != nil {
		t.Error("narrator-mode story has a protagonist")
	}
}

func TestCreateStoryOpeningFailure(t *testing.T) {
	store := newFakeStore()
	llm := &fakeLLM{
		openingFn: func(string) (openingResponse, error) {
			return openingResponse{}, errors.New("model unavailable")
		},
	}
	eng := New(store, llm, &fakeMemory{})

	_, err := eng.CreateStory(context.Background(), CreateStoryInput{
		UserID: "test-user-1",
		Title:  "Doomed",
		Genre:  "fantasy",
	})
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}
