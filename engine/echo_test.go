package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"once/models"
)

func pendingEcho(storyID primitive.ObjectID, description string) models.Echo {
	now := time.Now().UTC()
	return models.Echo{
		ID:               primitive.NewObjectID(),
		StoryID:          storyID,
		SourceSceneID:    primitive.NewObjectID(),
		Description:      description,
		TriggerCondition: "the protagonist returns to the village",
		Status:           models.EchoPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestEvaluateEchoesEmptySetSkipsModelCall(t *testing.T) {
	llm := &fakeLLM{}
	eng := New(newFakeStore(), llm, &fakeMemory{})

	triggered, err := eng.evaluateEchoes(context.Background(), nil, nil, "look around", "")
	if err != nil {
		t.Fatalf("evaluateEchoes: %v", err)
	}
	if len(triggered) != 0 {
		t.Errorf("expected no triggered echoes, got %d", len(triggered))
	}
	if llm.evalCallCount() != 0 {
		t.Errorf("expected no model call for empty pending set, got %d", llm.evalCallCount())
	}
}

func TestEvaluateEchoesReturnsSubset(t *testing.T) {
	storyID := primitive.NewObjectID()
	first := pendingEcho(storyID, "the merchant remembers the theft")
	second := pendingEcho(storyID, "the wolf pack circles back")
	pending := []models.Echo{first, second}

	llm := &fakeLLM{
		evalFn: func(prompt string) ([]string, error) {
			// One real id, once duplicated, plus one the model invented.
			return []string{first.ID.Hex(), first.ID.Hex(), primitive.NewObjectID().Hex()}, nil
		},
	}
	eng := New(newFakeStore(), llm, &fakeMemory{})

	triggered, err := eng.evaluateEchoes(context.Background(), pending, nil, "enter the market", "narration")
	if err != nil {
		t.Fatalf("evaluateEchoes: %v", err)
	}
	if len(triggered) != 1 {
		t.Fatalf("expected exactly 1 triggered echo, got %d", len(triggered))
	}
	if triggered[0].ID != first.ID {
		t.Errorf("triggered wrong echo: got %s, want %s", triggered[0].ID.Hex(), first.ID.Hex())
	}
}

func TestEvaluateEchoesModelFailure(t *testing.T) {
	storyID := primitive.NewObjectID()
	pending := []models.Echo{pendingEcho(storyID, "a debt comes due")}

	llm := &fakeLLM{
		evalFn: func(prompt string) ([]string, error) {
			return nil, errors.New("model unavailable")
		},
	}
	eng := New(newFakeStore(), llm, &fakeMemory{})

	_, err := eng.evaluateEchoes(context.Background(), pending, nil, "press on", "")
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}
