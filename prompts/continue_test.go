package prompts

import (
	"strings"
	"testing"
)

func TestBuildContinuePrompt(t *testing.T) {
	prompt := BuildContinuePrompt(ContinueContext{
		Protagonist: &ProtagonistState{
			Name:      "Wren",
			Health:    90,
			Energy:    75,
			Location:  "forest",
			Traits:    []string{"curious"},
			Inventory: []string{"rope"},
		},
		RecentScenes: []SceneTurn{
			{UserAction: "walk into the forest", Narration: "The trees close in."},
		},
		UserAction:       "climb the old watchtower",
		TriggeredEchoes:  []string{"The merchant remembers the theft"},
		FactualKnowledge: []string{"The watchtower predates the village"},
	})

	for _, want := range []string{
		"Name: Wren",
		"Health: 90/100",
		"Location: forest",
		"The merchant remembers the theft",
		"The watchtower predates the village",
		"walk into the forest",
		`"climb the old watchtower"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildContinuePromptWithoutProtagonist(t *testing.T) {
	prompt := BuildContinuePrompt(ContinueContext{UserAction: "years pass"})

	if strings.Contains(prompt, "Protagonist State") {
		t.Error("narrator-mode prompt mentions protagonist state")
	}
	if !strings.Contains(prompt, "This is the beginning of the story.") {
		t.Error("prompt missing empty-history marker")
	}
}

func TestBuildEchoEvalPromptListsIDs(t *testing.T) {
	prompt := BuildEchoEvalPrompt(EchoEvalContext{
		Echoes: []PendingEcho{
			{ID: "65f0c1", Description: "a debt comes due", TriggerCondition: "the protagonist is broke"},
			{ID: "65f0c2", Description: "the wolves circle back", TriggerCondition: "night falls in the forest"},
		},
		Location:        "forest",
		StateSummary:    "Health: 50, Energy: 40",
		UserAction:      "make camp",
		RecentNarration: "Dusk settles.",
	})

	for _, want := range []string{"65f0c1", "65f0c2", "the protagonist is broke", "forest", `"make camp"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
