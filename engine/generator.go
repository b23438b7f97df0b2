package engine

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"once/models"
	"once/prompts"
)

// ProtagonistUpdates is the state delta proposed by the narration model.
// Health and energy are resulting absolute values, not offsets. Traits,
// inventory, and scars are complete replacement lists. A nil field means
// no change; this asymmetry is the model's output contract and must not
// be normalized into diffs.
type ProtagonistUpdates struct {
	Health    *int     `json:"health,omitempty"`
	Energy    *int     `json:"energy,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Traits    []string `json:"traits,omitempty"`
	Inventory []string `json:"inventory,omitempty"`
	Scars     []string `json:"scars,omitempty"`
}

// PlantedEcho is a new consequence proposed by the narration model.
type PlantedEcho struct {
	Description      string `json:"description"`
	TriggerCondition string `json:"trigger_condition"`
}

// GeneratedProtagonist is the character the model invents when the caller
// starts a protagonist-mode story without supplying one.
type GeneratedProtagonist struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Traits      []string `json:"traits"`
	Location    string   `json:"location"`
}

type sceneResponse struct {
	Narration          string              `json:"narration"`
	ProtagonistUpdates *ProtagonistUpdates `json:"protagonist_updates,omitempty"`
	EchoPlanted        *PlantedEcho        `json:"echo_planted,omitempty"`
	IsStoryEnd         bool                `json:"is_story_end,omitempty"`
}

type openingResponse struct {
	Narration            string                `json:"narration"`
	ProtagonistGenerated *GeneratedProtagonist `json:"protagonist_generated,omitempty"`
}

var protagonistUpdatesSchema = &genai.Schema{
	Type:        genai.TypeObject,
	Description: "Changes to the protagonist's state. Omit any field that did not change.",
	Properties: map[string]*genai.Schema{
		"health":    {Type: genai.TypeInteger, Description: "Resulting health, 0-100."},
		"energy":    {Type: genai.TypeInteger, Description: "Resulting energy, 0-100."},
		"location":  {Type: genai.TypeString, Description: "New location."},
		"traits":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Complete resulting trait list."},
		"inventory": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Complete resulting inventory."},
		"scars":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Complete resulting scar list."},
	},
}

var echoPlantedSchema = &genai.Schema{
	Type:        genai.TypeObject,
	Description: "A consequence seeded by this scene, to surface later.",
	Properties: map[string]*genai.Schema{
		"description":       {Type: genai.TypeString, Description: "What the consequence is."},
		"trigger_condition": {Type: genai.TypeString, Description: "Natural-language condition under which it comes due."},
	},
	Required: []string{"description", "trigger_condition"},
}

var sceneResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"narration":           {Type: genai.TypeString, Description: "The scene narration, 150-300 words."},
		"protagonist_updates": protagonistUpdatesSchema,
		"echo_planted":        echoPlantedSchema,
		"is_story_end":        {Type: genai.TypeBoolean, Description: "True when the story has reached an ending."},
	},
	Required: []string{"narration"},
}

var openingResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"narration": {Type: genai.TypeString, Description: "The opening scene narration, 150-300 words."},
		"protagonist_generated": {
			Type:        genai.TypeObject,
			Description: "Only when no protagonist was supplied: the invented one.",
			Properties: map[string]*genai.Schema{
				"name":        {Type: genai.TypeString},
				"description": {Type: genai.TypeString},
				"traits":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"location":    {Type: genai.TypeString},
			},
			Required: []string{"name", "location"},
		},
	},
	Required: []string{"narration"},
}

func (e *Engine) generateContinuation(ctx context.Context, story *models.Story, prot *models.Protagonist, recent []models.Scene, action string, triggered []models.Echo, facts []string) (*sceneResponse, error) {
	pctx := prompts.ContinueContext{
		UserAction:       action,
		FactualKnowledge: facts,
	}
	if prot != nil {
		pctx.Protagonist = &prompts.ProtagonistState{
			Name:        prot.Name,
			Description: prot.Description,
			Traits:      prot.CurrentTraits,
			Health:      prot.Health,
			Energy:      prot.Energy,
			Location:    prot.Location,
			Inventory:   prot.Inventory,
			Scars:       prot.Scars,
		}
	}
	for _, s := range recent {
		pctx.RecentScenes = append(pctx.RecentScenes, prompts.SceneTurn{
			UserAction: s.UserAction,
			Narration:  s.Narration,
		})
	}
	// The narration model sees echo descriptions only, never ids.
	for _, echo := range triggered {
		pctx.TriggeredEchoes = append(pctx.TriggeredEchoes, echo.Description)
	}

	systemPrompt := prompts.BuildSystemPrompt(story.NarrativeStance, story.StoryMode)

	var resp sceneResponse
	if err := e.llm.GenerateStructured(ctx, systemPrompt, prompts.BuildContinuePrompt(pctx), sceneResponseSchema, &resp); err != nil {
		return nil, fmt.Errorf("%w: narration: %v", ErrGeneration, err)
	}
	if resp.Narration == "" {
		return nil, fmt.Errorf("%w: narration: model returned empty narration", ErrGeneration)
	}
	if ep := resp.EchoPlanted; ep != nil && (ep.Description == "" || ep.TriggerCondition == "") {
		// An echo without both halves can never be judged; drop it.
		resp.EchoPlanted = nil
	}
	return &resp, nil
}

func (e *Engine) generateOpening(ctx context.Context, story *models.Story, seed *prompts.ProtagonistSeed) (*openingResponse, error) {
	pctx := prompts.OpeningContext{
		Title:       story.Title,
		Description: story.Description,
		Genre:       story.Genre,
		Mode:        story.StoryMode,
		Protagonist: seed,
	}
	systemPrompt := prompts.BuildSystemPrompt(story.NarrativeStance, story.StoryMode)

	var resp openingResponse
	if err := e.llm.GenerateStructured(ctx, systemPrompt, prompts.BuildOpeningPrompt(pctx), openingResponseSchema, &resp); err != nil {
		return nil, fmt.Errorf("%w: opening scene: %v", ErrGeneration, err)
	}
	if resp.Narration == "" {
		return nil, fmt.Errorf("%w: opening scene: model returned empty narration", ErrGeneration)
	}
	return &resp, nil
}
