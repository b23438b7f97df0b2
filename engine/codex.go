package engine

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"google.golang.org/genai"

	"once/models"
	"once/prompts"
)

var codexSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"entries": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"entry_type": {
						Type: genai.TypeString,
						Enum: []string{"character", "location", "item", "faction", "event", "lore"},
					},
					"name":    {Type: genai.TypeString},
					"summary": {Type: genai.TypeString},
				},
				Required: []string{"entry_type", "name", "summary"},
			},
		},
	},
	Required: []string{"entries"},
}

type codexResponse struct {
	Entries []struct {
		EntryType string `json:"entry_type"`
		Name      string `json:"name"`
		Summary   string `json:"summary"`
	} `json:"entries"`
}

// extractCodexEntries pulls codex facts out of a committed scene's
// narration. It runs detached from the turn: every failure is logged and
// swallowed, and the turn pipeline never reads the results back.
func (e *Engine) extractCodexEntries(ctx context.Context, storyID, sceneID primitive.ObjectID, narration string) {
	var resp codexResponse
	if err := e.llm.GenerateStructured(ctx, "", prompts.BuildCodexPrompt(narration), codexSchema, &resp); err != nil {
		log.Printf("[CODEX] extraction failed for story %s: %v", storyID.Hex(), err)
		return
	}

	now := time.Now().UTC()
	var entries []models.CodexEntry
	for _, entry := range resp.Entries {
		entryType := models.CodexEntryType(entry.EntryType)
		if !models.ValidCodexType(entryType) {
			log.Printf("[CODEX] model returned unknown entry type: %s", entry.EntryType)
			continue
		}
		if entry.Name == "" || entry.Summary == "" {
			continue
		}
		entries = append(entries, models.CodexEntry{
			StoryID:               storyID,
			EntryType:             entryType,
			Name:                  entry.Name,
			Summary:               entry.Summary,
			FirstMentionedSceneID: &sceneID,
			CreatedAt:             now,
			UpdatedAt:             now,
		})
	}
	if len(entries) == 0 {
		return
	}

	if err := e.store.InsertCodexEntries(ctx, entries); err != nil {
		log.Printf("[CODEX] insert failed for story %s: %v", storyID.Hex(), err)
	}
}
