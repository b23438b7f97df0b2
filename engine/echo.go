package engine

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"once/models"
	"once/prompts"
)

var echoEvalSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"triggered_echo_ids": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "IDs of the echoes whose trigger condition is satisfied. Empty when none are.",
		},
	},
	Required: []string{"triggered_echo_ids"},
}

type echoEvalResponse struct {
	TriggeredEchoIDs []string `json:"triggered_echo_ids"`
}

// evaluateEchoes asks the model which pending echoes have come due. The
// result is always a subset of pending: ids the model invents are dropped
// with a warning, duplicates are collapsed. An empty pending set returns
// immediately without a model call.
func (e *Engine) evaluateEchoes(ctx context.Context, pending []models.Echo, prot *models.Protagonist, action, recentNarration string) ([]models.Echo, error) {
	if len(pending) == 0 {
		return nil, nil
	}

	pctx := prompts.EchoEvalContext{
		UserAction:      action,
		RecentNarration: recentNarration,
	}
	for _, echo := range pending {
		pctx.Echoes = append(pctx.Echoes, prompts.PendingEcho{
			ID:               echo.ID.Hex(),
			Description:      echo.Description,
			TriggerCondition: echo.TriggerCondition,
		})
	}
	if prot != nil {
		pctx.Location = prot.Location
		pctx.StateSummary = fmt.Sprintf("Health: %d, Energy: %d", prot.Health, prot.Energy)
	}

	var resp echoEvalResponse
	if err := e.llm.GenerateStructured(ctx, "", prompts.BuildEchoEvalPrompt(pctx), echoEvalSchema, &resp); err != nil {
		return nil, fmt.Errorf("%w: echo evaluation: %v", ErrGeneration, err)
	}

	byID := make(map[string]models.Echo, len(pending))
	for _, echo := range pending {
		byID[echo.ID.Hex()] = echo
	}

	var triggered []models.Echo
	seen := make(map[string]bool)
	for _, id := range resp.TriggeredEchoIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		echo, ok := byID[id]
		if !ok {
			log.Printf("[ECHO] model returned unknown echo id: %s", id)
			continue
		}
		triggered = append(triggered, echo)
	}
	return triggered, nil
}
