package prompts

import (
	"fmt"
	"strings"
)

// ProtagonistState is the current character state rendered into the
// continuation prompt.
type ProtagonistState struct {
	Name        string
	Description string
	Traits      []string
	Health      int
	Energy      int
	Location    string
	Inventory   []string
	Scars       []string
}

// SceneTurn is one past (action, narration) pair of the recency window.
type SceneTurn struct {
	UserAction string
	Narration  string
}

// ContinueContext carries everything the continuation prompt needs.
// TriggeredEchoes holds descriptions only; echo ids never reach the
// narration model.
type ContinueContext struct {
	Protagonist      *ProtagonistState
	RecentScenes     []SceneTurn
	UserAction       string
	TriggeredEchoes  []string
	FactualKnowledge []string
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

// BuildContinuePrompt returns the prompt for the next scene of a story.
func BuildContinuePrompt(ctx ContinueContext) string {
	var b strings.Builder

	b.WriteString("Continue the story based on the player's action.\n")

	if p := ctx.Protagonist; p != nil {
		fmt.Fprintf(&b, `
## Current Protagonist State
- Name: %s
- Health: %d/100
- Energy: %d/100
- Location: %s
- Traits: %s
- Inventory: %s
- Scars: %s
`, p.Name, p.Health, p.Energy, p.Location,
			joinOr(p.Traits, "None"),
			joinOr(p.Inventory, "Empty"),
			joinOr(p.Scars, "None"))
	}

	if len(ctx.TriggeredEchoes) > 0 {
		b.WriteString("\n## Consequences Unfolding\nThe following past choices are now coming back:\n")
		for _, desc := range ctx.TriggeredEchoes {
			fmt.Fprintf(&b, "- %s\n", desc)
		}
		b.WriteString("Weave these consequences naturally into the scene. Don't announce them; show them through events, dialogue, or changed circumstances.\n")
	}

	if len(ctx.FactualKnowledge) > 0 {
		b.WriteString("\n## Relevant Memories\nThese facts from earlier in the story may be relevant:\n")
		for _, fact := range ctx.FactualKnowledge {
			fmt.Fprintf(&b, "- %s\n", fact)
		}
	}

	b.WriteString("\n## Recent Events\n")
	if len(ctx.RecentScenes) == 0 {
		b.WriteString("This is the beginning of the story.\n")
	} else {
		for i, s := range ctx.RecentScenes {
			fmt.Fprintf(&b, "### Turn %d\n**Action:** %s\n**Result:** %s\n\n", i+1, s.UserAction, s.Narration)
		}
	}

	fmt.Fprintf(&b, `## Player's Action
"%s"

## Requirements
1. Respond to the action naturally within the world's rules
2. Show consequences; actions have weight
3. Update the protagonist's state if relevant (health, energy, location, inventory, traits, scars). Health and energy are the resulting absolute values; traits, inventory, and scars are the complete resulting lists, not additions
4. If this action plants a seed for a future consequence, return it as echo_planted with a concrete trigger condition
5. If the story has reached a genuine ending (including health reaching 0), set is_story_end
6. End at a moment of tension or decision

Write 150-300 words. No meta-commentary.`, ctx.UserAction)

	return b.String()
}
