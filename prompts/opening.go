package prompts

import (
	"fmt"
	"strings"

	"once/models"
)

// ProtagonistSeed is the caller-supplied character sketch for a new story.
type ProtagonistSeed struct {
	Name        string
	Description string
	Traits      []string
	Location    string
}

// OpeningContext carries everything the opening-scene prompt needs.
type OpeningContext struct {
	Title       string
	Description string
	Genre       string
	Mode        models.StoryMode
	Protagonist *ProtagonistSeed
}

// BuildOpeningPrompt returns the prompt for a story's generated first scene.
func BuildOpeningPrompt(ctx OpeningContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Open a new story.\n\n## Story\n- Title: %s\n- Genre: %s\n", ctx.Title, ctx.Genre)
	if ctx.Description != "" {
		fmt.Fprintf(&b, "- Premise: %s\n", ctx.Description)
	}

	if ctx.Mode == models.ModeProtagonist {
		if p := ctx.Protagonist; p != nil {
			fmt.Fprintf(&b, "\n## Protagonist\n- Name: %s\n", p.Name)
			if p.Description != "" {
				fmt.Fprintf(&b, "- Description: %s\n", p.Description)
			}
			if len(p.Traits) > 0 {
				fmt.Fprintf(&b, "- Traits: %s\n", strings.Join(p.Traits, ", "))
			}
			fmt.Fprintf(&b, "- Starting location: %s\n", p.Location)
			b.WriteString("\nDo not invent a different protagonist; use the one above.\n")
		} else {
			b.WriteString("\n## Protagonist\nNo protagonist was supplied. Invent one that fits the genre and return them in the protagonist_generated field: name, a one-sentence description, 2-4 traits, and a starting location.\n")
		}
	}

	b.WriteString(`
## Requirements
1. Establish the setting and the protagonist's immediate situation
2. Plant one concrete detail the story can return to later
3. End at a moment that invites the player's first action

Write 150-300 words of narration. No meta-commentary.`)

	return b.String()
}
