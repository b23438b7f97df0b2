package prompts

import (
	"fmt"

	"once/models"
)

var stanceGuides = map[models.NarrativeStance]string{
	models.StanceGrimdark: "Grimdark: the world is hostile and victories cost more than they pay. Violence has lasting consequences; hope is rare and hard-won.",
	models.StanceHeroic:   "Heroic: courage matters and bold action is rewarded, though never for free. The tone is adventurous, with real stakes but room for triumph.",
	models.StanceGrounded: "Grounded: keep events plausible and human-scale. No melodrama, no convenient coincidences; consequences follow cause and effect.",
	models.StanceMythic:   "Mythic: the story moves with the weight of legend. Omens, symbols, and fate color events; the ordinary brushes against the numinous.",
	models.StanceNoir:     "Noir: morally gray characters, bad bargains, rain on the window. Nobody is clean and every favor has a price.",
}

// BuildSystemPrompt returns the system instruction for every narration
// call, shaped by the story's tone preset and mode.
func BuildSystemPrompt(stance models.NarrativeStance, mode models.StoryMode) string {
	guide, ok := stanceGuides[stance]
	if !ok {
		guide = stanceGuides[models.StanceHeroic]
	}

	modeBlock := "This story is narrator-driven: there is no tracked protagonist. Narrate events from an omniscient stance and never report character state changes."
	if mode == models.ModeProtagonist {
		modeBlock = "This story follows a single tracked protagonist. Their health, energy, location, traits, inventory, and scars are game state: report changes through the structured fields, never as bare numbers inside the prose."
	}

	return fmt.Sprintf(`You are the narrator of an interactive fiction story. The player submits actions; you continue the story.

TONE:
%s

MODE:
%s

RULES:
- Stay in second person, present tense.
- Never speak as the player or decide their next action for them.
- Actions have weight; show consequences instead of announcing them.
- No meta-commentary, no out-of-character remarks.`, guide, modeBlock)
}
