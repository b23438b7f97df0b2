package prompts

import "fmt"

// BuildCodexPrompt returns the prompt for extracting codex facts from a
// freshly generated scene.
func BuildCodexPrompt(narration string) string {
	return fmt.Sprintf(`You are a story archivist. Extract notable entities from the scene below as codex entries.

Entry types: character, location, item, faction, event, lore.

Scene:
%s

Rules:
- Only record entities concrete enough to matter later: named characters, distinct places, significant objects, organizations, pivotal events, world lore.
- One entry per entity, with a 1-2 sentence summary written as established fact.
- Skip the protagonist and skip generic scenery.
- Return an empty list when the scene introduces nothing worth recording.`, narration)
}
