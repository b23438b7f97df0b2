package prompts

import (
	"fmt"
	"strings"
)

// PendingEcho is one candidate consequence put before the judge.
type PendingEcho struct {
	ID               string
	Description      string
	TriggerCondition string
}

// EchoEvalContext carries the situational evidence for echo judging.
type EchoEvalContext struct {
	Echoes          []PendingEcho
	Location        string
	StateSummary    string
	UserAction      string
	RecentNarration string
}

// BuildEchoEvalPrompt returns the prompt asking which pending echoes'
// trigger conditions are satisfied by the current moment.
func BuildEchoEvalPrompt(ctx EchoEvalContext) string {
	var b strings.Builder

	b.WriteString(`You are a consequence judge for an interactive story. Planted consequences ("echoes") each carry a trigger condition. Decide which conditions are satisfied by the current moment.

Pending echoes:
`)
	for _, e := range ctx.Echoes {
		fmt.Fprintf(&b, "- ID %s: %s\n  Trigger condition: %s\n", e.ID, e.Description, e.TriggerCondition)
	}

	fmt.Fprintf(&b, `
Current moment:
- Protagonist location: %s
- Protagonist state: %s
- Player's action: %q
- Previous scene: %s

IMPORTANT: A trigger condition is satisfied only when the current moment actually meets it. Thematic similarity is not enough. When in doubt, leave the echo pending; it will be evaluated again next turn.

Return the IDs of the triggered echoes. If none are triggered, return an empty list.`,
		ctx.Location, ctx.StateSummary, ctx.UserAction, ctx.RecentNarration)

	return b.String()
}
