package coach

import (
	"fmt"
	"strings"
)

const battlePlanTemplate = `You are an accountability coach. A user is struggling with: '%s'.
Generate a 3-step, actionable 'Battle Plan' for them.
The tone should be supportive but firm. Return only the 3 steps.`

// BuildPrompt embeds already-sanitized struggle text in the coach prompt.
func BuildPrompt(struggle string) string {
	return strings.TrimSpace(fmt.Sprintf(battlePlanTemplate, struggle))
}
