// Package parser turns user-supplied text into ingredient names: label
// ingredient lists, free-text mentions of known ingredients, and Markdown
// routine notes.
package parser

import (
	"regexp"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

var (
	labelPrefix   = regexp.MustCompile(`(?i)^\s*(ingredients|inci)\s*:\s*`)
	parenthetical = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	percentage    = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
	listSeparator = regexp.MustCompile(`[,;\n•·|]`)
)

// ParseIngredientList splits a label ingredient list into names. Commas,
// semicolons, newlines and bullets separate entries; percentages and
// parenthetical remarks are dropped. Order is kept and repeats removed.
func ParseIngredientList(label string) []string {
	text := labelPrefix.ReplaceAllString(label, "")
	text = parenthetical.ReplaceAllString(text, " ")
	text = percentage.ReplaceAllString(text, " ")

	var out []string
	seen := make(map[string]bool)
	for _, part := range listSeparator.Split(text, -1) {
		name := strings.Trim(strings.TrimSpace(part), ".*†")
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			continue
		}
		key := models.NormalizeKey(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
