package parser

import (
	"slices"
	"strings"
	"unicode"

	"github.com/raphaelgruber/mixmyroutine/internal/graph"
)

// Mention is a known ingredient found in free text.
type Mention struct {
	ID      string `json:"id"`
	Matched string `json:"matched"`
}

// words lowercases s and splits it on anything that is not a letter or
// digit.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ExtractMentions finds every ingredient named in text by id, name or
// alias. At each position the longest matching term wins, so "vitamin c
// derivative" is not read as "vitamin c". Each ingredient is reported once,
// in order of first appearance.
func ExtractMentions(text string, terms []graph.Term) []Mention {
	type candidate struct {
		words []string
		id    string
	}
	byFirst := make(map[string][]candidate)
	for _, t := range terms {
		w := words(t.Key)
		if len(w) == 0 {
			continue
		}
		byFirst[w[0]] = append(byFirst[w[0]], candidate{words: w, id: t.ID})
	}
	for k, list := range byFirst {
		slices.SortStableFunc(list, func(a, b candidate) int { return len(b.words) - len(a.words) })
		byFirst[k] = list
	}

	tokens := words(text)
	var out []Mention
	seen := make(map[string]bool)
	for i := 0; i < len(tokens); {
		matched := 0
		for _, c := range byFirst[tokens[i]] {
			if i+len(c.words) <= len(tokens) && slices.Equal(tokens[i:i+len(c.words)], c.words) {
				matched = len(c.words)
				if !seen[c.id] {
					seen[c.id] = true
					out = append(out, Mention{ID: c.id, Matched: strings.Join(c.words, " ")})
				}
				break
			}
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}
	return out
}
