package parser

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/raphaelgruber/mixmyroutine/internal/routine"
	"gopkg.in/yaml.v3"
)

// RoutineDoc is a routine written as a Markdown note: optional YAML
// frontmatter holding the skin profile, then one list item per product.
//
//	---
//	skin_type: oily
//	concerns: [acne]
//	sensitivity: 2
//	---
//	# Weekday routine
//	- cleanser
//	- C serum: ascorbic acid, tocopherol, ferulic acid
//	- sunscreen
type RoutineDoc struct {
	Title   string
	Profile *models.SkinProfile
	Items   []routine.Item
}

var (
	headingLine = regexp.MustCompile(`^#\s+(.+)$`)
	listLine    = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.+)$`)
)

// ParseRoutineDoc parses a routine note. A list item "Name: a, b" is a
// product with ingredients a and b; any other item is a single ingredient.
func ParseRoutineDoc(content string) (*RoutineDoc, error) {
	doc := &RoutineDoc{}

	remaining := content
	if strings.HasPrefix(content, "---\n") {
		endIdx := strings.Index(content[4:], "\n---")
		if endIdx >= 0 {
			frontmatter := content[4 : 4+endIdx]
			remaining = strings.TrimPrefix(content[4+endIdx+4:], "\n")

			var p models.SkinProfile
			if err := yaml.Unmarshal([]byte(frontmatter), &p); err != nil {
				return nil, fmt.Errorf("parse frontmatter: %w", err)
			}
			doc.Profile = &p
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(remaining))
	for scanner.Scan() {
		line := scanner.Text()
		if m := headingLine.FindStringSubmatch(line); m != nil && doc.Title == "" {
			doc.Title = strings.TrimSpace(m[1])
			continue
		}
		m := listLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if item, ok := parseItem(m[1]); ok {
			doc.Items = append(doc.Items, item)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read routine: %w", err)
	}
	return doc, nil
}

func parseItem(text string) (routine.Item, bool) {
	text = strings.TrimSpace(text)
	if name, list, ok := strings.Cut(text, ":"); ok {
		if name = strings.TrimSpace(name); name != "" {
			return routine.Item{Name: name, Ingredients: ParseIngredientList(list)}, true
		}
	}
	if text == "" {
		return routine.Item{}, false
	}
	return routine.Item{Name: text}, true
}
