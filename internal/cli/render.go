package cli

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/diagnostic"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/raphaelgruber/mixmyroutine/internal/routine"
	"github.com/raphaelgruber/mixmyroutine/internal/service"
)

func (p printer) report(r conflict.Report) {
	if r.Compatible() {
		p.printf("%s %s\n", p.theme.goodStyle().Render("Compatible:"), strings.Join(r.Ingredients, ", "))
	} else {
		p.printf("%s %s\n", p.theme.badStyle().Render("Conflicting:"), strings.Join(r.Ingredients, ", "))
	}

	p.findings("Conflicts", r.Conflicts, p.theme.badStyle().Render("✗"))
	p.findings("Cautions", r.Cautions, p.theme.warnStyle().Render("!"))
	p.findings("Synergies", r.Synergies, p.theme.goodStyle().Render("+"))

	if len(r.Hints) > 0 {
		p.printf("\n")
		for _, h := range r.Hints {
			p.hint(fmt.Sprintf("%s + %s: %s", h.A, h.B, h.Message))
		}
	}
	p.unknown(r.Unknown)
}

func (p printer) findings(title string, fs []conflict.Finding, mark string) {
	if len(fs) == 0 {
		return
	}
	p.printf("\n")
	p.heading(title)
	for _, f := range fs {
		p.printf("  %s %s + %s (severity %d)\n", mark, f.NameA, f.NameB, f.Severity)
		p.printf("    %s\n", f.Explanation)
		if f.Recommendation != "" {
			p.printf("    → %s\n", f.Recommendation)
		}
		if f.ApplyFirst != "" {
			p.printf("    Apply %s first", f.ApplyFirst)
			if f.WaitMinutes > 0 {
				p.printf(", wait %d min", f.WaitMinutes)
			}
			p.printf("\n")
		}
	}
}

func (p printer) unknown(us []models.UnknownIngredient) {
	if len(us) == 0 {
		return
	}
	p.printf("\n")
	p.heading("Not recognized")
	for _, u := range us {
		p.printf("  %s %q", p.theme.warnStyle().Render("?"), u.Input)
		if len(u.Suggestions) > 0 {
			p.printf(" (did you mean %s?)", strings.Join(u.Suggestions, ", "))
		}
		p.printf("\n")
	}
}

func (p printer) notes(ns []models.Note) {
	if len(ns) == 0 {
		return
	}
	p.printf("\n")
	p.heading("Notes")
	for _, n := range ns {
		prefix := string(n.Kind)
		if n.Slot != "" {
			prefix = strings.ToUpper(string(n.Slot)) + " " + prefix
		}
		p.printf("  %s %s\n", p.theme.hintStyle().Render("["+prefix+"]"), n.Message)
	}
}

func (p printer) routine(res routine.Result) {
	if res.Empty {
		p.printf("Nothing to schedule.\n")
		p.unknown(res.Unknown)
		return
	}

	for _, slot := range []models.Slot{models.SlotAM, models.SlotPM} {
		steps := res.Routine.Steps(slot)
		title := "Morning (AM)"
		if slot == models.SlotPM {
			title = "Evening (PM)"
		}
		p.heading(title)
		if len(steps) == 0 {
			p.hint("  (no steps)")
		}
		for _, s := range steps {
			p.printf("  %d. %s", s.Position, s.Name)
			if len(s.Ingredients) > 1 || (len(s.Ingredients) == 1 && s.Ingredients[0] != s.Name) {
				p.printf(" %s", p.theme.hintStyle().Render("("+strings.Join(s.Ingredients, ", ")+")"))
			}
			p.printf("\n")
		}
		p.printf("\n")
	}

	if len(res.Unresolved) > 0 {
		p.heading("Unresolved conflicts")
		for _, u := range res.Unresolved {
			p.printf("  %s %s: %s + %s (%s + %s)\n", p.theme.badStyle().Render("✗"),
				strings.ToUpper(string(u.Slot)), u.ItemA, u.ItemB, u.A, u.B)
			p.printf("    %s\n", u.Explanation)
			if u.Recommendation != "" {
				p.printf("    → %s\n", u.Recommendation)
			}
		}
	}
	p.unknown(res.Unknown)
	p.notes(res.Notes)
}

func (p printer) advice(ad service.Advice) {
	switch ad.Source {
	case service.SourceCases:
		p.heading(fmt.Sprintf("Based on %d similar cases (best match %.2f)", len(ad.Cases.Matches), ad.Cases.BestScore))
	default:
		p.heading(fmt.Sprintf("No similar case (best match %.2f); using concern table", ad.Cases.BestScore))
	}

	if len(ad.Ingredients) == 0 {
		p.printf("  No ingredients to recommend.\n")
	}
	for i, s := range ad.Ingredients {
		p.printf("  %d. %s %s\n", i+1, s.Name, p.theme.hintStyle().Render(fmt.Sprintf("[%s, %.2f]", s.Category, s.Weight)))
		if s.Reason != "" {
			p.printf("     %s\n", s.Reason)
		}
	}

	if len(ad.Removed) > 0 {
		p.printf("\n")
		p.heading("Left out")
		for _, r := range ad.Removed {
			p.printf("  %s %s conflicts with %s: %s\n", p.theme.warnStyle().Render("-"), r.ID, r.ConflictsWith, r.Explanation)
		}
	}
	if len(ad.Cases.Excluded) > 0 {
		p.printf("\n")
		p.heading("Excluded")
		for _, e := range ad.Cases.Excluded {
			p.printf("  %s %s: %s\n", p.theme.warnStyle().Render("-"), e.ID, e.Reason)
		}
	}
	p.notes(ad.Notes)
}

func (p printer) categories(ranked []diagnostic.RankedCategory) {
	if len(ranked) == 0 {
		p.printf("No categories.\n")
		return
	}
	for i, rc := range ranked {
		concerns := make([]string, len(rc.Concerns))
		for j, c := range rc.Concerns {
			concerns[j] = string(c)
		}
		p.printf("  %2d. %-18s %s\n", i+1, rc.Category, p.theme.hintStyle().Render(strings.Join(concerns, ", ")))
	}
}

func (p printer) ingredient(info service.IngredientInfo) {
	ing := info.Ingredient
	p.heading(ing.Name)
	p.printf("  ID:          %s\n", ing.ID)
	p.printf("  Category:    %s\n", ing.Category)
	p.printf("  Time of day: %s\n", ing.TimeOfDay)
	if len(ing.Aliases) > 0 {
		p.printf("  Aliases:     %s\n", strings.Join(ing.Aliases, ", "))
	}
	if ing.PH != nil {
		p.printf("  pH:          %.1f-%.1f\n", ing.PH.Min, ing.PH.Max)
	}
	if ing.MaxConcentration != nil {
		p.printf("  Max conc.:   %g%%\n", *ing.MaxConcentration)
	}
	if len(ing.Concerns) > 0 {
		cs := make([]string, len(ing.Concerns))
		for i, c := range ing.Concerns {
			cs[i] = string(c)
		}
		p.printf("  Concerns:    %s\n", strings.Join(cs, ", "))
	}
	if len(ing.CautionSkinTypes) > 0 {
		ss := make([]string, len(ing.CautionSkinTypes))
		for i, s := range ing.CautionSkinTypes {
			ss[i] = string(s)
		}
		p.printf("  Caution for: %s\n", strings.Join(ss, ", "))
	}
	if ing.Guidance != "" {
		p.printf("\n  %s\n", ing.Guidance)
	}

	if len(info.Interactions) == 0 {
		return
	}
	p.printf("\n")
	p.heading("Interactions")
	for _, e := range info.Interactions {
		var mark string
		switch e.Kind {
		case models.KindConflict:
			mark = p.theme.badStyle().Render("✗")
		case models.KindCaution:
			mark = p.theme.warnStyle().Render("!")
		default:
			mark = p.theme.goodStyle().Render("+")
		}
		p.printf("  %s %-9s %s: %s\n", mark, e.Kind, e.Other(ing.ID), e.Explanation)
	}
}
