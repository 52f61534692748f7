package resolve

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"notifyplex/internal/config"
	"notifyplex/internal/plex"
)

// Mode selects how a download category maps to library sections.
type Mode string

const (
	// ModeAuto maps the movies and tv category lists to sections by kind.
	ModeAuto Mode = "auto"
	// ModeCustom refreshes a fixed section list for every category.
	ModeCustom Mode = "custom"
	// ModeBoth is the union of auto and custom.
	ModeBoth Mode = "both"
	// ModeAdvanced maps each category to one section by library title.
	ModeAdvanced Mode = "advanced"
)

// ParseMode validates a mode string from configuration.
func ParseMode(raw string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case ModeAuto, ModeCustom, ModeBoth, ModeAdvanced:
		return mode, nil
	default:
		return "", fmt.Errorf("refresh mode: unsupported value %q", raw)
	}
}

// Result is the outcome of section resolution. MissingTitles names the
// section_mapping entries whose library title does not exist on the server;
// callers decide how hard to fail on those.
type Result struct {
	Sections      []int
	MissingTitles []string
}

var fold = cases.Fold()

// Resolve maps a download category to the section ids to refresh. live is the
// server's current library list and drives auto-mode kind matching and
// advanced-mode title lookup. Resolution itself never fails; an unmatched
// category yields an empty result.
func Resolve(mode Mode, category string, rules config.Refresh, live []plex.Section) Result {
	category = fold.String(strings.TrimSpace(category))

	switch mode {
	case ModeAuto:
		return Result{Sections: autoSections(category, rules, live)}
	case ModeCustom:
		return Result{Sections: uniqueSorted(rules.CustomSections)}
	case ModeBoth:
		merged := append(autoSections(category, rules, live), rules.CustomSections...)
		return Result{Sections: uniqueSorted(merged)}
	case ModeAdvanced:
		return advancedSections(category, rules, live)
	default:
		return Result{}
	}
}

// autoSections picks sections by media kind. Explicitly pinned section ids
// win; otherwise every live section of the matching kind is used.
func autoSections(category string, rules config.Refresh, live []plex.Section) []int {
	switch {
	case containsFolded(rules.MoviesCategories, category):
		if len(rules.MoviesSections) > 0 {
			return uniqueSorted(rules.MoviesSections)
		}
		return sectionsOfKind(live, "movie")
	case containsFolded(rules.TVCategories, category):
		if len(rules.TVSections) > 0 {
			return uniqueSorted(rules.TVSections)
		}
		return sectionsOfKind(live, "show")
	default:
		return nil
	}
}

// advancedSections looks the category up in the section mapping and resolves
// the mapped library title against the live section list. At most one section
// comes back; a mapped title absent from the server is reported, not dropped.
func advancedSections(category string, rules config.Refresh, live []plex.Section) Result {
	var title string
	found := false
	for mappedCategory, mappedTitle := range rules.SectionMapping {
		if fold.String(strings.TrimSpace(mappedCategory)) == category {
			title = strings.TrimSpace(mappedTitle)
			found = true
			break
		}
	}
	if !found || title == "" {
		return Result{}
	}

	for _, section := range live {
		if section.Title == title {
			return Result{Sections: []int{section.ID}}
		}
	}
	return Result{MissingTitles: []string{title}}
}

func sectionsOfKind(live []plex.Section, kind string) []int {
	var ids []int
	for _, section := range live {
		if section.Kind == kind {
			ids = append(ids, section.ID)
		}
	}
	return uniqueSorted(ids)
}

func containsFolded(haystack []string, folded string) bool {
	if folded == "" {
		return false
	}
	for _, candidate := range haystack {
		if fold.String(strings.TrimSpace(candidate)) == folded {
			return true
		}
	}
	return false
}

func uniqueSorted(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Ints(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
