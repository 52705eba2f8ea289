package gazetteer

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// MaxResults caps the number of matches a search returns.
const MaxResults = 50

// Match is a search hit annotated for tool output.
type Match struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Level     string `json:"level"`
	Hierarchy string `json:"hierarchy"`
	// ReadyForWeather marks complete village-level codes usable for forecasts.
	ReadyForWeather bool `json:"ready_for_weather_api"`
}

// Search returns up to MaxResults rows whose name contains query,
// case-insensitively, in table order. filter restricts the level; LevelAll
// disables filtering.
func (t *Table) Search(query string, filter Level) []Match {
	q := strings.ToLower(strings.TrimSpace(query))

	var matches []Match
	for i, r := range t.rows {
		level := Classify(r.Code)
		if !filter.Accepts(level) {
			continue
		}
		if !strings.Contains(t.lower[i], q) {
			continue
		}
		matches = append(matches, Match{
			Code:            r.Code,
			Name:            r.Name,
			Level:           level.Label(),
			Hierarchy:       t.HierarchyString(r.Code),
			ReadyForWeather: level == LevelVillage,
		})
		if len(matches) == MaxResults {
			break
		}
	}
	return matches
}

// Suggest returns up to n distinct names within the filter that are close to
// query by edit distance, nearest first. It is meant for empty searches.
func (t *Table) Suggest(query string, filter Level, n int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || n <= 0 {
		return nil
	}
	limit := 1 + utf8.RuneCountInString(q)/4

	type candidate struct {
		name string
		dist int
	}
	seen := make(map[string]bool)
	var cands []candidate
	for i, r := range t.rows {
		if !filter.Accepts(Classify(r.Code)) || seen[t.lower[i]] {
			continue
		}
		d := levenshtein.ComputeDistance(q, t.lower[i])
		if d > limit {
			continue
		}
		seen[t.lower[i]] = true
		cands = append(cands, candidate{name: r.Name, dist: d})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].dist < cands[j].dist
	})
	if len(cands) > n {
		cands = cands[:n]
	}
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.name
	}
	return names
}
