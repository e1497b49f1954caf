package cards

import (
	"sort"
	"strings"
)

// Ability tags accepted by FilterQuery.Abilities.
const (
	AbilityVanilla = "vanilla"
	AbilityBlocker = "blocker"
	AbilityTrigger = "trigger"
)

// FilterQuery selects cards. An empty field matches every card; the active
// fields are combined with AND. Numeric selections use None for "absent".
type FilterQuery struct {
	Search     string     `json:"search"`
	Colors     []string   `json:"colors"`
	Categories []Category `json:"categories"`
	Costs      []int      `json:"costs"`
	Powers     []int      `json:"powers"`
	Counters   []int      `json:"counters"`
	Attributes []string   `json:"attributes"`
	BlockIcons []int      `json:"block_icons"`
	Abilities  []string   `json:"abilities"`
}

// Active reports whether any predicate group is selected.
func (q FilterQuery) Active() bool {
	return strings.TrimSpace(q.Search) != "" ||
		len(q.Colors) > 0 || len(q.Categories) > 0 ||
		len(q.Costs) > 0 || len(q.Powers) > 0 || len(q.Counters) > 0 ||
		len(q.Attributes) > 0 || len(q.BlockIcons) > 0 || len(q.Abilities) > 0
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(hay []string, needle string) bool {
	for _, h := range hay {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func hasAbility(c Card, tag string) bool {
	switch strings.ToLower(tag) {
	case AbilityVanilla:
		return c.IsVanilla()
	case AbilityBlocker:
		return c.IsBlocker()
	case AbilityTrigger:
		return c.HasTrigger()
	}
	// unknown tags never match
	return false
}

// Filter returns the cards matching q, in catalog order.
func Filter(cards []Card, q FilterQuery) []Card {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := []Card{}
	for _, c := range cards {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.CardID), search) {
			continue
		}
		if len(q.Colors) > 0 {
			ok := true
			for _, col := range q.Colors {
				if !c.HasColor(col) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		if len(q.Categories) > 0 {
			matched := false
			for _, cat := range q.Categories {
				if c.Category == cat {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if len(q.Costs) > 0 && !containsInt(q.Costs, c.CostValue()) {
			continue
		}
		if len(q.Powers) > 0 && !containsInt(q.Powers, c.PowerValue()) {
			continue
		}
		if len(q.Counters) > 0 && !containsInt(q.Counters, c.CounterValue()) {
			continue
		}
		if len(q.Attributes) > 0 {
			matched := false
			for _, a := range q.Attributes {
				if containsFold(c.Attributes, a) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if len(q.BlockIcons) > 0 && !containsInt(q.BlockIcons, c.BlockIconValue()) {
			continue
		}
		if len(q.Abilities) > 0 {
			ok := true
			for _, tag := range q.Abilities {
				if !hasAbility(c, tag) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// Facets lists the distinct values a catalog offers for each filter field.
type Facets struct {
	Colors     []string   `json:"colors"`
	Categories []Category `json:"categories"`
	Costs      []int      `json:"costs"`
	Powers     []int      `json:"powers"`
	Counters   []int      `json:"counters"`
	Attributes []string   `json:"attributes"`
	BlockIcons []int      `json:"block_icons"`
}

func sortedInts(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// appendSeen keeps the first spelling of each value in catalog order.
func appendSeen(out []string, seen map[string]struct{}, vals ...string) []string {
	for _, v := range vals {
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok || v == "" {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

func BuildFacets(cards []Card) Facets {
	var f Facets
	colors, attrs := map[string]struct{}{}, map[string]struct{}{}
	cats := map[Category]struct{}{}
	costs, powers, counters, blocks := map[int]struct{}{}, map[int]struct{}{}, map[int]struct{}{}, map[int]struct{}{}
	for _, c := range cards {
		f.Colors = appendSeen(f.Colors, colors, c.Colors...)
		f.Attributes = appendSeen(f.Attributes, attrs, c.Attributes...)
		if _, ok := cats[c.Category]; !ok {
			cats[c.Category] = struct{}{}
			f.Categories = append(f.Categories, c.Category)
		}
		costs[c.CostValue()] = struct{}{}
		powers[c.PowerValue()] = struct{}{}
		counters[c.CounterValue()] = struct{}{}
		blocks[c.BlockIconValue()] = struct{}{}
	}
	f.Costs = sortedInts(costs)
	f.Powers = sortedInts(powers)
	f.Counters = sortedInts(counters)
	f.BlockIcons = sortedInts(blocks)
	return f
}
