package catalog

import (
	"sort"
	"strings"
)

type Vote struct {
	TemplateID string `json:"template_id"`
	Weight     int    `json:"weight"`
}

// Rule awards its votes when Keyword occurs in the project description.
type Rule struct {
	Keyword string `json:"keyword"`
	Votes   []Vote `json:"votes"`
}

// DefaultRules is the keyword table for the bundled templates. Order is
// significant: it breaks ties between equally weighted templates.
func DefaultRules() []Rule {
	return []Rule{
		{Keyword: "地质", Votes: []Vote{{"T101", 3}}},
		{Keyword: "勘察", Votes: []Vote{{"T101", 3}}},
		{Keyword: "岩土", Votes: []Vote{{"T101", 2}}},
		{Keyword: "geolog", Votes: []Vote{{"T101", 3}}},
		{Keyword: "风电", Votes: []Vote{{"T102", 2}}},
		{Keyword: "风能", Votes: []Vote{{"T102", 2}}},
		{Keyword: "wind", Votes: []Vote{{"T102", 3}}},
		{Keyword: "环评", Votes: []Vote{{"T103", 3}}},
		{Keyword: "环境影响", Votes: []Vote{{"T103", 3}}},
		{Keyword: "environmental", Votes: []Vote{{"T103", 3}}},
		{Keyword: "光伏", Votes: []Vote{{"T104", 3}}},
		{Keyword: "太阳能", Votes: []Vote{{"T104", 2}}},
		{Keyword: "solar", Votes: []Vote{{"T104", 3}}},
		{Keyword: "可行性", Votes: []Vote{{"T002", 2}, {"T102", 1}}},
		{Keyword: "可研", Votes: []Vote{{"T002", 2}}},
		{Keyword: "feasibility", Votes: []Vote{{"T002", 3}}},
		{Keyword: "研究", Votes: []Vote{{"T003", 1}}},
		{Keyword: "论文", Votes: []Vote{{"T003", 2}}},
		{Keyword: "research", Votes: []Vote{{"T003", 2}}},
		{Keyword: "实施方案", Votes: []Vote{{"T004", 3}}},
		{Keyword: "实施", Votes: []Vote{{"T004", 1}}},
		{Keyword: "总结", Votes: []Vote{{"T005", 3}}},
		{Keyword: "summary", Votes: []Vote{{"T005", 2}}},
		{Keyword: "调查", Votes: []Vote{{"T101", 1}}},
		{Keyword: "survey", Votes: []Vote{{"T101", 1}}},
		{Keyword: "环境", Votes: []Vote{{"T103", 1}}},
	}
}

// Score is one template's accumulated weight for a description.
type Score struct {
	TemplateID string   `json:"template_id"`
	Weight     int      `json:"weight"`
	Keywords   []string `json:"keywords"`
	firstRule  int
}

// Selector picks a template for free-text input. It holds no mutable state.
type Selector struct {
	rules    []Rule
	fallback string
}

func NewSelector(rules []Rule, fallback string) *Selector {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		normalized = append(normalized, Rule{Keyword: kw, Votes: append([]Vote(nil), r.Votes...)})
	}
	if fallback == "" {
		fallback = DefaultTemplateID
	}
	return &Selector{rules: normalized, fallback: fallback}
}

func DefaultSelector() *Selector {
	return NewSelector(DefaultRules(), DefaultTemplateID)
}

func (s *Selector) Fallback() string {
	return s.fallback
}

// Rank scores every template that received a vote, best first. Equal
// weights are ordered by the earliest rule that voted for the template.
func (s *Selector) Rank(input string) []Score {
	text := strings.ToLower(input)
	byID := make(map[string]*Score)
	var order []*Score

	for i, rule := range s.rules {
		if !strings.Contains(text, rule.Keyword) {
			continue
		}
		for _, v := range rule.Votes {
			sc, ok := byID[v.TemplateID]
			if !ok {
				sc = &Score{TemplateID: v.TemplateID, firstRule: i}
				byID[v.TemplateID] = sc
				order = append(order, sc)
			}
			sc.Weight += v.Weight
			sc.Keywords = append(sc.Keywords, rule.Keyword)
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		if order[a].Weight != order[b].Weight {
			return order[a].Weight > order[b].Weight
		}
		return order[a].firstRule < order[b].firstRule
	})

	scores := make([]Score, len(order))
	for i, sc := range order {
		scores[i] = *sc
	}
	return scores
}

// Select returns the best template id, or the fallback when no keyword
// matches.
func (s *Selector) Select(input string) string {
	ranked := s.Rank(input)
	if len(ranked) == 0 || ranked[0].Weight <= 0 {
		return s.fallback
	}
	return ranked[0].TemplateID
}
