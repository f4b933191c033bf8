package generator

import (
	"strings"
	"unicode"
)

const titleSuffix = "报告"

var genericSuffixes = []string{"报告", "方案", "计划", "大纲", "report", "plan", "outline"}

// DeriveTitle takes the first clause of the project description, strips
// trailing generic words and appends the canonical suffix.
func DeriveTitle(input string) string {
	clause := firstClause(input)

	for {
		trimmed := strings.TrimRightFunc(clause, isTitleFiller)
		stripped := false
		for _, suffix := range genericSuffixes {
			n := len(trimmed) - len(suffix)
			if n >= 0 && strings.EqualFold(trimmed[n:], suffix) {
				trimmed = trimmed[:n]
				stripped = true
				break
			}
		}
		clause = trimmed
		if !stripped {
			break
		}
	}

	clause = strings.Join(strings.Fields(clause), " ")
	if clause == "" {
		return "项目" + titleSuffix
	}
	return clause + titleSuffix
}

func firstClause(input string) string {
	input = strings.TrimSpace(input)
	if i := strings.IndexFunc(input, isClauseBreak); i >= 0 {
		input = input[:i]
	}
	return strings.TrimSpace(input)
}

func isClauseBreak(r rune) bool {
	switch r {
	case '\n', '\r', '。', '，', '；', '！', '？', ',', ';', '!', '?':
		return true
	}
	return false
}

func isTitleFiller(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_' || r == '—'
}
