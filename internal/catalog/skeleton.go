package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alucardeht/outliner/internal/outline"
)

var (
	headerPattern   = regexp.MustCompile(`^(T\d{3})\s*[：:\s]\s*(.+)$`)
	scenarioPattern = regexp.MustCompile(`^(?:>\s*)?(?:适用场景|场景|scenario)\s*[：:]\s*(.+)$`)
)

// parseSkeletons extracts templates from a markdown document. A template
// starts at a heading of the given level whose text is "<id> <name>"; chapter
// and section headings are classified by the outline lexer and their
// numbers dropped. Skipped fragments are returned as problems.
func parseSkeletons(text string, level int, category Category, source string) ([]*Template, []string) {
	var (
		templates []*Template
		problems  []string
		current   *Template
	)

	finish := func() {
		if current == nil {
			return
		}
		if len(current.Chapters) == 0 {
			problems = append(problems, fmt.Sprintf("template %s has no chapters; skipped", current.ID))
		} else {
			templates = append(templates, current)
		}
		current = nil
	}

	for _, line := range outline.Lex(text) {
		isHeader := (line.Kind == outline.LineTitle || line.Kind == outline.LineSubHeading) && line.Level == level
		if isHeader {
			finish()
			m := headerPattern.FindStringSubmatch(line.Text)
			if m == nil {
				if level > 1 || len(templates) > 0 {
					problems = append(problems, fmt.Sprintf("line %d: heading %q is not a template header; skipped", line.No, line.Text))
				}
				continue
			}
			current = &Template{
				ID:       m[1],
				Name:     strings.TrimSpace(m[2]),
				Category: category,
				Source:   sourceName(source),
			}
			continue
		}

		if current == nil {
			continue
		}

		switch line.Kind {
		case outline.LineChapterHeading:
			current.Chapters = append(current.Chapters, ChapterSkeleton{Title: line.Text})
		case outline.LineSectionHeading:
			last := len(current.Chapters) - 1
			if last < 0 {
				problems = append(problems, fmt.Sprintf("line %d: section before any chapter in template %s; skipped", line.No, current.ID))
				continue
			}
			current.Chapters[last].Sections = append(current.Chapters[last].Sections, SectionSkeleton{Title: line.Text})
		case outline.LineOther, outline.LineBullet:
			if current.Scenario != "" || len(current.Chapters) > 0 {
				continue
			}
			if m := scenarioPattern.FindStringSubmatch(line.Text); m != nil {
				current.Scenario = strings.TrimSpace(m[1])
			}
		}
	}
	finish()

	if len(templates) == 0 {
		problems = append(problems, "no template found in document")
	}
	return templates, problems
}
