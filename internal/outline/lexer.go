package outline

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	metadataLabel        = "元数据"
	recommendationsLabel = "增强建议"

	fullWidthColon = "："
	chartArrow     = "→"

	keyGeneratedAt    = "generated_at"
	keyGenerationMode = "generation_mode"
	keyTemplateUsed   = "template_used"
	keyReferenceDocs  = "reference_docs"

	recChapterCount = "章节数量"
	recChapterOrder = "章节顺序"
	recChartPlace   = "图表位置"
	recDirection    = "写作方向"

	dirContentFocus      = "内容重点"
	dirTechnicalDepth    = "技术深度"
	dirNarrativeStyle    = "叙述风格"
	dirReaderPerspective = "读者视角"
	dirReason            = "依据"
)

var metadataKeyAliases = map[string]string{
	"生成时间": keyGeneratedAt,
	"生成模式": keyGenerationMode,
	"使用模板": keyTemplateUsed,
	"参考文档": keyReferenceDocs,
}

// Older outlines label the recommendation sub-blocks differently.
var recBlockAliases = map[string]string{
	"章节数量建议": recChapterCount,
	"章节顺序建议": recChapterOrder,
	"配图建议":   recChartPlace,
	"图表位置建议": recChartPlace,
	"写作方向推荐": recDirection,
	"写作方向建议": recDirection,
}

var directionKeyAliases = map[string]string{
	"内容侧重": dirContentFocus,
	"推荐理由": dirReason,
}

type LineKind int

const (
	LineOther LineKind = iota
	LineBlank
	LineTitle
	LineMetadataHeading
	LineRecommendationsHeading
	LineSubHeading
	LineChapterHeading
	LineSectionHeading
	LineBullet
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineTitle:
		return "title"
	case LineMetadataHeading:
		return "metadata_heading"
	case LineRecommendationsHeading:
		return "recommendations_heading"
	case LineSubHeading:
		return "sub_heading"
	case LineChapterHeading:
		return "chapter_heading"
	case LineSectionHeading:
		return "section_heading"
	case LineBullet:
		return "bullet"
	default:
		return "other"
	}
}

// Line is one classified line of outline text.
type Line struct {
	Kind LineKind
	No   int
	// Level is the heading depth for heading kinds.
	Level int
	// Chapter is set for chapter headings.
	Chapter int
	// Section is the "<chapter>.<seq>" token of a section heading.
	Section string
	// Text is the heading title or the full bullet text.
	Text string
	// Key and Value are set for bullets of the form "key：value".
	Key      string
	Value    string
	HasValue bool
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)
	chapterPattern = regexp.MustCompile(`^第\s*([0-9]+|[零〇一二两三四五六七八九十百]+)\s*章\s*(.*)$`)
	sectionPattern = regexp.MustCompile(`^([0-9]+\.[0-9]+)(?:\s+(.*))?$`)
	bulletPattern  = regexp.MustCompile(`^[-*+]\s+(.*?)\s*$`)
)

// Lex splits text into classified lines.
func Lex(text string) []Line {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]Line, 0, len(raw))
	for i, l := range raw {
		line := ClassifyLine(l)
		line.No = i + 1
		lines = append(lines, line)
	}
	return lines
}

// ClassifyLine classifies a single line without any surrounding context.
func ClassifyLine(raw string) Line {
	s := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	if s == "" {
		return Line{Kind: LineBlank}
	}

	if m := headingPattern.FindStringSubmatch(s); m != nil {
		return classifyHeading(len(m[1]), m[2])
	}

	if m := bulletPattern.FindStringSubmatch(s); m != nil {
		line := Line{Kind: LineBullet, Text: m[1]}
		if key, value, ok := splitKeyValue(m[1]); ok {
			line.Key = key
			line.Value = value
			line.HasValue = true
		}
		return line
	}

	return Line{Kind: LineOther, Text: s}
}

func classifyHeading(level int, text string) Line {
	switch level {
	case 1:
		return Line{Kind: LineTitle, Level: level, Text: text}
	case 2:
		switch {
		case text == metadataLabel || strings.EqualFold(text, "metadata"):
			return Line{Kind: LineMetadataHeading, Level: level, Text: text}
		case text == recommendationsLabel || strings.EqualFold(text, "enhancement recommendations"):
			return Line{Kind: LineRecommendationsHeading, Level: level, Text: text}
		}
	case 3:
		if m := chapterPattern.FindStringSubmatch(text); m != nil {
			if n, ok := parseChapterNumber(m[1]); ok && n > 0 {
				return Line{Kind: LineChapterHeading, Level: level, Chapter: n, Text: strings.TrimSpace(m[2])}
			}
		}
	case 4:
		if m := sectionPattern.FindStringSubmatch(text); m != nil {
			return Line{Kind: LineSectionHeading, Level: level, Section: m[1], Text: strings.TrimSpace(m[2])}
		}
	}
	return Line{Kind: LineSubHeading, Level: level, Text: text}
}

// splitKeyValue prefers the full-width colon so ASCII colons inside values
// (timestamps) stay intact. Bold markers around the key are dropped.
func splitKeyValue(s string) (string, string, bool) {
	if key, value, ok := strings.Cut(s, fullWidthColon); ok {
		return cleanKey(key), strings.TrimSpace(value), true
	}
	if key, value, ok := strings.Cut(s, ":"); ok {
		return cleanKey(key), strings.TrimSpace(value), true
	}
	return "", "", false
}

func cleanKey(key string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(key), "*_"))
}

// splitChartHint separates a chart bullet into location and suggestion.
// The arrow form wins; otherwise the last full-width colon splits, since a
// chapter title in the location may carry colons of its own.
func splitChartHint(s string) (string, string, bool) {
	if loc, sug, ok := strings.Cut(s, chartArrow); ok {
		return strings.TrimSpace(loc), strings.TrimSpace(sug), true
	}
	if i := strings.LastIndex(s, fullWidthColon); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(fullWidthColon):]), true
	}
	return "", "", false
}

// recBlock maps a sub-heading inside the recommendations block to its
// canonical label.
func recBlock(heading string) string {
	heading = strings.TrimSpace(heading)
	if canonical, ok := recBlockAliases[heading]; ok {
		return canonical
	}
	return heading
}

func parseChapterNumber(token string) (int, bool) {
	if n, err := strconv.Atoi(token); err == nil {
		return n, true
	}
	return parseChineseNumber(token)
}

// parseChineseNumber handles the numerals used in chapter labels, 一 to 九百九十九.
func parseChineseNumber(s string) (int, bool) {
	digits := map[rune]int{
		'零': 0, '〇': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
		'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
	}
	total, current := 0, 0
	seen := false
	for _, r := range s {
		switch r {
		case '百':
			if current == 0 {
				current = 1
			}
			total += current * 100
			current = 0
		case '十':
			if current == 0 {
				current = 1
			}
			total += current * 10
			current = 0
		default:
			d, ok := digits[r]
			if !ok {
				return 0, false
			}
			current = d
		}
		seen = true
	}
	if !seen {
		return 0, false
	}
	return total + current, true
}
