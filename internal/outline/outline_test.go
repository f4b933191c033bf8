package outline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/outliner/internal/apperr"
)

const fiveChapters = `# 测试报告

## 元数据
- generated_at：2025-03-01T08:30:00Z
- generation_mode：quick
- template_used：T001

### 第1章 概述
#### 1.1 背景
#### 1.2 目标

### 第2章 现状分析
#### 2.1 现状

### 第3章 技术方案
#### 3.1 总体设计
#### 3.2 详细设计

### 第4章 实施计划
#### 4.1 进度安排
#### 4.2 组织保障

### 第5章 结论
`

func sample(t *testing.T) *Outline {
	t.Helper()
	o := Parse(fiveChapters)
	require.Len(t, o.Chapters, 5)
	return o
}

func chapterNumbers(o *Outline) []int {
	var numbers []int
	for _, ch := range o.Chapters {
		numbers = append(numbers, ch.Number)
	}
	return numbers
}

func sectionNumbers(o *Outline) []string {
	var numbers []string
	for _, ch := range o.Chapters {
		for _, s := range ch.Sections {
			numbers = append(numbers, s.Number)
		}
	}
	return numbers
}

func TestParse(t *testing.T) {
	o := sample(t)

	assert.Equal(t, "测试报告", o.Title)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), o.Metadata.GeneratedAt.UTC())
	assert.Equal(t, ModeQuick, o.Metadata.GenerationMode)
	assert.Equal(t, "T001", o.Metadata.TemplateUsed)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, chapterNumbers(o))
	assert.Equal(t, []string{"1.1", "1.2", "2.1", "3.1", "3.2", "4.1", "4.2"}, sectionNumbers(o))
	assert.Equal(t, "技术方案", o.Chapters[2].Title)
	assert.Nil(t, o.Chapters[4].Sections)
	assert.Nil(t, o.Recommendations)
	assert.True(t, o.Valid())
	assert.True(t, o.Normalized())
}

func TestParseChineseChapterNumerals(t *testing.T) {
	o := Parse("# 报告\n\n### 第十二章 附录\n#### 12.1 附表\n### 第三章 方案\n")

	require.Len(t, o.Chapters, 2)
	assert.Equal(t, 12, o.Chapters[0].Number)
	assert.Equal(t, "附录", o.Chapters[0].Title)
	assert.Equal(t, 3, o.Chapters[1].Number)
}

func TestParseOrphanSection(t *testing.T) {
	text := "# 报告\n\n#### 3.2 标题\n\n### 第1章 概述\n#### 1.1 背景\n"

	o, issues := ParseWithReport(text)

	require.Len(t, o.Chapters, 1)
	assert.Equal(t, []string{"1.1"}, sectionNumbers(o))

	var orphan *Issue
	for i := range issues {
		if issues[i].Type == "ORPHAN_SECTION" {
			orphan = &issues[i]
		}
	}
	require.NotNil(t, orphan)
	assert.Equal(t, 3, orphan.Line)
	assert.Equal(t, SeverityWarning, orphan.Severity)
}

func TestParseDuplicateChapterHeading(t *testing.T) {
	text := "# 报告\n### 第1章 概述\n#### 1.1 背景\n### 第1章 重复\n#### 1.1 丢弃\n### 第2章 结论\n"

	o, issues := ParseWithReport(text)

	assert.Equal(t, []int{1, 2}, chapterNumbers(o))
	assert.Equal(t, "概述", o.Chapters[0].Title)
	assert.Len(t, o.Chapters[0].Sections, 1)
	assert.Equal(t, "DUPLICATE_CHAPTER_HEADING", issues[0].Type)
	assert.True(t, o.Valid())
}

func TestParseTolerance(t *testing.T) {
	text := "\ufeff# 标题\r\n\r\n随便一行文字\r\n## 元数据\r\n- 生成模式：keypoints\r\n- 作者：张三\r\n- 没有冒号\r\n- generated_at：昨天\r\n### 第1章 概述\r\n"

	o, issues := ParseWithReport(text)

	assert.Equal(t, "标题", o.Title)
	assert.Equal(t, ModeKeypoints, o.Metadata.GenerationMode)
	assert.True(t, o.Metadata.GeneratedAt.IsZero())
	assert.Equal(t, []Field{{Key: "作者", Value: "张三"}, {Key: "generated_at", Value: "昨天"}}, o.Metadata.Extra)
	require.Len(t, o.Chapters, 1)

	types := make(map[string]bool)
	for _, issue := range issues {
		types[issue.Type] = true
	}
	assert.True(t, types["MALFORMED_METADATA"])
	assert.True(t, types["MALFORMED_TIMESTAMP"])
}

func TestParseEmpty(t *testing.T) {
	o, issues := ParseWithReport("")

	assert.Equal(t, "", o.Title)
	assert.Nil(t, o.Chapters)
	assert.Empty(t, issues)
}

func TestRoundTrip(t *testing.T) {
	o := &Outline{
		Title: "风电场地质调查报告",
		Metadata: Metadata{
			GeneratedAt:    time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC),
			GenerationMode: ModeChapterByChapter,
			TemplateUsed:   "T101",
			ReferenceDocs:  []string{"/data/a.docx", "/data/b.pdf"},
			Extra:          []Field{{Key: "author", Value: "测绘院"}},
		},
		Chapters: []*Chapter{
			{Number: 1, Title: "前言", Sections: []*Section{{Number: "1.1", Title: "任务来源"}, {Number: "1.2", Title: "工作依据"}}},
			{Number: 2, Title: "区域地质概况"},
			{Number: 3, Title: "工程地质条件", Sections: []*Section{{Number: "3.1", Title: "地形地貌"}}},
		},
		Recommendations: &Recommendations{
			ChapterCountHint:  "5-6章（标准版），所选模板共3章",
			ChapterOrderHints: []string{"1. 先交代任务来源", "2. 再介绍区域背景"},
			ChartPlacementHints: []ChartHint{
				{Location: "第2章 区域地质概况", Suggestion: "插入区域地质图"},
			},
			WritingDirection: WritingDirection{
				ContentFocus:      "勘察成果与工程评价",
				TechnicalDepth:    "专业",
				NarrativeStyle:    "客观描述",
				ReaderPerspective: "工程技术人员",
				Reason:            "项目描述包含关键词“调查”",
			},
		},
	}

	text := Serialize(o)
	parsed, issues := ParseWithReport(text)

	assert.Empty(t, issues)
	assert.Equal(t, o, parsed)
	assert.Equal(t, text, Serialize(parsed))
}

func TestRoundTripChartHintSeparators(t *testing.T) {
	o := &Outline{
		Title: "投资分析报告",
		Metadata: Metadata{
			GeneratedAt:    time.Date(2025, 1, 1, 8, 0, 0, 500_000_000, time.UTC),
			GenerationMode: ModeQuick,
			TemplateUsed:   "T001",
		},
		Chapters: []*Chapter{
			{Number: 1, Title: "投资估算：总投资与资金筹措"},
		},
		Recommendations: &Recommendations{
			ChartPlacementHints: []ChartHint{
				{Location: "第1章 投资估算：总投资与资金筹措", Suggestion: "投资构成饼图、现金流量图"},
				{Location: "第1章 投资估算：总投资与资金筹措", Suggestion: "注：按年度汇总"},
				{Location: "第1章 投资估算", Suggestion: "流程 → 图"},
				{Suggestion: "全文统一图例"},
				{Suggestion: "图例：单独一页"},
			},
		},
	}

	text := Serialize(o)
	assert.Contains(t, text, "- generated_at：2025-01-01T08:00:00.5Z\n")

	parsed, issues := ParseWithReport(text)
	assert.Empty(t, issues)
	assert.Equal(t, o, parsed)
	assert.Equal(t, text, Serialize(parsed))
}

func TestParseLegacyRecommendations(t *testing.T) {
	text := "# 风电场地质调查报告\n\n## 元数据\n\n" +
		"- 生成时间：2025-01-01T08:00:00Z\n\n- 生成模式：quick\n\n- 使用模板：T101\n\n\n" +
		"### 第1章 前言\n\n#### 1.1 任务来源\n\n### 第2章 地质概况\n\n" +
		"\n## 增强建议\n\n" +
		"### 章节数量建议\n\n5-6章（标准版）\n\n" +
		"### 章节顺序建议\n\n- 1. 先说明任务来源\n\n- 2. 再介绍区域背景\n\n" +
		"### 配图建议\n\n- 第2章 地质概况 → 地层柱状图、剖面图\n\n" +
		"### 写作方向推荐\n\n" +
		"- **内容侧重**：现状描述\n- **技术深度**：专业\n- **叙述风格**：客观陈述\n" +
		"- **读者视角**：工程技术人员\n- **推荐理由**：项目描述包含关键词“调查”\n\n"

	o, issues := ParseWithReport(text)
	assert.Empty(t, issues)
	assert.Equal(t, "T101", o.Metadata.TemplateUsed)
	assert.Equal(t, []int{1, 2}, chapterNumbers(o))

	require.NotNil(t, o.Recommendations)
	assert.Equal(t, &Recommendations{
		ChapterCountHint:  "5-6章（标准版）",
		ChapterOrderHints: []string{"1. 先说明任务来源", "2. 再介绍区域背景"},
		ChartPlacementHints: []ChartHint{
			{Location: "第2章 地质概况", Suggestion: "地层柱状图、剖面图"},
		},
		WritingDirection: WritingDirection{
			ContentFocus:      "现状描述",
			TechnicalDepth:    "专业",
			NarrativeStyle:    "客观陈述",
			ReaderPerspective: "工程技术人员",
			Reason:            "项目描述包含关键词“调查”",
		},
	}, o.Recommendations)

	out := Serialize(o)
	assert.Contains(t, out, "### "+recChartPlace+"\n- 第2章 地质概况：地层柱状图、剖面图\n")
	assert.Contains(t, out, "- "+dirContentFocus+"：现状描述\n")
	assert.Equal(t, o, Parse(out))
}

func TestCheck(t *testing.T) {
	o := &Outline{Chapters: []*Chapter{
		{Number: 1, Title: "a", Sections: []*Section{{Number: "1.1"}, {Number: "2.1"}}},
		{Number: 1, Title: "b"},
		{Number: 0, Title: "c"},
	}}

	types := make(map[string]Severity)
	for _, issue := range o.Check() {
		types[issue.Type] = issue.Severity
	}

	assert.Equal(t, SeverityError, types["DUPLICATE_CHAPTER"])
	assert.Equal(t, SeverityError, types["INVALID_CHAPTER_NUMBER"])
	assert.Equal(t, SeverityWarning, types["STALE_SECTION_PREFIX"])
	assert.Equal(t, SeverityInfo, types["NOT_NORMALIZED"])
	assert.False(t, o.Valid())
	assert.Len(t, o.StaleSections(), 1)
}

func TestClone(t *testing.T) {
	o := sample(t)
	c := o.Clone()
	require.Equal(t, o, c)

	c.Chapters[0].Title = "changed"
	c.Chapters[0].Sections[0].Number = "9.9"

	assert.Equal(t, "概述", o.Chapters[0].Title)
	assert.Equal(t, "1.1", o.Chapters[0].Sections[0].Number)
	assert.Nil(t, (*Outline)(nil).Clone())
}

func TestInsertChapter(t *testing.T) {
	o := sample(t)

	err := o.InsertChapter(0, &Chapter{Number: 3, Title: "dup"})
	assert.True(t, apperr.IsValidation(err))

	err = o.InsertChapter(9, &Chapter{Number: 6, Title: "x"})
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, o.InsertChapter(0, &Chapter{Number: 6, Title: "x"}))
	assert.Equal(t, []int{6, 1, 2, 3, 4, 5}, chapterNumbers(o))
}
