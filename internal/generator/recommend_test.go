package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alucardeht/outliner/internal/catalog"
	"github.com/alucardeht/outliner/internal/outline"
)

func TestChapterCountHint(t *testing.T) {
	tests := []struct {
		input    string
		chapters int
		want     string
	}{
		{input: "快速出一个大纲", chapters: 5, want: "3-4章（精简版），所选模板共5章"},
		{input: "A brief note", chapters: 0, want: "3-4章（精简版）"},
		{input: "需要详细的可研报告", chapters: 9, want: "7-9章（详细版），所选模板共9章"},
		{input: "In-Depth review", chapters: 3, want: "7-9章（详细版），所选模板共3章"},
		{input: "风电场地质调查", chapters: 6, want: "5-6章（标准版），所选模板共6章"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ChapterCountHint(tt.input, tt.chapters), tt.input)
	}
}

func TestChapterOrderHints(t *testing.T) {
	hints := ChapterOrderHints(&catalog.Template{ID: "T101"})
	assert.Len(t, hints, 4)
	assert.Equal(t, "4. 最后给出结论与建议", hints[3])

	generic := ChapterOrderHints(&catalog.Template{ID: "T001"})
	assert.Equal(t, []string{"1. 从背景介绍开始", "2. 然后是技术方案", "3. 接着是实施细节", "4. 最后是结论与建议"}, generic)
	assert.Equal(t, generic, ChapterOrderHints(nil))

	generic[0] = "changed"
	assert.Equal(t, "1. 从背景介绍开始", ChapterOrderHints(nil)[0])
}

func TestChartPlacementHints(t *testing.T) {
	chapters := []*outline.Chapter{
		{Number: 1, Title: "前言"},
		{Number: 2, Title: "区域地质概况"},
		{Number: 3, Title: "投资估算与资金筹措"},
		{Number: 4, Title: "施工组织设计"},
	}

	hints := ChartPlacementHints(chapters)

	assert.Equal(t, []outline.ChartHint{
		{Location: "第2章 区域地质概况", Suggestion: "地层柱状图、工程地质剖面图"},
		{Location: "第3章 投资估算与资金筹措", Suggestion: "投资构成饼图、现金流量图"},
		{Location: "第4章 施工组织设计", Suggestion: "进度甘特图、施工流程图"},
	}, hints)
	assert.Nil(t, ChartPlacementHints([]*outline.Chapter{{Number: 1, Title: "前言"}}))
}

func TestWritingDirectionFor(t *testing.T) {
	tests := []struct {
		input   string
		focus   string
		keyword string
	}{
		{input: "风电场可行性研究", focus: "对比分析", keyword: "可行性"},
		{input: "Feasibility of a dam", focus: "对比分析", keyword: "feasibility"},
		{input: "系统技术方案设计", focus: "技术方案", keyword: "技术"},
		{input: "施工组织计划", focus: "实施细节", keyword: "组织"},
		{input: "风电场地质调查报告", focus: "现状描述", keyword: "调查"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			wd := WritingDirectionFor(tt.input)
			assert.Equal(t, tt.focus, wd.ContentFocus)
			assert.Equal(t, "项目描述包含关键词“"+tt.keyword+"”", wd.Reason)
		})
	}

	wd := WritingDirectionFor("年度工作回顾")
	assert.Equal(t, "综合分析", wd.TechnicalDepth)
	assert.Equal(t, "未匹配到关键词，采用通用写作方向", wd.Reason)
}

func TestRecommendIsPure(t *testing.T) {
	tmpl := &catalog.Template{ID: "T102", Chapters: []catalog.ChapterSkeleton{{Title: "风能资源"}}}
	o := &outline.Outline{Chapters: []*outline.Chapter{{Number: 1, Title: "风能资源"}}}

	first := Recommend("风电场可行性研究", tmpl, o)
	second := Recommend("风电场可行性研究", tmpl, o)

	assert.Equal(t, first, second)
	assert.Equal(t, "5-6章（标准版），所选模板共1章", first.ChapterCountHint)
	assert.Equal(t, "风玫瑰图、风速频率分布图", first.ChartPlacementHints[0].Suggestion)
}
