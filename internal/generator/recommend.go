package generator

import (
	"fmt"
	"strings"

	"github.com/alucardeht/outliner/internal/catalog"
	"github.com/alucardeht/outliner/internal/outline"
)

// Recommend derives the display-only authoring hints for a generated
// outline. Every part is a pure function of its arguments.
func Recommend(input string, t *catalog.Template, o *outline.Outline) *outline.Recommendations {
	return &outline.Recommendations{
		ChapterCountHint:    ChapterCountHint(input, len(o.Chapters)),
		ChapterOrderHints:   ChapterOrderHints(t),
		ChartPlacementHints: ChartPlacementHints(o.Chapters),
		WritingDirection:    WritingDirectionFor(input),
	}
}

type countRule struct {
	keywords []string
	hint     string
}

var countRules = []countRule{
	{keywords: []string{"快速", "简", "quick", "brief"}, hint: "3-4章（精简版）"},
	{keywords: []string{"详细", "深度", "detailed", "in-depth"}, hint: "7-9章（详细版）"},
}

const defaultCountHint = "5-6章（标准版）"

func ChapterCountHint(input string, templateChapters int) string {
	hint := defaultCountHint
	if _, rule, ok := matchFirst(input, countRules, func(r countRule) []string { return r.keywords }); ok {
		hint = rule.hint
	}
	if templateChapters > 0 {
		hint = fmt.Sprintf("%s，所选模板共%d章", hint, templateChapters)
	}
	return hint
}

var orderHintsByTemplate = map[string][]string{
	"T002": {"先交代项目背景与建设必要性", "再展开市场与建设方案", "随后给出投资估算与经济评价", "最后归纳风险与结论"},
	"T003": {"先界定研究问题与文献基础", "再说明研究方法", "随后呈现结果与讨论", "最后总结结论与展望"},
	"T005": {"先概述工作范围", "再列举主要成果", "随后分析存在问题", "最后提出下一步计划"},
	"T101": {"先说明任务来源与调查目的", "再由区域地质过渡到场区条件", "随后进行稳定性与岩土评价", "最后给出结论与建议"},
	"T102": {"先概述项目与风能资源", "再论证工程地质与建设规模", "随后安排机组布置、电气与土建", "最后完成投资估算与财务评价"},
	"T103": {"先明确评价依据与范围", "再开展工程分析与现状调查", "随后进行影响预测并提出保护措施", "最后给出评价结论"},
	"T104": {"先综合说明项目与资源条件", "再完成系统与电气设计", "随后安排土建工程", "最后编制投资概算"},
}

var defaultOrderHints = []string{"从背景介绍开始", "然后是技术方案", "接着是实施细节", "最后是结论与建议"}

func ChapterOrderHints(t *catalog.Template) []string {
	hints := defaultOrderHints
	if t != nil {
		if specific, ok := orderHintsByTemplate[t.ID]; ok {
			hints = specific
		}
	}
	out := make([]string, len(hints))
	for i, h := range hints {
		out[i] = fmt.Sprintf("%d. %s", i+1, h)
	}
	return out
}

type chartRule struct {
	keywords   []string
	suggestion string
}

var chartRules = []chartRule{
	{keywords: []string{"地质", "岩土"}, suggestion: "地层柱状图、工程地质剖面图"},
	{keywords: []string{"地震", "稳定"}, suggestion: "区域构造纲要图"},
	{keywords: []string{"风能", "风资源"}, suggestion: "风玫瑰图、风速频率分布图"},
	{keywords: []string{"太阳能", "光照"}, suggestion: "月均辐照量柱状图"},
	{keywords: []string{"布置", "选型"}, suggestion: "总平面布置图"},
	{keywords: []string{"技术方案", "建设方案", "系统设计"}, suggestion: "技术路线图、系统架构图"},
	{keywords: []string{"电气"}, suggestion: "电气主接线图"},
	{keywords: []string{"进度", "实施", "施工"}, suggestion: "进度甘特图、施工流程图"},
	{keywords: []string{"组织"}, suggestion: "组织机构图"},
	{keywords: []string{"投资", "财务", "经济"}, suggestion: "投资构成饼图、现金流量图"},
	{keywords: []string{"市场"}, suggestion: "市场规模趋势图"},
	{keywords: []string{"环境", "监测"}, suggestion: "监测点位布置图"},
	{keywords: []string{"结果", "成果"}, suggestion: "结果对比图表"},
}

// ChartPlacementHints suggests at most one chart per chapter, chosen by the
// first rule whose keyword appears in the chapter title.
func ChartPlacementHints(chapters []*outline.Chapter) []outline.ChartHint {
	var hints []outline.ChartHint
	for _, ch := range chapters {
		if _, rule, ok := matchFirst(ch.Title, chartRules, func(r chartRule) []string { return r.keywords }); ok {
			hints = append(hints, outline.ChartHint{Location: ch.Heading(), Suggestion: rule.suggestion})
		}
	}
	return hints
}

type directionRule struct {
	keywords  []string
	direction outline.WritingDirection
}

var directionRules = []directionRule{
	{
		keywords: []string{"可行性", "评估", "feasibility"},
		direction: outline.WritingDirection{
			ContentFocus: "对比分析", TechnicalDepth: "简明概述",
			NarrativeStyle: "客观描述", ReaderPerspective: "决策者视角",
		},
	},
	{
		keywords: []string{"技术", "方案", "设计", "design"},
		direction: outline.WritingDirection{
			ContentFocus: "技术方案", TechnicalDepth: "原理讲解",
			NarrativeStyle: "数据支撑", ReaderPerspective: "技术人员视角",
		},
	},
	{
		keywords: []string{"实施", "组织", "施工"},
		direction: outline.WritingDirection{
			ContentFocus: "实施细节", TechnicalDepth: "实践指导",
			NarrativeStyle: "流程导向", ReaderPerspective: "管理者视角",
		},
	},
	{
		keywords: []string{"调查", "勘察", "survey"},
		direction: outline.WritingDirection{
			ContentFocus: "现状描述", TechnicalDepth: "数据详实",
			NarrativeStyle: "客观描述", ReaderPerspective: "审查专家视角",
		},
	},
}

var defaultDirection = outline.WritingDirection{
	ContentFocus: "技术方案", TechnicalDepth: "综合分析",
	NarrativeStyle: "客观描述", ReaderPerspective: "技术人员视角",
}

func WritingDirectionFor(input string) outline.WritingDirection {
	kw, rule, ok := matchFirst(input, directionRules, func(r directionRule) []string { return r.keywords })
	if !ok {
		wd := defaultDirection
		wd.Reason = "未匹配到关键词，采用通用写作方向"
		return wd
	}
	wd := rule.direction
	wd.Reason = fmt.Sprintf("项目描述包含关键词“%s”", kw)
	return wd
}

// matchFirst returns the first rule, in table order, with a keyword
// contained in text, together with that keyword.
func matchFirst[R any](text string, rules []R, keywords func(R) []string) (string, R, bool) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range keywords(r) {
			if strings.Contains(lower, kw) {
				return kw, r, true
			}
		}
	}
	var zero R
	return "", zero, false
}
