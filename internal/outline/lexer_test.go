package outline

import (
	"testing"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		raw     string
		kind    LineKind
		chapter int
		section string
		text    string
		key     string
		value   string
	}{
		{raw: "", kind: LineBlank},
		{raw: "   ", kind: LineBlank},
		{raw: "# 风电场报告", kind: LineTitle, text: "风电场报告"},
		{raw: "## 元数据", kind: LineMetadataHeading, text: "元数据"},
		{raw: "## Metadata", kind: LineMetadataHeading, text: "Metadata"},
		{raw: "## 增强建议", kind: LineRecommendationsHeading, text: "增强建议"},
		{raw: "## 其他", kind: LineSubHeading, text: "其他"},
		{raw: "### 第3章 技术方案", kind: LineChapterHeading, chapter: 3, text: "技术方案"},
		{raw: "###   第 12 章   附录  ", kind: LineChapterHeading, chapter: 12, text: "附录"},
		{raw: "### 第二十一章 结语", kind: LineChapterHeading, chapter: 21, text: "结语"},
		{raw: "### 第0章 序", kind: LineSubHeading, text: "第0章 序"},
		{raw: "### 章节数量", kind: LineSubHeading, text: "章节数量"},
		{raw: "#### 3.2 详细设计", kind: LineSectionHeading, section: "3.2", text: "详细设计"},
		{raw: "#### 3.10", kind: LineSectionHeading, section: "3.10"},
		{raw: "#### 3.x 错误", kind: LineSubHeading, text: "3.x 错误"},
		{raw: "- generated_at：2025-01-02T03:04:05Z", kind: LineBullet, text: "generated_at：2025-01-02T03:04:05Z", key: "generated_at", value: "2025-01-02T03:04:05Z"},
		{raw: "* mode: quick", kind: LineBullet, text: "mode: quick", key: "mode", value: "quick"},
		{raw: "- 只是文字", kind: LineBullet, text: "只是文字"},
		{raw: "- **内容侧重**：现状描述", kind: LineBullet, text: "**内容侧重**：现状描述", key: "内容侧重", value: "现状描述"},
		{raw: "普通段落", kind: LineOther, text: "普通段落"},
		{raw: "#没有空格", kind: LineOther, text: "#没有空格"},
	}

	for _, tt := range tests {
		line := ClassifyLine(tt.raw)
		if line.Kind != tt.kind {
			t.Errorf("%q: expected kind %s, got %s", tt.raw, tt.kind, line.Kind)
			continue
		}
		if line.Chapter != tt.chapter {
			t.Errorf("%q: expected chapter %d, got %d", tt.raw, tt.chapter, line.Chapter)
		}
		if line.Section != tt.section {
			t.Errorf("%q: expected section %q, got %q", tt.raw, tt.section, line.Section)
		}
		if line.Text != tt.text {
			t.Errorf("%q: expected text %q, got %q", tt.raw, tt.text, line.Text)
		}
		if line.Key != tt.key || line.Value != tt.value {
			t.Errorf("%q: expected %q=%q, got %q=%q", tt.raw, tt.key, tt.value, line.Key, line.Value)
		}
	}
}

func TestLexLineNumbers(t *testing.T) {
	lines := Lex("# a\r\n\r\n### 第1章 b\n")

	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if line.No != i+1 {
			t.Errorf("line %d numbered %d", i+1, line.No)
		}
	}
	if lines[2].Kind != LineChapterHeading {
		t.Errorf("expected chapter heading on line 3, got %s", lines[2].Kind)
	}
}

func TestSplitChartHint(t *testing.T) {
	tests := []struct {
		in         string
		location   string
		suggestion string
		ok         bool
	}{
		{"第2章 地质概况：地层柱状图", "第2章 地质概况", "地层柱状图", true},
		{"第2章 投资估算：总投资与资金筹措：投资构成饼图", "第2章 投资估算：总投资与资金筹措", "投资构成饼图", true},
		{"第2章 地质概况 → 地层柱状图、剖面图", "第2章 地质概况", "地层柱状图、剖面图", true},
		{"第3章 实施：进度 → 说明：甘特图", "第3章 实施：进度", "说明：甘特图", true},
		{"→ 图例：单独一页", "", "图例：单独一页", true},
		{"插入区域地质图", "", "", false},
	}

	for _, tt := range tests {
		location, suggestion, ok := splitChartHint(tt.in)
		if ok != tt.ok || location != tt.location || suggestion != tt.suggestion {
			t.Errorf("splitChartHint(%q) = %q, %q, %v; want %q, %q, %v",
				tt.in, location, suggestion, ok, tt.location, tt.suggestion, tt.ok)
		}
	}
}

func TestRecBlockAliases(t *testing.T) {
	tests := map[string]string{
		"章节数量建议": recChapterCount,
		"章节顺序建议": recChapterOrder,
		"配图建议":   recChartPlace,
		"写作方向推荐": recDirection,
		"图表位置":   recChartPlace,
		"其他":     "其他",
	}
	for in, want := range tests {
		if got := recBlock(in); got != want {
			t.Errorf("recBlock(%q) = %q, want %q", in, got, want)
		}
	}
}
