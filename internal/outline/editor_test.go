package outline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/outliner/internal/apperr"
)

func TestAddChapterAfter(t *testing.T) {
	e := NewEditor(sample(t))

	outcome, err := e.AddChapter("项目投资估算", Anchor{After: 3})
	require.NoError(t, err)

	o := e.Outline()
	assert.Equal(t, 6, outcome.Chapter)
	assert.True(t, outcome.Changed)
	assert.Equal(t, []int{1, 2, 3, 6, 4, 5}, chapterNumbers(o))
	assert.Equal(t, "项目投资估算", o.Chapters[3].Title)
	assert.Equal(t, []string{"1.1", "1.2", "2.1", "3.1", "3.2", "4.1", "4.2"}, sectionNumbers(o))
	assert.False(t, o.Normalized())
	assert.True(t, o.Valid())

	_, err = e.Renumber()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, chapterNumbers(o))
	assert.Equal(t, []string{"1.1", "1.2", "2.1", "3.1", "3.2", "5.1", "5.2"}, sectionNumbers(o))
}

func TestAddChapterAnchors(t *testing.T) {
	tests := []struct {
		name    string
		at      Anchor
		order   []int
		checkFn func(error) bool
	}{
		{name: "append", at: Anchor{}, order: []int{1, 2, 3, 4, 5, 6}},
		{name: "before", at: Anchor{Before: 1}, order: []int{6, 1, 2, 3, 4, 5}},
		{name: "after last", at: Anchor{After: 5}, order: []int{1, 2, 3, 4, 5, 6}},
		{name: "both anchors", at: Anchor{After: 1, Before: 2}, checkFn: apperr.IsValidation},
		{name: "missing anchor", at: Anchor{After: 42}, checkFn: apperr.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(sample(t))
			_, err := e.AddChapter("  新   章节 ", tt.at)
			if tt.checkFn != nil {
				assert.True(t, tt.checkFn(err), "unexpected error %v", err)
				assert.Equal(t, []int{1, 2, 3, 4, 5}, chapterNumbers(e.Outline()))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.order, chapterNumbers(e.Outline()))
			ch, _ := e.Outline().Chapter(6)
			assert.Equal(t, "新 章节", ch.Title)
		})
	}
}

func TestAddChapterToEmptyOutline(t *testing.T) {
	e := NewEditor(nil)

	outcome, err := e.AddChapter("概述", Anchor{})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Chapter)
}

func TestRemoveChapter(t *testing.T) {
	e := NewEditor(sample(t))

	_, err := e.RemoveChapter(4)
	require.NoError(t, err)

	o := e.Outline()
	assert.Equal(t, []int{1, 2, 3, 5}, chapterNumbers(o))
	for _, number := range sectionNumbers(o) {
		assert.False(t, strings.HasPrefix(number, "4."), number)
	}

	_, err = e.RemoveChapter(4)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, []int{1, 2, 3, 5}, chapterNumbers(o))
}

func TestRemoveLastChapter(t *testing.T) {
	e := NewEditor(Parse("# r\n### 第1章 唯一\n"))

	_, err := e.RemoveChapter(1)
	require.NoError(t, err)
	assert.Nil(t, e.Outline().Chapters)
}

func TestRenameChapter(t *testing.T) {
	e := NewEditor(sample(t))

	_, err := e.RenameChapter(2, "现状与问题")
	require.NoError(t, err)
	ch, _ := e.Outline().Chapter(2)
	assert.Equal(t, "现状与问题", ch.Title)
	assert.Len(t, ch.Sections, 1)

	_, err = e.RenameChapter(9, "x")
	assert.True(t, apperr.IsNotFound(err))
}

func TestMoveChapter(t *testing.T) {
	tests := []struct {
		name    string
		number  int
		at      Anchor
		order   []int
		changed bool
	}{
		{name: "forward", number: 1, at: Anchor{After: 3}, order: []int{2, 3, 1, 4, 5}, changed: true},
		{name: "backward", number: 5, at: Anchor{Before: 2}, order: []int{1, 5, 2, 3, 4}, changed: true},
		{name: "to end", number: 2, at: Anchor{}, order: []int{1, 3, 4, 5, 2}, changed: true},
		{name: "same place", number: 2, at: Anchor{After: 1}, order: []int{1, 2, 3, 4, 5}, changed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(sample(t))
			before := len(e.Outline().Chapters)

			outcome, err := e.MoveChapter(tt.number, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, outcome.Changed)
			assert.Equal(t, tt.order, chapterNumbers(e.Outline()))
			assert.Len(t, e.Outline().Chapters, before)

			ch, _ := e.Outline().Chapter(tt.number)
			for _, s := range ch.Sections {
				assert.Equal(t, tt.number, s.Prefix())
			}
		})
	}
}

func TestMoveChapterErrors(t *testing.T) {
	e := NewEditor(sample(t))

	_, err := e.MoveChapter(3, Anchor{After: 3})
	assert.True(t, apperr.IsValidation(err))

	_, err = e.MoveChapter(8, Anchor{After: 1})
	assert.True(t, apperr.IsNotFound(err))

	_, err = e.MoveChapter(3, Anchor{Before: 8})
	assert.True(t, apperr.IsNotFound(err))

	assert.Equal(t, []int{1, 2, 3, 4, 5}, chapterNumbers(e.Outline()))
}

func TestAddSection(t *testing.T) {
	e := NewEditor(sample(t))

	outcome, err := e.AddSection(3, "关键技术")
	require.NoError(t, err)
	assert.Equal(t, "3.3", outcome.Section)

	outcome, err = e.AddSection(5, "主要结论")
	require.NoError(t, err)
	assert.Equal(t, "5.1", outcome.Section)

	_, err = e.AddSection(7, "x")
	assert.True(t, apperr.IsNotFound(err))
}

func TestAddSectionAfterGap(t *testing.T) {
	e := NewEditor(Parse("# r\n### 第2章 a\n#### 2.1 x\n#### 2.5 y\n"))

	outcome, err := e.AddSection(2, "z")
	require.NoError(t, err)
	assert.Equal(t, "2.6", outcome.Section)
}

func TestAddSectionIgnoresStalePrefix(t *testing.T) {
	// 4.7 is left over from before a move and does not count toward chapter 3.
	e := NewEditor(Parse("# r\n### 第3章 a\n#### 4.7 x\n### 第5章 b\n#### 3.1 stale\n"))

	outcome, err := e.AddSection(3, "y")
	require.NoError(t, err)
	assert.Equal(t, "3.2", outcome.Section)

	outcome, err = e.AddSection(5, "z")
	require.NoError(t, err)
	assert.Equal(t, "5.1", outcome.Section)
	assert.Equal(t, []string{"4.7", "3.2", "3.1", "5.1"}, sectionNumbers(e.Outline()))
}

func TestEditorKeepsRoundTrip(t *testing.T) {
	o := sample(t)
	o.Recommendations = &Recommendations{
		ChapterCountHint:    "5章",
		ChartPlacementHints: []ChartHint{{Location: "第3章 技术方案", Suggestion: "技术路线图"}},
	}
	e := NewEditor(o)

	ops := []Op{
		{Op: OpAddChapter, Title: "投资估算：总投资与资金筹措", After: 3},
		{Op: OpAddSection, Chapter: 6, Title: "估算依据"},
		{Op: OpAddSection, Chapter: 6, Title: "资金筹措"},
		{Op: OpMoveChapter, Chapter: 1, Before: 5},
		{Op: OpRenameSection, Section: "4.2", Title: "组织：人员与分工"},
		{Op: OpAdjustLevel, Target: "3.2", Direction: DirectionUp},
		{Op: OpRemoveSection, Section: "1.1"},
		{Op: OpRenumber},
		{Op: OpAddSection, Chapter: 2, Title: "补充"},
		{Op: OpRemoveChapter, Chapter: 3},
		{Op: OpRenameChapter, Chapter: 2, Title: "现状：问题与成因"},
		{Op: OpAdjustLevel, Target: "1.1", Direction: DirectionUp},
		{Op: OpRenumber},
	}

	for _, op := range ops {
		_, err := e.Apply(op)
		require.NoError(t, err, "%+v", op)

		text := Serialize(e.Outline())
		parsed := Parse(text)
		require.Equal(t, e.Outline(), parsed, "after %s:\n%s", op.Op, text)
		require.Equal(t, text, Serialize(parsed))
	}
	assert.True(t, e.Outline().Normalized())
}

func TestRemoveSection(t *testing.T) {
	e := NewEditor(sample(t))

	_, err := e.RemoveSection("3.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1", "1.2", "2.1", "3.2", "4.1", "4.2"}, sectionNumbers(e.Outline()))

	_, err = e.RemoveSection("3.1")
	assert.True(t, apperr.IsNotFound(err))

	_, err = e.RemoveSection("2.1")
	require.NoError(t, err)
	ch, _ := e.Outline().Chapter(2)
	assert.Nil(t, ch.Sections)
}

func TestAmbiguousSection(t *testing.T) {
	// A stale section number can collide with a live one.
	o := Parse("# r\n### 第1章 a\n#### 1.1 x\n### 第3章 b\n#### 3.1 y\n#### 1.1 stale\n")

	e := NewEditor(o)
	_, err := e.RemoveSection("1.1")
	assert.True(t, apperr.IsValidation(err))
	_, err = e.RenameSection("1.1", "z")
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, []string{"1.1", "3.1", "1.1"}, sectionNumbers(o))
}

func TestRenameSection(t *testing.T) {
	e := NewEditor(sample(t))

	_, err := e.RenameSection("4.2", "保障措施")
	require.NoError(t, err)
	_, found := e.Outline().Section("4.2")
	assert.Equal(t, "保障措施", found[0].Title)

	_, err = e.RenameSection("4.9", "x")
	assert.True(t, apperr.IsNotFound(err))
}

func TestRenumberIdempotent(t *testing.T) {
	e := NewEditor(sample(t))
	_, err := e.MoveChapter(5, Anchor{Before: 1})
	require.NoError(t, err)
	_, err = e.RemoveChapter(2)
	require.NoError(t, err)

	outcome, err := e.Renumber()
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	first := Serialize(e.Outline())

	outcome, err = e.Renumber()
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
	assert.Equal(t, first, Serialize(e.Outline()))
	assert.True(t, e.Outline().Normalized())
	assert.Equal(t, []string{"2.1", "2.2", "3.1", "3.2", "4.1", "4.2"}, sectionNumbers(e.Outline()))
}

func TestAdjustLevel(t *testing.T) {
	t.Run("promote section", func(t *testing.T) {
		e := NewEditor(sample(t))

		outcome, err := e.AdjustLevel("3.2", DirectionUp)
		require.NoError(t, err)
		assert.Equal(t, 6, outcome.Chapter)

		o := e.Outline()
		assert.Equal(t, []int{1, 2, 3, 6, 4, 5}, chapterNumbers(o))
		assert.Equal(t, "详细设计", o.Chapters[3].Title)
		ch, _ := o.Chapter(3)
		assert.Len(t, ch.Sections, 1)
	})

	t.Run("chapter up is a no-op", func(t *testing.T) {
		e := NewEditor(sample(t))
		before := Serialize(e.Outline())

		outcome, err := e.AdjustLevel("2", DirectionUp)
		require.NoError(t, err)
		assert.False(t, outcome.Changed)
		assert.Equal(t, before, Serialize(e.Outline()))
	})

	t.Run("refused", func(t *testing.T) {
		e := NewEditor(sample(t))
		before := Serialize(e.Outline())

		_, err := e.AdjustLevel("2", DirectionDown)
		assert.True(t, apperr.IsUnsupported(err))
		_, err = e.AdjustLevel("2.1", DirectionDown)
		assert.True(t, apperr.IsUnsupported(err))
		_, err = e.AdjustLevel("2.1", "sideways")
		assert.True(t, apperr.IsValidation(err))
		_, err = e.AdjustLevel("8", DirectionUp)
		assert.True(t, apperr.IsNotFound(err))
		_, err = e.AdjustLevel("8.1", DirectionUp)
		assert.True(t, apperr.IsNotFound(err))
		_, err = e.AdjustLevel("abc", DirectionUp)
		assert.True(t, apperr.IsValidation(err))

		assert.Equal(t, before, Serialize(e.Outline()))
	})
}

func TestApply(t *testing.T) {
	var ops []Op
	require.NoError(t, json.Unmarshal([]byte(`[
		{"op": "add_chapter", "title": "项目投资估算", "after": 3},
		{"op": "add_section", "chapter": 6, "title": "估算依据"},
		{"op": "rename_chapter", "chapter": 1, "title": "项目概述"},
		{"op": "renumber"}
	]`), &ops))

	e := NewEditor(sample(t))
	for _, op := range ops {
		_, err := e.Apply(op)
		require.NoError(t, err, op.Op)
	}

	o := e.Outline()
	assert.Equal(t, "项目概述", o.Chapters[0].Title)
	assert.Equal(t, "项目投资估算", o.Chapters[3].Title)
	assert.Equal(t, "4.1", o.Chapters[3].Sections[0].Number)
	assert.True(t, o.Normalized())
}

func TestApplyValidation(t *testing.T) {
	tests := []Op{
		{},
		{Op: "explode"},
		{Op: OpAddChapter},
		{Op: OpRemoveChapter},
		{Op: OpRenameChapter, Chapter: 1},
		{Op: OpAddSection, Title: "x"},
		{Op: OpRemoveSection},
		{Op: OpRenameSection, Section: "1.1"},
		{Op: OpAdjustLevel, Direction: DirectionUp},
	}

	for _, op := range tests {
		e := NewEditor(sample(t))
		_, err := e.Apply(op)
		assert.True(t, apperr.IsValidation(err), "op %+v: %v", op, err)
	}
}
