package outlinefiles

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/outliner/internal/apperr"
)

const windOutline = `# 风电场地质调查报告

## 元数据
- generated_at：2025-01-01T08:00:00Z
- generation_mode：quick
- template_used：T101

### 第1章 前言
#### 1.1 任务来源
#### 1.2 风电场概况

### 第2章 区域地质
#### 2.1 地层岩性
`

const solarOutline = `# 光伏电站可行性研究报告

## 元数据
- generated_at：2025-01-02T08:00:00Z
- generation_mode：quick
- template_used：T104

### 第1章 概述
#### 1.1 项目背景
#### 3.1 错位小节
`

func writeFile(t *testing.T, path, text string, modified time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	require.NoError(t, os.Chtimes(path, modified, modified))
}

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	base := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(dir, "a", "wind.md"), windOutline, base)
	writeFile(t, filepath.Join(dir, "solar.md"), solarOutline, base.Add(time.Hour))
	writeFile(t, filepath.Join(dir, "notes.md"), "# 笔记\n只有正文\n", base.Add(2*time.Hour))
	writeFile(t, filepath.Join(dir, "vendor", "copy.md"), windOutline, base.Add(3*time.Hour))
	writeFile(t, filepath.Join(dir, "wind.txt"), windOutline, base.Add(4*time.Hour))
	return dir
}

func TestList(t *testing.T) {
	dir := fixture(t)
	s := NewScanner([]string{"**/vendor/**"})

	files, err := s.List(dir, "")
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, filepath.Join(dir, "solar.md"), files[0].Path)
	assert.Equal(t, "solar.md", files[0].Name)
	assert.Equal(t, "T104", files[0].Template)
	assert.Equal(t, 1, files[0].Chapters)
	assert.Equal(t, 2, files[0].Sections)
	assert.Positive(t, files[0].Errors+files[0].Warnings)

	wind := files[1]
	assert.Equal(t, filepath.Join(dir, "a", "wind.md"), wind.Path)
	assert.Equal(t, "风电场地质调查报告", wind.Title)
	assert.Equal(t, time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), wind.GeneratedAt.UTC())
	assert.Equal(t, 2, wind.Chapters)
	assert.Equal(t, 3, wind.Sections)
	assert.Zero(t, wind.Errors)
	assert.Equal(t, int64(len(windOutline)), wind.Size)

	all, err := NewScanner(nil).List(dir, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	txt, err := s.List(dir, "*.txt")
	require.NoError(t, err)
	require.Len(t, txt, 1)
	assert.Equal(t, "wind.txt", txt[0].Name)
}

func TestListErrors(t *testing.T) {
	dir := fixture(t)
	s := NewScanner(nil)

	_, err := s.List(dir, "[")
	assert.True(t, apperr.IsValidation(err))

	_, err = s.List(filepath.Join(dir, "missing"), "")
	assert.True(t, apperr.IsNotFound(err))

	_, err = s.List(filepath.Join(dir, "solar.md"), "")
	assert.True(t, apperr.IsValidation(err))

	empty, err := s.List(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSearch(t *testing.T) {
	dir := fixture(t)
	s := NewScanner([]string{"**/vendor/**"})

	matches, err := s.Search(dir, "", "风电场")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(dir, "a", "wind.md"), matches[0].Path)
	assert.Equal(t, 2, matches[0].Hits)
	assert.Equal(t, []string{"1.2 风电场概况"}, matches[0].Headings)

	matches, err = s.Search(dir, "", "t10")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Empty(t, matches[0].Headings)

	matches, err = s.Search(dir, "", "第1章")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Len(t, m.Headings, 1)
	}

	matches, err = s.Search(dir, "", "核电")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = s.Search(dir, "", "  ")
	assert.True(t, apperr.IsValidation(err))
}

func TestSearchRanksByHits(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(dir, "once.md"), "# 报告\n### 第1章 地质\n", base.Add(time.Hour))
	writeFile(t, filepath.Join(dir, "thrice.md"), "# 地质报告\n### 第1章 地质\n#### 1.1 地质概况\n", base)

	matches, err := NewScanner(nil).Search(dir, "", "地质")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "thrice.md", matches[0].Name)
	assert.Equal(t, 3, matches[0].Hits)
	assert.Equal(t, []string{"第1章 地质", "1.1 地质概况"}, matches[0].Headings)
	assert.Equal(t, "once.md", matches[1].Name)
}

func TestDelete(t *testing.T) {
	dir := fixture(t)
	s := NewScanner(nil)

	wind := filepath.Join(dir, "a", "wind.md")
	deleted, err := s.Delete(wind)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoFileExists(t, wind)

	deleted, err = s.Delete(wind)
	require.NoError(t, err)
	assert.False(t, deleted)

	notes := filepath.Join(dir, "notes.md")
	_, err = s.Delete(notes)
	assert.True(t, apperr.IsValidation(err))
	assert.FileExists(t, notes)

	_, err = s.Delete(filepath.Join(dir, "vendor"))
	assert.True(t, apperr.IsValidation(err))
	assert.DirExists(t, filepath.Join(dir, "vendor"))
}
