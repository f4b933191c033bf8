package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/outliner/internal/config"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvHistoryDir, "")
	t.Setenv(config.EnvTemplatesDir, "")
	t.Setenv(config.EnvPresetsDir, "")
	return home
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	code, _, stderr := runCLI()
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage: outliner")

	code, _, _ = runCLI("help")
	assert.Equal(t, 0, code)

	code, _, stderr = runCLI("frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)
}

func TestRunGenerateToStdout(t *testing.T) {
	setHome(t)

	code, stdout, stderr := runCLI("generate", "-no-save", "风电场地质调查报告")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "# 风电场地质调查报告\n"))
	assert.Contains(t, stdout, "- template_used：T101\n")
	assert.NotContains(t, stderr, "snapshot")

	code, _, stderr = runCLI("generate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "project description is required")
}

func TestRunFileWorkflow(t *testing.T) {
	setHome(t)
	path := filepath.Join(t.TempDir(), "outline.md")

	code, stdout, stderr := runCLI("generate", "-o", path, "光伏电站可行性研究")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "wrote "+path)
	assert.Contains(t, stderr, "snapshot ")

	code, stdout, stderr = runCLI("edit", "-op", "add_chapter", "-title", "附录", "-i", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "wrote "+path)

	code, stdout, _ = runCLI("parse", path)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "template: T104  mode: quick\n")
	assert.Contains(t, stdout, "章 附录\n")

	code, stdout, _ = runCLI("lint", "-strict", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "no issues found")

	code, stdout, _ = runCLI("render", "-toc", path)
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "光伏电站可行性研究报告\n  元数据\n"))

	code, stdout, stderr = runCLI("history", "list")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "T104")

	code, _, stderr = runCLI("edit", "-op", "remove_chapter", "-chapter", "42", "-i", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "outliner edit:")
}

func TestRunLintStrict(t *testing.T) {
	setHome(t)
	path := filepath.Join(t.TempDir(), "broken.md")
	require.NoError(t, os.WriteFile(path, []byte("# 报告\n#### 3.1 孤立\n### 第1章 概述\n### 第1章 重复\n"), 0644))

	code, stdout, _ := runCLI("lint", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "line 2: ")

	code, _, stderr := runCLI("lint", "-strict", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error(s) found")

	code, _, _ = runCLI("lint", filepath.Join(t.TempDir(), "missing.md"))
	assert.Equal(t, 1, code)
}

func TestRunEmptyQueriesSucceed(t *testing.T) {
	setHome(t)

	code, stdout, _ := runCLI("history", "search", "核电")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "no snapshots matched")

	code, stdout, _ = runCLI("templates", "list", "-category", "industry")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "T104")
}

func TestRunFilesCommands(t *testing.T) {
	setHome(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "wind.md")

	code, _, stderr := runCLI("generate", "-no-save", "-o", path, "风电场地质调查报告")
	require.Equal(t, 0, code, stderr)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# 说明\n"), 0644))

	code, stdout, stderr := runCLI("files", "list", dir)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, path)
	assert.NotContains(t, stdout, "readme.md")

	code, stdout, _ = runCLI("files", "search", "-dir", dir, "前言")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, path)
	assert.Contains(t, stdout, "第1章 前言")

	code, stdout, _ = runCLI("files", "search", "-dir", dir, "核电")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "no outline files matched")

	code, _, stderr = runCLI("files", "delete", filepath.Join(dir, "readme.md"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not an outline file")

	code, stdout, _ = runCLI("files", "delete", path)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "deleted "+path)

	code, stdout, _ = runCLI("files", "list", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "no outline files found")

	code, _, stderr = runCLI("files", "rename")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown files subcommand")
}

func TestRunTemplatesValidate(t *testing.T) {
	setHome(t)

	code, stdout, stderr := runCLI("templates", "validate")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "9 templates, 0 problems\n")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "standard.md"), []byte("## T001 通用报告\n#### 1.1 孤立\n"), 0644))

	code, stdout, stderr = runCLI("templates", "validate", "-dir", dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "FAIL standard.md")
	assert.Contains(t, stdout, "section before any chapter")
	assert.Contains(t, stderr, "template problems found")
}

func TestRunPresetsWorkflow(t *testing.T) {
	setHome(t)

	code, stdout, _ := runCLI("presets", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "no presets saved")

	code, stdout, stderr := runCLI("presets", "save", "-mode", "keypoints", "-template", "T005", "-d", "年度总结", "annual")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "saved preset annual")

	code, stdout, _ = runCLI("presets", "show", "annual")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, `"template_id": "T005"`)

	code, stdout, stderr = runCLI("generate", "-no-save", "-preset", "annual", "风电场地质调查报告")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "- template_used：T005\n")
	assert.Contains(t, stdout, "- generation_mode：keypoints\n")

	code, _, stderr = runCLI("generate", "-no-save", "-preset", "absent", "风电场地质调查报告")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")

	code, stdout, _ = runCLI("presets", "delete", "annual")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "deleted preset annual")

	code, _, stderr = runCLI("presets", "save", "bad/name")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid preset name")
}
