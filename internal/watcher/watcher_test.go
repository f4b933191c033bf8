package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/alucardeht/outliner/internal/outline"
)

func TestDebouncerCoalesces(t *testing.T) {
	batches := make(chan []FileEvent, 4)
	d := NewDebouncer(30*time.Millisecond, 10, func(events []FileEvent) { batches <- events })

	d.Add(FileEvent{Path: "b.md", Type: EventCreate})
	d.Add(FileEvent{Path: "a.md", Type: EventModify})
	d.Add(FileEvent{Path: "b.md", Type: EventModify})

	select {
	case batch := <-batches:
		require.Len(t, batch, 2)
		assert.Equal(t, "a.md", batch[0].Path)
		assert.Equal(t, "b.md", batch[1].Path)
		assert.Equal(t, EventCreate, batch[1].Type)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer did not flush")
	}
	d.Stop()
}

func TestDebouncerMerge(t *testing.T) {
	var got []FileEvent
	d := NewDebouncer(time.Hour, 10, func(events []FileEvent) { got = append(got, events...) })

	d.Add(FileEvent{Path: "tmp.md", Type: EventCreate})
	d.Add(FileEvent{Path: "tmp.md", Type: EventDelete})
	d.Add(FileEvent{Path: "old.md", Type: EventModify})
	d.Add(FileEvent{Path: "old.md", Type: EventDelete})
	d.Add(FileEvent{Path: "new.md", Type: EventDelete})
	d.Add(FileEvent{Path: "new.md", Type: EventCreate})
	d.Flush()

	require.Len(t, got, 2)
	assert.Equal(t, FileEvent{Path: "new.md", Type: EventCreate}, got[0])
	assert.Equal(t, FileEvent{Path: "old.md", Type: EventDelete}, got[1])
}

func TestDebouncerMaxBatch(t *testing.T) {
	var got [][]FileEvent
	d := NewDebouncer(time.Hour, 2, func(events []FileEvent) { got = append(got, events) })

	d.Add(FileEvent{Path: "a.md"})
	d.Add(FileEvent{Path: "b.md"})
	d.Add(FileEvent{Path: "c.md"})

	require.Len(t, got, 1)
	assert.Len(t, got[0], 2)

	d.Flush()
	require.Len(t, got, 2)
	assert.Equal(t, "c.md", got[1][0].Path)

	d.Flush()
	assert.Len(t, got, 2)
}

func TestDebouncerStop(t *testing.T) {
	var got []FileEvent
	d := NewDebouncer(time.Hour, 10, func(events []FileEvent) { got = append(got, events...) })

	d.Add(FileEvent{Path: "a.md"})
	d.Stop()
	d.Add(FileEvent{Path: "b.md"})
	d.Stop()

	require.Len(t, got, 1)
	assert.Equal(t, "a.md", got[0].Path)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outline.md")
	text := "# 报告\n#### 2.1 孤立小节\n### 第1章 概述\n#### 1.1 背景\n"
	gbk, err := simplifiedchinese.GBK.NewEncoder().String(text)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(gbk), 0644))

	r := Check(path, EventModify)

	require.NoError(t, r.Err)
	assert.Equal(t, "gb18030", r.Encoding)
	assert.Equal(t, "报告", r.Outline.Title)
	require.Len(t, r.Outline.Chapters, 1)
	require.NotEmpty(t, r.Issues)
	assert.Equal(t, "ORPHAN_SECTION", r.Issues[0].Type)

	missing := Check(filepath.Join(dir, "gone.md"), EventModify)
	assert.Error(t, missing.Err)
	assert.Nil(t, missing.Outline)
}

func TestWants(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs", "node_modules"), 0755))
	single := filepath.Join(t.TempDir(), "one.rst")
	require.NoError(t, os.WriteFile(single, []byte("# x\n"), 0644))

	w, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Add(dir))
	require.NoError(t, w.Add(single))

	assert.True(t, w.wants(filepath.Join(dir, "a.md")))
	assert.True(t, w.wants(filepath.Join(dir, "docs", "b.txt")))
	assert.True(t, w.wants(single))
	assert.False(t, w.wants(filepath.Join(dir, "image.png")))
	assert.False(t, w.wants(filepath.Join(dir, ".hidden.md")))
	assert.False(t, w.wants(filepath.Join(dir, "docs", "node_modules", "c.md")))
	assert.False(t, w.wants(filepath.Join(filepath.Dir(single), "other.rst")))
	assert.False(t, w.wants(filepath.Join(filepath.Dir(dir), "elsewhere.md")))
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()

	var (
		mu      sync.Mutex
		reports []Report
	)
	received := make(chan struct{}, 16)
	handler := func(r Report) {
		mu.Lock()
		reports = append(reports, r)
		mu.Unlock()
		received <- struct{}{}
	}

	cfg := DefaultConfig()
	cfg.DebounceWindow = 50 * time.Millisecond
	w, err := New(cfg, handler)
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	path := filepath.Join(dir, "report.md")
	require.NoError(t, os.WriteFile(path, []byte("# 报告\n### 第1章 概述\n### 第1章 重复\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.png"), []byte("png"), 0644))

	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("no report received")
	}
	require.NoError(t, w.Stop())

	mu.Lock()
	defer mu.Unlock()
	for _, r := range reports {
		assert.Equal(t, path, r.Path)
	}
	last := reports[len(reports)-1]
	require.NoError(t, last.Err)
	assert.Len(t, last.Outline.Chapters, 1)
	assert.Equal(t, outline.SeverityError, last.Issues[0].Severity)
}
