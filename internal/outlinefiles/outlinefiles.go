// Package outlinefiles finds, searches and removes outline documents kept as
// plain files in a directory tree, outside the snapshot history.
package outlinefiles

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/textenc"
)

var log = logger.ForComponent("outlinefiles")

// DefaultPattern selects markdown files at any depth.
const DefaultPattern = "**/*.md"

// File summarizes one outline document on disk.
type File struct {
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Template    string    `json:"template,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Chapters    int       `json:"chapters"`
	Sections    int       `json:"sections"`
	Errors      int       `json:"errors"`
	Warnings    int       `json:"warnings"`
	Size        int64     `json:"size"`
	Modified    time.Time `json:"modified"`
}

// Match is a file that contains the searched text.
type Match struct {
	File
	Hits int `json:"hits"`
	// Headings are the chapter and section headings containing the text.
	Headings []string `json:"headings,omitempty"`
}

// Scanner walks a directory for outline files, skipping paths that match
// any ignore pattern.
type Scanner struct {
	ignore []string
}

func NewScanner(ignore []string) *Scanner {
	return &Scanner{ignore: ignore}
}

type document struct {
	file    File
	text    string
	outline *outline.Outline
}

// List returns the outline files under dir matching pattern, most recently
// modified first. A file needs a title and at least one chapter heading to
// count as an outline.
func (s *Scanner) List(dir, pattern string) ([]File, error) {
	docs, err := s.scan(dir, pattern)
	if err != nil {
		return nil, err
	}
	files := make([]File, 0, len(docs))
	for _, d := range docs {
		files = append(files, d.file)
	}
	return files, nil
}

// Search looks for query, ignoring case, in the outline files under dir.
// Files are ranked by number of hits.
func (s *Scanner) Search(dir, pattern, query string) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}
	docs, err := s.scan(dir, pattern)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []Match
	for _, d := range docs {
		hits := strings.Count(strings.ToLower(d.text), needle)
		if hits == 0 {
			continue
		}
		m := Match{File: d.file, Hits: hits}
		for _, ch := range d.outline.Chapters {
			if heading := ch.Heading(); strings.Contains(strings.ToLower(heading), needle) {
				m.Headings = append(m.Headings, heading)
			}
			for _, sec := range ch.Sections {
				if heading := sec.Number + " " + sec.Title; strings.Contains(strings.ToLower(heading), needle) {
					m.Headings = append(m.Headings, heading)
				}
			}
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Hits > matches[j].Hits
	})
	return matches, nil
}

// Delete removes the outline file at name. A missing file is reported as
// not deleted; a name that is a directory or not an outline is refused.
func (s *Scanner) Delete(name string) (bool, error) {
	info, err := os.Lstat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, apperr.IO(fmt.Sprintf("failed to stat %s", name), err)
	}
	if !info.Mode().IsRegular() {
		return false, apperr.Validation("%s is not a regular file", name)
	}

	text, _, err := textenc.ReadFile(name)
	if err != nil {
		return false, apperr.IO(fmt.Sprintf("failed to read %s", name), err)
	}
	if !isOutline(outline.Parse(text)) {
		return false, apperr.Validation("%s is not an outline file", name)
	}

	if err := os.Remove(name); err != nil {
		return false, apperr.IO(fmt.Sprintf("failed to delete %s", name), err)
	}
	log.Info("outline file deleted", "path", name)
	return true, nil
}

func (s *Scanner) scan(dir, pattern string) ([]document, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, apperr.Validation("invalid file pattern %q", pattern)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("directory %s not found", dir)
		}
		return nil, apperr.IO(fmt.Sprintf("failed to stat %s", dir), err)
	}
	if !info.IsDir() {
		return nil, apperr.Validation("%s is not a directory", dir)
	}

	fsys := os.DirFS(dir)
	names, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, apperr.IO(fmt.Sprintf("failed to scan %s", dir), err)
	}

	var docs []document
	for _, name := range names {
		if s.ignored(name) {
			continue
		}
		d, ok := read(fsys, dir, name)
		if ok {
			docs = append(docs, d)
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].file, docs[j].file
		if !a.Modified.Equal(b.Modified) {
			return a.Modified.After(b.Modified)
		}
		return a.Path < b.Path
	})
	log.Debug("outline files scanned", "dir", dir, "pattern", pattern, "candidates", len(names), "outlines", len(docs))
	return docs, nil
}

func (s *Scanner) ignored(name string) bool {
	for _, pattern := range s.ignore {
		if match, _ := doublestar.Match(pattern, name); match {
			return true
		}
	}
	return false
}

func read(fsys fs.FS, dir, name string) (document, bool) {
	info, err := fs.Stat(fsys, name)
	if err != nil || !info.Mode().IsRegular() {
		return document{}, false
	}
	text, _, err := textenc.ReadFS(fsys, name)
	if err != nil {
		log.Warn("outline file unreadable; skipped", "file", name, "error", err)
		return document{}, false
	}

	o, issues := outline.ParseWithReport(text)
	if !isOutline(o) {
		return document{}, false
	}

	f := File{
		Path:        filepath.Join(dir, filepath.FromSlash(name)),
		Name:        path.Base(name),
		Title:       o.Title,
		Template:    o.Metadata.TemplateUsed,
		GeneratedAt: o.Metadata.GeneratedAt,
		Chapters:    len(o.Chapters),
		Sections:    o.SectionCount(),
		Size:        info.Size(),
		Modified:    info.ModTime(),
	}
	for _, issue := range issues {
		switch issue.Severity {
		case outline.SeverityError:
			f.Errors++
		case outline.SeverityWarning:
			f.Warnings++
		}
	}
	return document{file: f, text: text, outline: o}, true
}

func isOutline(o *outline.Outline) bool {
	return o.Title != "" && len(o.Chapters) > 0
}
