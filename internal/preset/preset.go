// Package preset stores named generation settings so a recurring kind of
// report can be generated with the same mode, template and references.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/catalog"
	"github.com/alucardeht/outliner/internal/generator"
	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/outline"
)

var log = logger.ForComponent("preset")

var namePattern = regexp.MustCompile(`^[\p{L}\p{N}_-]{1,64}$`)

// ValidName reports whether name can be used as a preset file name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

type Preset struct {
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Mode          outline.Mode `json:"mode,omitempty"`
	TemplateID    string       `json:"template_id,omitempty"`
	ReferenceDocs []string     `json:"reference_docs,omitempty"`
	SavedAt       time.Time    `json:"saved_at"`
}

// Apply fills in the request fields the caller left empty.
func (p *Preset) Apply(req generator.Request) generator.Request {
	if req.Mode == "" {
		req.Mode = p.Mode
	}
	if req.TemplateID == "" {
		req.TemplateID = p.TemplateID
	}
	if len(req.ReferenceDocs) == 0 && len(p.ReferenceDocs) > 0 {
		req.ReferenceDocs = append([]string(nil), p.ReferenceDocs...)
	}
	return req
}

func (p *Preset) validate() error {
	if !ValidName(p.Name) {
		return apperr.Validation("invalid preset name %q: use letters, digits, '-' or '_'", p.Name)
	}
	if p.Mode != "" && !p.Mode.Valid() {
		return apperr.Validation("unknown generation mode %q", p.Mode)
	}
	if p.TemplateID != "" && !catalog.ValidID(p.TemplateID) {
		return apperr.Validation("invalid template id %q: id must look like T001", p.TemplateID)
	}
	return nil
}

// Store keeps one JSON file per preset in a directory.
type Store struct {
	dir string
	now func() time.Time
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, apperr.IO(fmt.Sprintf("failed to create %s", dir), err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes p under its name, replacing an earlier preset of that name.
func (s *Store) Save(p Preset) (*Preset, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.TemplateID = strings.ToUpper(strings.TrimSpace(p.TemplateID))
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.SavedAt = s.now().UTC().Truncate(time.Second)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode preset %s: %w", p.Name, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".preset-*")
	if err != nil {
		return nil, apperr.IO("failed to create preset file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, apperr.IO("failed to write preset file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, apperr.IO("failed to write preset file", err)
	}
	if err := os.Rename(tmp.Name(), s.path(p.Name)); err != nil {
		os.Remove(tmp.Name())
		return nil, apperr.IO(fmt.Sprintf("failed to save preset %s", p.Name), err)
	}

	log.Info("preset saved", "name", p.Name)
	return &p, nil
}

// Get loads a preset by name.
func (s *Store) Get(name string) (*Preset, error) {
	name = strings.TrimSpace(name)
	if !ValidName(name) {
		return nil, apperr.NotFound("preset %q not found", name)
	}
	p, err := readPreset(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("preset %q not found", name)
		}
		return nil, err
	}
	return p, nil
}

// List returns every readable preset ordered by name.
func (s *Store) List() ([]Preset, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, apperr.IO("failed to list presets", err)
	}

	presets := make([]Preset, 0, len(matches))
	for _, file := range matches {
		p, err := readPreset(file)
		if err != nil {
			log.Warn("preset unreadable; skipped", "file", file, "error", err)
			continue
		}
		presets = append(presets, *p)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// Delete removes a preset. It reports false when there was nothing to remove.
func (s *Store) Delete(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if !ValidName(name) {
		return false, nil
	}
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, apperr.IO(fmt.Sprintf("failed to delete preset %s", name), err)
	}
	log.Info("preset deleted", "name", name)
	return true, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func readPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, apperr.Malformed("preset %s: %v", filepath.Base(path), err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return &p, nil
}
