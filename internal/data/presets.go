package data

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lbo-analyzer/internal/config"
)

// ErrPresetNotFound is returned by LoadPreset for unknown ids.
var ErrPresetNotFound = errors.New("preset not found")

// Preset is a named deal stored as presets/<id>.yaml.
type Preset struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	File        string            `json:"-"`
	Deal        config.DealConfig `json:"deal"`
}

// DefaultPresetDir resolves dir to an absolute path, falling back to ./presets.
func DefaultPresetDir(dir string) string {
	if dir == "" {
		dir = "presets"
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// ListPresets loads every *.yaml deal in dir, sorted by id.
// A missing directory yields no presets; unreadable files are logged and skipped.
func ListPresets(dir string, logger *slog.Logger) ([]Preset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("preset directory does not exist", slog.String("dir", dir))
			return []Preset{}, nil
		}
		return nil, fmt.Errorf("read preset dir: %w", err)
	}

	presets := make([]Preset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		p, err := loadPreset(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Warn("skipping preset", slog.String("file", entry.Name()), slog.Any("error", err))
			continue
		}
		presets = append(presets, p)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].ID < presets[j].ID })
	return presets, nil
}

// LoadPreset loads presets/<id>.yaml (or .yml).
func LoadPreset(dir, id string) (Preset, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, id)
	}
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return loadPreset(path)
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, id)
}

func loadPreset(path string) (Preset, error) {
	deal, err := config.LoadDealFile(path)
	if err != nil {
		return Preset{}, err
	}
	// Extract ID from filename (e.g. "base_case.yaml" -> "base_case").
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, err := deal.ToInputs(); err != nil {
		return Preset{}, fmt.Errorf("preset %s: %w", id, err)
	}
	name := deal.Name
	if name == "" {
		name = id
	}
	return Preset{ID: id, Name: name, Description: deal.Description, File: path, Deal: deal}, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
