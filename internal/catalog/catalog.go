package catalog

import (
	"fmt"
	"os"

	"github.com/genricoloni/dancedeck/internal/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Entry is one dance as written in the catalog file
type Entry struct {
	ID     string `yaml:"id,omitempty"`
	Name   string `yaml:"name"`
	Author string `yaml:"author,omitempty"`
	Thumb  string `yaml:"thumb,omitempty"`
	Motion string `yaml:"motion"`
	Audio  string `yaml:"audio"`
	Camera string `yaml:"camera,omitempty"`
}

// File is the catalog document
type File struct {
	Dances []Entry `yaml:"dances"`
}

// LoadAndPin reads the catalog at path and writes it back when ids had to be
// generated, so those ids survive restarts. It returns the number of ids written.
func LoadAndPin(path string) ([]domain.DanceItem, int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read catalog: %w", err)
	}
	items, generated, err := parse(b)
	if err != nil {
		return nil, 0, err
	}
	if generated == 0 {
		return items, 0, nil
	}
	if err := Save(path, items); err != nil {
		return nil, 0, fmt.Errorf("failed to pin generated ids: %w", err)
	}
	return items, generated, nil
}

// Parse decodes a catalog document. Entries without an id get a random one.
func Parse(b []byte) ([]domain.DanceItem, error) {
	items, _, err := parse(b)
	return items, err
}

func parse(b []byte) ([]domain.DanceItem, int, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, 0, fmt.Errorf("failed to parse catalog: %w", err)
	}

	items := make([]domain.DanceItem, 0, len(f.Dances))
	generated := 0
	seen := make(map[domain.Identifier]int, len(f.Dances))
	for i, e := range f.Dances {
		if e.Motion == "" || e.Audio == "" {
			return nil, 0, fmt.Errorf("dance #%d (%s): motion and audio are required", i+1, e.Name)
		}

		id := domain.Identifier(e.ID)
		if id == domain.None {
			id = domain.Identifier(uuid.NewString())
			generated++
		}
		if prev, dup := seen[id]; dup {
			return nil, 0, fmt.Errorf("dance #%d: id %q already used by dance #%d", i+1, id, prev)
		}
		seen[id] = i + 1

		items = append(items, domain.DanceItem{
			ID:        id,
			Name:      e.Name,
			Author:    e.Author,
			Thumb:     e.Thumb,
			MotionRef: e.Motion,
			AudioRef:  e.Audio,
			CameraRef: e.Camera,
		})
	}
	return items, generated, nil
}

// Save writes items back as a catalog document
func Save(path string, items []domain.DanceItem) error {
	f := File{Dances: make([]Entry, 0, len(items))}
	for _, it := range items {
		f.Dances = append(f.Dances, Entry{
			ID:     string(it.ID),
			Name:   it.Name,
			Author: it.Author,
			Thumb:  it.Thumb,
			Motion: it.MotionRef,
			Audio:  it.AudioRef,
			Camera: it.CameraRef,
		})
	}
	b, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return os.WriteFile(path, b, 0644)
}
