package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/genricoloni/dancedeck/internal/domain"
	"github.com/google/uuid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		doc           string
		expectedError string
		validateFunc  func(t *testing.T, items []domain.DanceItem)
	}{
		{
			name: "Success - Order And Optional Camera",
			doc: `
dances:
  - id: gokuraku
    name: Gokuraku Jodo
    author: someone
    motion: https://cdn.example.com/gokuraku.vmd
    audio: https://cdn.example.com/gokuraku.mp3
    camera: https://cdn.example.com/gokuraku-camera.vmd
  - id: senbonzakura
    name: Senbonzakura
    motion: /srv/dances/senbonzakura.vmd
    audio: /srv/dances/senbonzakura.wav
`,
			validateFunc: func(t *testing.T, items []domain.DanceItem) {
				if len(items) != 2 {
					t.Fatalf("expected 2 items, got %d", len(items))
				}
				if items[0].ID != "gokuraku" || items[1].ID != "senbonzakura" {
					t.Errorf("order not preserved: %s, %s", items[0].ID, items[1].ID)
				}
				if !items[0].HasCamera() {
					t.Error("first dance should have a camera track")
				}
				if items[1].HasCamera() {
					t.Error("second dance should not have a camera track")
				}
				if items[1].Ref(domain.RoleAudio) != "/srv/dances/senbonzakura.wav" {
					t.Errorf("audio ref: got %s", items[1].Ref(domain.RoleAudio))
				}
			},
		},
		{
			name: "Success - Missing ID Generated",
			doc: `
dances:
  - name: Untitled
    motion: m.vmd
    audio: a.wav
`,
			validateFunc: func(t *testing.T, items []domain.DanceItem) {
				if _, err := uuid.Parse(string(items[0].ID)); err != nil {
					t.Errorf("expected generated uuid, got %q", items[0].ID)
				}
			},
		},
		{
			name:          "Error - Missing Audio",
			doc:           "dances:\n  - id: x\n    motion: m.vmd\n",
			expectedError: "motion and audio are required",
		},
		{
			name:          "Error - Duplicate ID",
			doc:           "dances:\n  - {id: x, motion: m, audio: a}\n  - {id: x, motion: m2, audio: a2}\n",
			expectedError: "already used",
		},
		{
			name:          "Error - Invalid YAML",
			doc:           "dances: [",
			expectedError: "failed to parse catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Parse([]byte(tt.doc))

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("expected error containing '%s', got nil", tt.expectedError)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.validateFunc(t, items)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dances.yaml")
	items := []domain.DanceItem{
		{ID: "a", Name: "Alpha", MotionRef: "m1", AudioRef: "a1"},
		{ID: "b", Name: "Bravo", MotionRef: "m2", AudioRef: "a2", CameraRef: "c2"},
	}

	if err := Save(path, items); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, _, err := LoadAndPin(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(loaded) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(loaded))
	}
	for i := range items {
		if loaded[i] != items[i] {
			t.Errorf("item %d: want %+v, got %+v", i, items[i], loaded[i])
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := LoadAndPin(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadAndPin(t *testing.T) {
	tests := []struct {
		name           string
		doc            string
		expectedPinned int
		expectRewrite  bool
	}{
		{
			name: "Missing IDs Written Back",
			doc: `dances:
  - name: Untitled
    motion: m.vmd
    audio: a.wav
  - id: kept
    name: Kept
    motion: m2.vmd
    audio: a2.wav
`,
			expectedPinned: 1,
			expectRewrite:  true,
		},
		{
			name: "Complete Catalog Untouched",
			doc: `dances:
  - id: kept
    name: Kept
    motion: m2.vmd
    audio: a2.wav
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dances.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0644); err != nil {
				t.Fatalf("failed to write catalog: %v", err)
			}

			items, pinned, err := LoadAndPin(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pinned != tt.expectedPinned {
				t.Errorf("pinned: want %d, got %d", tt.expectedPinned, pinned)
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read catalog: %v", err)
			}
			if rewritten := string(raw) != tt.doc; rewritten != tt.expectRewrite {
				t.Errorf("rewrite: want %v, got %v", tt.expectRewrite, rewritten)
			}

			// A second load must yield the same ids
			again, pinnedAgain, err := LoadAndPin(path)
			if err != nil {
				t.Fatalf("reload failed: %v", err)
			}
			if pinnedAgain != 0 {
				t.Errorf("reload pinned %d ids, want 0", pinnedAgain)
			}
			if len(again) != len(items) {
				t.Fatalf("reload: want %d items, got %d", len(items), len(again))
			}
			for i := range items {
				if again[i].ID != items[i].ID {
					t.Errorf("item %d id changed across loads: %s -> %s", i, items[i].ID, again[i].ID)
				}
			}
		})
	}
}
