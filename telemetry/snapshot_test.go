package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSave(t *testing.T) {
	tmpDir := t.TempDir()

	positions := []float32{0.1, 0.2, 0, 0, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0, 0, 0.9, 0.05, 0, 0}
	velocities := []float32{0.01, -0.02, 0, 1, 0, 0, 0, 1, 0.5, 0.5, 0, 1, -1, 1, 0, 1}
	colors := []float32{1, 0, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1, 1, 0, 0, 1}

	snapshot, err := NewSnapshot(1000, 2, positions, velocities, colors)
	if err != nil {
		t.Fatal(err)
	}
	snapshot.Bookmark = &Bookmark{Type: BookmarkSettled, Frame: 1000, Description: "Test bookmark"}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, "snapshot_1000_settled.json")
	if path != expectedPath {
		t.Errorf("expected path %s, got %s", expectedPath, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot file was not created: %v", err)
	}

	var loaded Snapshot
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if loaded.Version != SnapshotVersion || loaded.Frame != 1000 || loaded.N != 2 || loaded.Bookmark == nil {
		t.Errorf("header mismatch: %+v", loaded)
	}

	p, v, c := loaded.Images()
	for i := range positions {
		if p[i] != positions[i] || v[i] != velocities[i] || c[i] != colors[i] {
			t.Fatalf("value %d did not survive the round trip", i)
		}
	}
}

func TestNewSnapshotRejectsShortImages(t *testing.T) {
	if _, err := NewSnapshot(0, 2, make([]float32, 16), make([]float32, 12), make([]float32, 16)); err == nil {
		t.Error("expected an error for mismatched image sizes")
	}
}
