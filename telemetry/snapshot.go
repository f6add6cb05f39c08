package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a write-only diagnostic dump of the particle state taken at a
// bookmark. Colours are included so a dump stands on its own.
type Snapshot struct {
	Version int   `json:"version"`
	Frame   int64 `json:"frame"`
	N       int   `json:"n"`

	Particles []ParticleState `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParticleState holds one particle's texels, in row-major grid order.
type ParticleState struct {
	// Position: xy in [0,1), zw carried through by integration
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`

	VelX float32 `json:"vel_x"`
	VelY float32 `json:"vel_y"`

	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

// NewSnapshot builds a snapshot from raw RGBA texel data of the current
// position, velocity and colour images of an n×n grid.
func NewSnapshot(frame int64, n int, positions, velocities, colors []float32) (*Snapshot, error) {
	want := n * n * 4
	if len(positions) != want || len(velocities) != want || len(colors) != want {
		return nil, fmt.Errorf("snapshot: need %d values per image, got %d/%d/%d",
			want, len(positions), len(velocities), len(colors))
	}

	s := &Snapshot{
		Version:   SnapshotVersion,
		Frame:     frame,
		N:         n,
		Particles: make([]ParticleState, n*n),
	}
	for i := range s.Particles {
		o := i * 4
		s.Particles[i] = ParticleState{
			X: positions[o], Y: positions[o+1], Z: positions[o+2], W: positions[o+3],
			VelX: velocities[o], VelY: velocities[o+1],
			R: colors[o], G: colors[o+1], B: colors[o+2], A: colors[o+3],
		}
	}
	return s, nil
}

// Images returns the snapshot as raw RGBA texel data, the inverse of NewSnapshot.
// Velocity z and w are written as 0 and 1, as the velocity pass does.
func (s *Snapshot) Images() (positions, velocities, colors []float32) {
	n := len(s.Particles) * 4
	positions = make([]float32, n)
	velocities = make([]float32, n)
	colors = make([]float32, n)
	for i, p := range s.Particles {
		o := i * 4
		copy(positions[o:o+4], []float32{p.X, p.Y, p.Z, p.W})
		copy(velocities[o:o+4], []float32{p.VelX, p.VelY, 0, 1})
		copy(colors[o:o+4], []float32{p.R, p.G, p.B, p.A})
	}
	return positions, velocities, colors
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}
