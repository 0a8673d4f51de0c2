package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the solver's readable state at one tick for offline
// analysis. Grids are stored row-major, y*width+x, y increasing downward.
type Snapshot struct {
	Version int   `json:"version"`
	Tick    int32 `json:"tick"`

	GridWidth  int     `json:"grid_width"`
	GridHeight int     `json:"grid_height"`
	CellSize   float32 `json:"cell_size"`

	Obstacles []SnapshotObstacle `json:"obstacles"`

	U        []float32 `json:"u"`
	V        []float32 `json:"v"`
	Pressure []float32 `json:"pressure"`
	Mask     []uint8   `json:"mask"`
}

// SnapshotObstacle is one obstacle in render-space coordinates.
type SnapshotObstacle struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	R float32 `json:"r"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d.json", snapshot.Tick)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, expected %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
