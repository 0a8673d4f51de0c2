package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:    SnapshotVersion,
		Tick:       1000,
		GridWidth:  4,
		GridHeight: 2,
		CellSize:   5,
		Obstacles: []SnapshotObstacle{
			{X: 100, Y: 200, R: 30},
			{X: 300, Y: 400, R: 45},
		},
		U:        []float32{1, 2, 3, 4, 5, 6, 7, 8},
		V:        []float32{0, 0, 0, 0, -1, -1, -1, -1},
		Pressure: []float32{0.5, 0.5, 0.25, 0, 0, 0, 0, 0},
		Mask:     []uint8{0, 0, 1, 1, 0, 0, 0, 0},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Tick != snapshot.Tick {
		t.Errorf("Tick mismatch: got %d, want %d", loaded.Tick, snapshot.Tick)
	}
	if loaded.GridWidth != snapshot.GridWidth || loaded.GridHeight != snapshot.GridHeight {
		t.Errorf("Grid dims mismatch: got %dx%d, want %dx%d",
			loaded.GridWidth, loaded.GridHeight, snapshot.GridWidth, snapshot.GridHeight)
	}
	if len(loaded.Obstacles) != len(snapshot.Obstacles) {
		t.Errorf("Obstacle count mismatch: got %d, want %d", len(loaded.Obstacles), len(snapshot.Obstacles))
	}
	for i := range snapshot.U {
		if loaded.U[i] != snapshot.U[i] {
			t.Errorf("U[%d] mismatch: got %f, want %f", i, loaded.U[i], snapshot.U[i])
		}
	}
	for i := range snapshot.Mask {
		if loaded.Mask[i] != snapshot.Mask[i] {
			t.Errorf("Mask[%d] mismatch: got %d, want %d", i, loaded.Mask[i], snapshot.Mask[i])
		}
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    3000,
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestSnapshotVersionMismatch(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion + 1,
		Tick:    10,
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version mismatch error")
	}
}
