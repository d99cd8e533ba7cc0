package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zombiearmy/horde/pkg/core"
)

// Snapshot is the on-disk layout written by Close.
type Snapshot struct {
	ExportedAt time.Time     `json:"exportedAt"`
	Armies     []core.Army   `json:"armies"`
	Battles    []core.Battle `json:"battles"`
}

func (b *Backend) buildSnapshot() Snapshot {
	snap := Snapshot{
		ExportedAt: time.Now().UTC(),
		Armies:     make([]core.Army, 0, len(b.armies)),
		Battles:    make([]core.Battle, 0),
	}
	for _, a := range b.armies {
		snap.Armies = append(snap.Armies, a)
	}
	sort.Slice(snap.Armies, func(i, j int) bool {
		return snap.Armies[i].Owner.String() < snap.Armies[j].Owner.String()
	})
	for _, a := range snap.Armies {
		snap.Battles = append(snap.Battles, b.battles[a.Owner]...)
	}
	return snap
}

// exportJSON writes the snapshot, gzipped when CompressOutput is set.
// Callers hold at least a read lock.
func (b *Backend) exportJSON() error {
	snap := b.buildSnapshot()

	filename := fmt.Sprintf("horde_%s.json", snap.ExportedAt.Format("20060102_150405"))
	if b.cfg.CompressOutput {
		filename += ".gz"
	}

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(f)
		if err := json.NewEncoder(gz).Encode(snap); err != nil {
			return err
		}
		if err := gz.Close(); err != nil {
			return err
		}
	} else if err := json.NewEncoder(f).Encode(snap); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}
