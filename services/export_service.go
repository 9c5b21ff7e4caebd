package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pet-game-system/models"
	"pet-game-system/utils"
)

// SnapshotExport is the portable backup format: the snapshot plus
// export metadata.
type SnapshotExport struct {
	Stats      *models.PetStats `json:"stats"`
	ExportDate string           `json:"export_date"`
	Version    string           `json:"version"`
}

// ExportService produces and restores portable snapshot backups, and
// optionally mirrors exports to R2 object storage.
type ExportService struct {
	stats *StatService
}

func NewExportService(stats *StatService) *ExportService {
	return &ExportService{stats: stats}
}

// Export captures the current snapshot with export metadata.
func (e *ExportService) Export(walletID, petID string) *SnapshotExport {
	return &SnapshotExport{
		Stats:      e.stats.Get(walletID, petID),
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Version:    models.SnapshotVersion,
	}
}

// ExportToR2 uploads the backup JSON to object storage and returns its
// public URL. Failures are non-fatal — the caller still has the JSON.
func (e *ExportService) ExportToR2(walletID, petName string, export *SnapshotExport) (string, error) {
	payload, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize export: %w", err)
	}
	url, err := utils.UploadSnapshotBackup(walletID, petName, payload)
	if err != nil {
		return "", err
	}
	log.Printf("☁️ Snapshot backup uploaded: %s", url)
	return url, nil
}

// Import restores a previously exported snapshot onto the pet,
// re-validating every field through the normal update path so gauges
// stay clamped and the level stays derived.
func (e *ExportService) Import(walletID, petID string, payload []byte) (*models.PetStats, error) {
	var export SnapshotExport
	if err := json.Unmarshal(payload, &export); err != nil {
		return nil, fmt.Errorf("failed to decode import payload: %w", err)
	}
	if export.Stats == nil {
		// Tolerate raw snapshots without the export envelope.
		var stats models.PetStats
		if err := json.Unmarshal(payload, &stats); err != nil || stats.CreatedAt == 0 {
			return nil, fmt.Errorf("import payload has no stats")
		}
		export.Stats = &stats
	}

	in := export.Stats
	// Restoring a backup is not a care interaction, so it goes through
	// the system path: clamped and re-derived, but not counted.
	snap := e.stats.SystemUpdate(walletID, petID, func(*models.PetStats) map[string]any {
		return map[string]any{
			"hunger":             in.Hunger,
			"happiness":          in.Happiness,
			"energy":             in.Energy,
			"health":             in.Health,
			"experience":         in.Experience,
			"is_alive":           in.IsAlive,
			"total_interactions": in.TotalInteractions,
			"achievements":       in.Achievements,
		}
	})
	log.Printf("📥 Snapshot imported for %s/%s (level %d)", walletID, petID, snap.Level)
	return snap, nil
}
