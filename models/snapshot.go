package models

// PetSnapshot is one durable key-value row holding a serialized
// PetStats payload. Key layout: pet_stats:{walletId}:{petId}, falling
// back to pet_stats:default when no wallet is connected.
type PetSnapshot struct {
	Key      string `gorm:"primaryKey;type:varchar(256)" json:"key"`
	WalletID string `gorm:"index" json:"wallet_id"`
	PetID    string `gorm:"index" json:"pet_id"`

	Payload   string `gorm:"type:text;not null" json:"payload"` // PetStats as JSON
	Version   string `gorm:"type:varchar(16);not null" json:"version"`
	LastSaved int64  `gorm:"not null" json:"last_saved"` // epoch millis

	Timestamps
}

// WalletSnapshot is the per-wallet aggregate backup: petId → PetStats
// snapshot, serialized as one JSON object. Read on the fallback path
// when the primary per-pet row is missing.
type WalletSnapshot struct {
	WalletID  string `gorm:"primaryKey;type:varchar(128)" json:"wallet_id"`
	Payload   string `gorm:"type:text;not null" json:"payload"`
	LastSaved int64  `gorm:"not null" json:"last_saved"`

	Timestamps
}

// SnapshotVersion tags every write so future loaders can detect format drift.
const SnapshotVersion = "1.0"
