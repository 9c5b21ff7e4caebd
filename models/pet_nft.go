package models

// PetNFT holds the static cosmetic traits of a minted pet. Dynamic
// stats never live here — the only stats-derived field is IsAlive,
// mirrored one-way (stats → NFT) for marketplace display.
type PetNFT struct {
	TokenID  string `gorm:"primaryKey;type:uuid" json:"token_id"`
	WalletID string `gorm:"index;not null" json:"wallet_id"`
	Name     string `gorm:"not null" json:"name"`

	Species     string `gorm:"type:varchar(64)" json:"species"`
	Color       string `gorm:"type:varchar(32)" json:"color"`
	Personality string `gorm:"type:varchar(32)" json:"personality"`
	Rarity      string `gorm:"type:varchar(32)" json:"rarity"`

	IsAlive bool `gorm:"default:true" json:"is_alive"`

	Timestamps
}
