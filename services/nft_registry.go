package services

import (
	"errors"
	"fmt"
	"log"

	"pet-game-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rarity tiers in ascending order.
const (
	RarityCommon    = "Common"
	RarityUncommon  = "Uncommon"
	RarityRare      = "Rare"
	RarityEpic      = "Epic"
	RarityLegendary = "Legendary"
)

// NFTRegistry owns the cosmetic trait records. Stats and cosmetics are
// separate entities: the only stats-derived field here is the alive
// flag, mirrored one-way for marketplace display.
type NFTRegistry struct {
	DB *gorm.DB
}

func NewNFTRegistry(db *gorm.DB) *NFTRegistry {
	return &NFTRegistry{DB: db}
}

// MintRequest carries the cosmetic choices for a new pet.
type MintRequest struct {
	WalletID    string `json:"wallet_id"`
	Name        string `json:"name"`
	Species     string `json:"species"`
	Color       string `json:"color"`
	Personality string `json:"personality"`
}

// Mint creates a new cosmetic record with a fresh token id.
func (r *NFTRegistry) Mint(req MintRequest) (*models.PetNFT, error) {
	if req.WalletID == "" {
		return nil, errors.New("wallet required to mint")
	}

	nft := models.PetNFT{
		TokenID:     uuid.NewString(),
		WalletID:    req.WalletID,
		Species:     defaultStr(req.Species, "Digital Pet"),
		Color:       defaultStr(req.Color, "blue"),
		Personality: defaultStr(req.Personality, "Friendly"),
		IsAlive:     true,
	}
	nft.Name = req.Name
	if nft.Name == "" {
		nft.Name = fmt.Sprintf("%s #%.8s", nft.Species, nft.TokenID)
	}
	nft.Rarity = ComputeRarity(&nft, nil)

	if err := r.DB.Create(&nft).Error; err != nil {
		return nil, fmt.Errorf("failed to mint pet: %w", err)
	}
	log.Printf("✨ Minted %s (%s, %s) for %s", nft.Name, nft.Species, nft.Rarity, req.WalletID)
	return &nft, nil
}

// Get fetches cosmetic traits by token id.
func (r *NFTRegistry) Get(tokenID string) (*models.PetNFT, error) {
	var nft models.PetNFT
	if err := r.DB.First(&nft, "token_id = ?", tokenID).Error; err != nil {
		return nil, err
	}
	return &nft, nil
}

// ForWallet lists every pet owned by a wallet.
func (r *NFTRegistry) ForWallet(walletID string) ([]models.PetNFT, error) {
	var nfts []models.PetNFT
	err := r.DB.Where("wallet_id = ?", walletID).Order("created_at ASC").Find(&nfts).Error
	return nfts, err
}

// SetAliveFlag mirrors the alive state onto the cosmetic record. This
// is the only write path from stats into the registry.
func (r *NFTRegistry) SetAliveFlag(tokenID string, alive bool) error {
	res := r.DB.Model(&models.PetNFT{}).Where("token_id = ?", tokenID).Update("is_alive", alive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Pets without a minted NFT have nothing to mirror.
		return nil
	}
	return nil
}

// ComputeRarity scores cosmetics plus (optionally) live stats into a
// rarity tier for marketplace display.
func ComputeRarity(nft *models.PetNFT, stats *models.PetStats) string {
	score := 0
	if nft.Color == "golden" {
		score += 15
	}
	if nft.Color == "silver" {
		score += 10
	}
	if nft.Personality == "Legendary" {
		score += 25
	}
	if stats != nil {
		if stats.Level >= 20 {
			score += 30
		}
		if stats.Level >= 10 {
			score += 15
		}
		if stats.Experience >= 2000 {
			score += 20
		}
		if stats.TotalInteractions >= 500 {
			score += 15
		}
	}
	switch {
	case score >= 60:
		return RarityLegendary
	case score >= 40:
		return RarityEpic
	case score >= 20:
		return RarityRare
	case score >= 10:
		return RarityUncommon
	default:
		return RarityCommon
	}
}

// ComputeShine grades a pet's sheen from level, condition and rarity.
func ComputeShine(nft *models.PetNFT, stats *models.PetStats) string {
	score := 0
	if stats != nil {
		switch {
		case stats.Level >= 25:
			score += 50
		case stats.Level >= 15:
			score += 30
		case stats.Level >= 10:
			score += 20
		case stats.Level >= 5:
			score += 10
		}
		if stats.Health >= 95 {
			score += 15
		}
		if stats.Happiness >= 95 {
			score += 15
		}
		if stats.Health >= 95 && stats.Happiness >= 95 && stats.Energy >= 95 {
			score += 25
		}
	}
	switch ComputeRarity(nft, stats) {
	case RarityLegendary:
		score += 40
	case RarityEpic:
		score += 25
	case RarityRare:
		score += 15
	case RarityUncommon:
		score += 5
	}
	switch {
	case score >= 80:
		return "Rainbow"
	case score >= 60:
		return "Diamond"
	case score >= 40:
		return "Gold"
	case score >= 20:
		return "Silver"
	case score >= 10:
		return "Bronze"
	default:
		return "None"
	}
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
