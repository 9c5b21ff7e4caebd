package services

import (
	"testing"

	"pet-game-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNFTRegistry(t *testing.T) *NFTRegistry {
	db := newTestDB(t, &models.PetNFT{})
	return NewNFTRegistry(db)
}

func TestMintDefaults(t *testing.T) {
	registry := newTestNFTRegistry(t)

	nft, err := registry.Mint(MintRequest{WalletID: "0xabc"})
	require.NoError(t, err)
	assert.NotEmpty(t, nft.TokenID)
	assert.Equal(t, "Digital Pet", nft.Species)
	assert.Equal(t, "blue", nft.Color)
	assert.Equal(t, "Friendly", nft.Personality)
	assert.Equal(t, RarityCommon, nft.Rarity)
	assert.True(t, nft.IsAlive)
	assert.Contains(t, nft.Name, "Digital Pet #")

	loaded, err := registry.Get(nft.TokenID)
	require.NoError(t, err)
	assert.Equal(t, nft.Name, loaded.Name)
}

func TestMintRequiresWallet(t *testing.T) {
	registry := newTestNFTRegistry(t)

	_, err := registry.Mint(MintRequest{Name: "Nova"})
	assert.Error(t, err)
}

func TestMintKeepsChosenTraits(t *testing.T) {
	registry := newTestNFTRegistry(t)

	nft, err := registry.Mint(MintRequest{
		WalletID:    "0xabc",
		Name:        "Nova",
		Species:     "Star Dragon",
		Color:       "golden",
		Personality: "Legendary",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nova", nft.Name)
	assert.Equal(t, "Star Dragon", nft.Species)
	// golden(15) + Legendary(25) = 40
	assert.Equal(t, RarityEpic, nft.Rarity)
}

func TestForWallet(t *testing.T) {
	registry := newTestNFTRegistry(t)

	for i := 0; i < 3; i++ {
		_, err := registry.Mint(MintRequest{WalletID: "0xabc"})
		require.NoError(t, err)
	}
	_, err := registry.Mint(MintRequest{WalletID: "0xdef"})
	require.NoError(t, err)

	nfts, err := registry.ForWallet("0xabc")
	require.NoError(t, err)
	assert.Len(t, nfts, 3)
}

func TestSetAliveFlag(t *testing.T) {
	registry := newTestNFTRegistry(t)

	nft, err := registry.Mint(MintRequest{WalletID: "0xabc"})
	require.NoError(t, err)

	require.NoError(t, registry.SetAliveFlag(nft.TokenID, false))
	loaded, err := registry.Get(nft.TokenID)
	require.NoError(t, err)
	assert.False(t, loaded.IsAlive)

	// Mirroring for pets without a minted record is a no-op.
	require.NoError(t, registry.SetAliveFlag("missing-token", false))
}

func TestComputeRarityTiers(t *testing.T) {
	base := &models.PetNFT{Color: "blue", Personality: "Friendly"}
	assert.Equal(t, RarityCommon, ComputeRarity(base, nil))

	silver := &models.PetNFT{Color: "silver"}
	assert.Equal(t, RarityUncommon, ComputeRarity(silver, nil))

	// Level 20 satisfies both level thresholds: 30+15.
	veteran := &models.PetStats{Level: 20}
	assert.Equal(t, RarityEpic, ComputeRarity(base, veteran))

	maxed := &models.PetStats{Level: 20, Experience: 2000, TotalInteractions: 500}
	assert.Equal(t, RarityLegendary, ComputeRarity(base, maxed))
}

func TestComputeShine(t *testing.T) {
	base := &models.PetNFT{Color: "blue", Personality: "Friendly"}
	assert.Equal(t, "None", ComputeShine(base, nil))

	// Level 5 alone: Bronze.
	assert.Equal(t, "Bronze", ComputeShine(base, &models.PetStats{Level: 5}))

	// Level 15 + perfect condition: 30+15+15+25 = 85 → Rainbow.
	pristine := &models.PetStats{Level: 15, Health: 100, Happiness: 100, Energy: 100}
	assert.Equal(t, "Rainbow", ComputeShine(base, pristine))
}
