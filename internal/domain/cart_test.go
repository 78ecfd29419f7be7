package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zelda() Listing {
	return Listing{
		ID:          "0xaaa",
		Name:        "Zelda Coin",
		Price:       "1500000000000000000", // 1.5 ETH
		Image:       "https://img.example.com/zelda.png",
		Description: "a coin",
	}
}

func mario() Listing {
	return Listing{
		ID:    "0xbbb",
		Name:  "Mario Star",
		Price: "2000000000000000000", // 2 ETH
	}
}

// ============================================================================
// AddListing
// ============================================================================

func TestAddListing_NewItem(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(zelda())

	require.Len(t, c.Items, 1)
	assert.Equal(t, "0xaaa", c.Items[0].ID)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestAddListing_SameIDMergesQuantity(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(zelda())
	c.AddListing(zelda())

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAddListing_PreservesInsertionOrder(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(zelda())
	c.AddListing(mario())
	c.AddListing(zelda())

	require.Len(t, c.Items, 2)
	assert.Equal(t, "0xaaa", c.Items[0].ID)
	assert.Equal(t, "0xbbb", c.Items[1].ID)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 1, c.Items[1].Quantity)
}

// ============================================================================
// RemoveListing
// ============================================================================

func TestRemoveListing_Existing(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(zelda())
	c.AddListing(mario())

	c.RemoveListing("0xaaa")

	require.Len(t, c.Items, 1)
	assert.Equal(t, "0xbbb", c.Items[0].ID)
}

func TestRemoveListing_AbsentIsNoOp(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(zelda())

	c.RemoveListing("0xzzz")

	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

// ============================================================================
// SetQuantity
// ============================================================================

func TestSetQuantity_UpdatesExisting(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(zelda())

	c.SetQuantity("0xaaa", 5)

	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(zelda())

	c.SetQuantity("0xaaa", 0)

	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.TotalItems())
}

func TestSetQuantity_NegativeRemoves(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(zelda())

	c.SetQuantity("0xaaa", -3)

	assert.Empty(t, c.Items)
}

func TestSetQuantity_AbsentNeverCreates(t *testing.T) {
	c := NewCart("sess-1")

	c.SetQuantity("0xzzz", 7)

	assert.Empty(t, c.Items)
}

// ============================================================================
// Totals
// ============================================================================

func TestTotalItems(t *testing.T) {
	c := NewCart("sess-1")
	assert.Equal(t, 0, c.TotalItems())

	c.AddListing(zelda())
	c.AddListing(zelda())
	c.AddListing(mario())

	assert.Equal(t, 3, c.TotalItems())
}

func TestTotalWei_SumsPriceTimesQuantity(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(zelda()) // 1.5 ETH
	c.AddListing(zelda()) // qty 2
	c.AddListing(mario()) // 2 ETH

	// 1.5*2 + 2*1 = 5 ETH
	want, _ := new(big.Int).SetString("5000000000000000000", 10)
	assert.Equal(t, 0, c.TotalWei().Cmp(want))
	assert.Equal(t, "5.0000", FormatEtherWei(c.TotalWei()))
}

func TestTotalWei_UnparsablePriceContributesZero(t *testing.T) {
	c := NewCart("sess-1")
	c.AddListing(mario())
	c.AddListing(Listing{ID: "0xbad", Name: "Broken", Price: "not-a-number"})
	c.SetQuantity("0xbad", 3)

	want, _ := new(big.Int).SetString("2000000000000000000", 10)
	assert.Equal(t, 0, c.TotalWei().Cmp(want))
}

func TestTotalWei_EmptyCart(t *testing.T) {
	c := NewCart("sess-1")
	assert.Equal(t, 0, c.TotalWei().Sign())
}
