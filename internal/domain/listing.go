package domain

import "strings"

// Fallback values used when the upstream marketplace omits optional
// asset fields.
const (
	FallbackName        = "Unnamed NFT"
	FallbackImageURL    = "/images/placeholder-nft.svg"
	FallbackDescription = "No description available"
)

// Listing is the normalized, displayable representation of one purchasable
// digital asset. Listings are immutable once constructed: the normalizer
// produces them fully formed.
type Listing struct {
	// ID is the order hash from the source marketplace, stable and unique
	// within one fetched set.
	ID string `json:"id"`

	// Name is the display name, never empty (FallbackName when absent upstream).
	Name string `json:"name"`

	// Price is the canonical base-unit (wei) integer string. Formatting to
	// ETH happens at the presentation boundary.
	Price string `json:"price"`

	Image       string `json:"image"`
	Description string `json:"description"`
}

// FilterByName returns the subsequence of listings whose name contains term
// as a case-insensitive substring. An empty term returns the input unchanged
// in order.
func FilterByName(listings []Listing, term string) []Listing {
	if term == "" {
		return listings
	}

	needle := strings.ToLower(term)
	matched := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Name), needle) {
			matched = append(matched, l)
		}
	}
	return matched
}
