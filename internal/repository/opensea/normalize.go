package opensea

import (
	"errors"
	"fmt"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
)

// ErrMalformedOrder indicates an order record whose shape cannot be
// normalized. Normalization is all-or-nothing: one malformed record fails
// the entire fetch, partial listing sets are never emitted.
var ErrMalformedOrder = errors.New("malformed order record")

// orderResponse is the upstream payload envelope. Orders is a pointer so a
// structurally missing "orders" key is distinguishable from an empty array.
type orderResponse struct {
	Orders *[]orderRecord `json:"orders"`
}

type orderRecord struct {
	OrderHash        string       `json:"order_hash"`
	MakerAssetBundle *assetBundle `json:"maker_asset_bundle"`
	CurrentPrice     string       `json:"current_price"`
}

type assetBundle struct {
	Assets *[]asset `json:"assets"`
}

type asset struct {
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

// normalizeOrder converts one raw order record into a Listing. Missing
// display fields take documented fallbacks; the price string is passed
// through unmodified, downstream formatting tolerates unparsable values.
func normalizeOrder(rec orderRecord) (domain.Listing, error) {
	if rec.OrderHash == "" {
		return domain.Listing{}, fmt.Errorf("%w: missing order_hash", ErrMalformedOrder)
	}
	if rec.MakerAssetBundle == nil || rec.MakerAssetBundle.Assets == nil {
		return domain.Listing{}, fmt.Errorf("%w: order %s has no asset collection", ErrMalformedOrder, rec.OrderHash)
	}

	// Display fields come from the first asset. An empty asset array reads
	// every field as absent, so all fallbacks apply.
	var first asset
	if assets := *rec.MakerAssetBundle.Assets; len(assets) > 0 {
		first = assets[0]
	}

	listing := domain.Listing{
		ID:          rec.OrderHash,
		Name:        first.Name,
		Price:       rec.CurrentPrice,
		Image:       first.ImageURL,
		Description: first.Description,
	}
	if listing.Name == "" {
		listing.Name = domain.FallbackName
	}
	if listing.Image == "" {
		listing.Image = domain.FallbackImageURL
	}
	if listing.Description == "" {
		listing.Description = domain.FallbackDescription
	}

	return listing, nil
}
