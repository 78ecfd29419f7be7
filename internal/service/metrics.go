package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// listingFetchesTotal counts catalog retrievals against the listings upstream.
	listingFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_listing_fetches_total",
			Help: "Total number of listing catalog fetches, labeled by result",
		},
		[]string{"result"},
	)

	// walletConnectsTotal counts wallet connect attempts.
	walletConnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_wallet_connects_total",
			Help: "Total number of wallet connect attempts, labeled by result",
		},
		[]string{"result"},
	)
)
