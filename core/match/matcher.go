// Package match resolves local line items to remote product identities.
package match

import (
	"context"

	"pricesync/core/catalog"
	"pricesync/core/item"
)

// Matcher resolves a line item to zero-or-one remote product.
// It holds no state of its own; lookup caching lives in the catalog client.
type Matcher struct {
	client catalog.Client
}

// New creates a matcher over a catalog client
func New(client catalog.Client) *Matcher {
	return &Matcher{client: client}
}

// Match resolves the item's supplier SKU. NotFound and Ambiguous errors pass
// through untouched; there is no tie-break policy, ambiguity is surfaced.
func (m *Matcher) Match(ctx context.Context, it item.LineItem) (*catalog.ProductRef, error) {
	return m.client.Lookup(ctx, it.SupplierSKU)
}
