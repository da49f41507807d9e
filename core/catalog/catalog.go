// Package catalog defines the remote catalog client contract.
// Implementations live under adapters; the core never sees transport details
// such as the verb-override substitution.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductRef identifies one remote product matched by supplier reference.
// Refs are owned by the client's per-run lookup cache and are never persisted.
type ProductRef struct {
	// RemoteID is the opaque identifier assigned by the remote system
	RemoteID string `json:"remote_id"`

	// SupplierReference is the remote field compared against the local SKU
	SupplierReference string `json:"supplier_reference"`

	// Price is the current remote price when the read endpoint exposes it,
	// zero otherwise
	Price decimal.Decimal `json:"price"`
}

// Client reads and writes the remote catalog.
//
// Lookup returns a NotFound error (internal/errors.TypeNotFound) for an empty
// result set and an Ambiguous error (TypeAmbiguous) when more than one record
// matches; ambiguity is a data-integrity problem and is never resolved by
// picking one.
//
// UpdatePrice reports transient failures only after the retry budget is
// exhausted. A host that blocks the update verb is handled inside the
// implementation and is invisible here on success.
type Client interface {
	Lookup(ctx context.Context, supplierRef string) (*ProductRef, error)
	UpdatePrice(ctx context.Context, remoteID string, price decimal.Decimal) error

	// Ping verifies connectivity and credentials before a run starts
	Ping(ctx context.Context) error
}
