// Package reconcile drives the per-item match, price, update pipeline.
package reconcile

import (
	"github.com/shopspring/decimal"
)

// Status is the final disposition of one line item
type Status string

const (
	// StatusUpdated means the remote price was written
	StatusUpdated Status = "updated"

	// StatusNotFound means no remote product matched; nothing was written
	StatusNotFound Status = "not_found"

	// StatusFailed means the item failed; the run continued
	StatusFailed Status = "failed"

	// StatusSkipped means the item was intentionally not attempted
	StatusSkipped Status = "skipped"
)

// Outcome records the disposition of one line item. Immutable once created;
// one outcome exists per input item, in input order.
type Outcome struct {
	// SupplierSKU identifies the line item
	SupplierSKU string `json:"supplier_sku"`

	// Status is the final disposition
	Status Status `json:"status"`

	// OldPrice is the remote price read at match time, when exposed
	OldPrice *decimal.Decimal `json:"old_price,omitempty"`

	// NewPrice is the price written on update
	NewPrice *decimal.Decimal `json:"new_price,omitempty"`

	// Detail is the human-readable cause, required unless Status is Updated
	Detail string `json:"detail,omitempty"`
}

func updated(sku string, oldPrice *decimal.Decimal, newPrice decimal.Decimal, detail string) Outcome {
	return Outcome{
		SupplierSKU: sku,
		Status:      StatusUpdated,
		OldPrice:    oldPrice,
		NewPrice:    &newPrice,
		Detail:      detail,
	}
}

func notFound(sku, detail string) Outcome {
	return Outcome{SupplierSKU: sku, Status: StatusNotFound, Detail: detail}
}

func failed(sku, detail string) Outcome {
	return Outcome{SupplierSKU: sku, Status: StatusFailed, Detail: detail}
}

func skipped(sku, detail string) Outcome {
	return Outcome{SupplierSKU: sku, Status: StatusSkipped, Detail: detail}
}
