package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"pricesync/core/item"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// TestComputeSalePrice checks the margin rule with half-up rounding
func TestComputeSalePrice(t *testing.T) {
	cases := []struct {
		purchase string
		margin   string
		want     string
	}{
		{"12.50", "15", "14.38"}, // 14.375 rounds half-up
		{"10.00", "0", "10.00"},
		{"10.00", "-10", "9.00"}, // markdown
		{"0", "15", "0.00"},
		{"99.99", "12", "111.99"}, // 111.9888 rounds down
		{"1.005", "0", "1.01"},    // exact half rounds up
	}

	for _, c := range cases {
		got := ComputeSalePrice(dec(c.purchase), dec(c.margin), 2)
		if got.StringFixed(2) != c.want {
			t.Errorf("ComputeSalePrice(%s, %s%%) = %s, want %s", c.purchase, c.margin, got, c.want)
		}
	}
}

// TestApplyMarginRecomputesDerived checks that derived prices follow the margin
func TestApplyMarginRecomputesDerived(t *testing.T) {
	items := []item.LineItem{
		{SupplierSKU: "A", PurchasePrice: dec("12.50")},
		{SupplierSKU: "B", PurchasePrice: dec("20.00")},
	}

	out := ApplyMargin(items, dec("15"), 2)

	if got := out[0].SalePrice.StringFixed(2); got != "14.38" {
		t.Errorf("item A sale price = %s, want 14.38", got)
	}
	if got := out[1].SalePrice.StringFixed(2); got != "23.00" {
		t.Errorf("item B sale price = %s, want 23.00", got)
	}
}

// TestApplyMarginIdempotent proves reapplying the same margin changes nothing
func TestApplyMarginIdempotent(t *testing.T) {
	items := []item.LineItem{{SupplierSKU: "A", PurchasePrice: dec("12.50")}}

	once := ApplyMargin(items, dec("15"), 2)
	twice := ApplyMargin(once, dec("15"), 2)

	if !once[0].SalePrice.Equal(twice[0].SalePrice) {
		t.Errorf("margin application not idempotent: %s then %s", once[0].SalePrice, twice[0].SalePrice)
	}
}

// TestApplyMarginPreservesOverrides proves a manual price is never recomputed
func TestApplyMarginPreservesOverrides(t *testing.T) {
	it := item.LineItem{SupplierSKU: "A", PurchasePrice: dec("12.50")}
	it.SetManualPrice(dec("9.99"))

	out := ApplyMargin([]item.LineItem{it}, dec("15"), 2)

	if got := out[0].SalePrice.StringFixed(2); got != "9.99" {
		t.Errorf("overridden price was recomputed to %s", got)
	}
	if !out[0].Overridden() {
		t.Error("override state was lost during margin application")
	}
}

// TestApplyMarginDoesNotMutateInput checks the input slice is left alone
func TestApplyMarginDoesNotMutateInput(t *testing.T) {
	items := []item.LineItem{{SupplierSKU: "A", PurchasePrice: dec("10.00")}}

	_ = ApplyMargin(items, dec("50"), 2)

	if !items[0].SalePrice.IsZero() {
		t.Errorf("input slice mutated: sale price %s", items[0].SalePrice)
	}
}
