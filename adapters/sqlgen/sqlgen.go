// Package sqlgen writes the price changes as a SQL script, for operators
// who cannot reach the webservice at all.
package sqlgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pricesync/core/item"
	"pricesync/internal/errors"
)

// Options configures script generation
type Options struct {
	// SupplierID scopes the updates to one supplier's references
	SupplierID string

	// TablePrefix is the shop's table prefix (usually "ps_")
	TablePrefix string

	// MarginPercent is recorded in the script header
	MarginPercent decimal.Decimal
}

// Generate produces a SQL script updating the product price for every item
// with a positive sale price, joined through the supplier reference table.
func Generate(items []item.LineItem, opts Options) (string, error) {
	if opts.SupplierID == "" {
		return "", errors.Config("supplier ID is required for SQL generation")
	}
	prefix := opts.TablePrefix
	if prefix == "" {
		prefix = "ps_"
	}

	included := make([]item.LineItem, 0, len(items))
	for _, it := range items {
		if it.SalePrice.IsPositive() {
			included = append(included, it)
		}
	}
	if len(included) == 0 {
		return "", errors.New(errors.TypeConfig, "no items with a positive sale price")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- Price update generated %s\n", time.Now().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "-- Margin applied: %s%%\n", opts.MarginPercent.String())
	fmt.Fprintf(&b, "-- Items: %d\n", len(included))
	fmt.Fprintf(&b, "-- Supplier ID: %s\n\n", opts.SupplierID)

	for _, it := range included {
		fmt.Fprintf(&b, `UPDATE %[1]sproduct p
JOIN %[1]sproduct_supplier ps ON p.id_product = ps.id_product
SET p.price = %[2]s
WHERE ps.product_supplier_reference = '%[3]s' AND ps.id_supplier = %[4]s;
`,
			prefix, it.SalePrice.String(), escape(it.SupplierSKU), opts.SupplierID)
	}

	b.WriteString("\n-- Propagate to the per-shop price table\n")
	fmt.Fprintf(&b, `UPDATE %[1]sproduct_shop psh
JOIN %[1]sproduct p ON psh.id_product = p.id_product
JOIN %[1]sproduct_supplier ps ON p.id_product = ps.id_product
SET psh.price = p.price
WHERE ps.id_supplier = %[2]s;
`, prefix, opts.SupplierID)

	return b.String(), nil
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
