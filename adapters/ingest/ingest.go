// Package ingest loads supplier price lists into normalized line items.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"pricesync/core/item"
	"pricesync/internal/errors"
)

// Columns maps logical fields to supplier-file column headers.
// Only SKU and Price are required to exist in the file.
type Columns struct {
	SKU          string
	Article      string
	Price        string
	Manufacturer string
	Availability string
	Group        string
}

// Load reads a supplier price list (.csv, .xlsx or .xlsm) and returns line
// items in file order plus row-level warnings for rows that were dropped.
// Duplicate SKU handling is the caller's concern (item.Normalize).
func Load(path string, cols Columns) ([]item.LineItem, []string, error) {
	var rows [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	default:
		return nil, nil, errors.Newf(errors.TypeIngest, "unsupported price list format %q", ext)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errors.New(errors.TypeIngest, "price list is empty")
	}

	idx, err := headerIndex(rows[0], cols)
	if err != nil {
		return nil, nil, err
	}

	var items []item.LineItem
	var warnings []string
	for n, row := range rows[1:] {
		it, warn := parseRow(row, idx)
		if warn != "" {
			warnings = append(warnings, fmt.Sprintf("row %d: %s", n+2, warn))
			continue
		}
		items = append(items, it)
	}
	return items, warnings, nil
}

// columnIndex locates each configured column in the header row.
// Optional columns that are absent resolve to -1.
type columnIndex struct {
	sku, article, price, manufacturer, availability, group int
}

func headerIndex(header []string, cols Columns) (columnIndex, error) {
	find := func(name string) int {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i
			}
		}
		return -1
	}

	idx := columnIndex{
		sku:          find(cols.SKU),
		article:      find(cols.Article),
		price:        find(cols.Price),
		manufacturer: find(cols.Manufacturer),
		availability: find(cols.Availability),
		group:        find(cols.Group),
	}

	var missing []string
	if idx.sku < 0 {
		missing = append(missing, cols.SKU)
	}
	if idx.price < 0 {
		missing = append(missing, cols.Price)
	}
	if len(missing) > 0 {
		return idx, errors.Newf(errors.TypeIngest, "missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx columnIndex) (item.LineItem, string) {
	sku := cell(row, idx.sku)
	if sku == "" {
		return item.LineItem{}, "empty supplier SKU"
	}

	raw := cell(row, idx.price)
	if raw == "" {
		return item.LineItem{}, fmt.Sprintf("%s: no purchase price", sku)
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return item.LineItem{}, fmt.Sprintf("%s: unreadable purchase price %q", sku, raw)
	}
	if price.IsNegative() {
		return item.LineItem{}, fmt.Sprintf("%s: negative purchase price %s", sku, price)
	}

	return item.LineItem{
		SupplierSKU:   sku,
		Article:       cell(row, idx.article),
		Manufacturer:  cell(row, idx.manufacturer),
		ProductGroup:  cell(row, idx.group),
		Available:     cell(row, idx.availability) == "Available",
		PurchasePrice: price,
		PriceState:    item.PriceDerived,
	}, ""
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Ingest("opening price list", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Ingest("reading CSV price list", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Ingest("opening price list", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.TypeIngest, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Ingest("reading worksheet", err)
	}
	return rows, nil
}
