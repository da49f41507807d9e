package prestashop

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"pricesync/core/catalog"
	"pricesync/internal/errors"
)

// readOnlyFields are product fields the webservice refuses on write.
// They are pruned from the fetched record before it is sent back.
var readOnlyFields = []string{
	"manufacturer_name",
	"quantity",
	"position_in_category",
	"type",
	"date_add",
	"date_upd",
	"associations",
}

// parseProductList extracts product refs from a filtered products response
func parseProductList(body []byte, supplierRef string) ([]*catalog.ProductRef, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, errors.Wrap(errors.TypeValidation, "malformed products response", err)
	}

	var refs []*catalog.ProductRef
	for _, el := range doc.FindElements("//products/product") {
		ref := &catalog.ProductRef{
			RemoteID:          childText(el, "id"),
			SupplierReference: supplierRef,
		}
		if p := childText(el, "price"); p != "" {
			if price, err := decimal.NewFromString(p); err == nil {
				ref.Price = price
			}
		}
		if ref.RemoteID == "" {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// parseProductSupplierList extracts product refs from a product_suppliers
// response. The association record carries no price.
func parseProductSupplierList(body []byte, supplierRef string) ([]*catalog.ProductRef, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, errors.Wrap(errors.TypeValidation, "malformed product_suppliers response", err)
	}

	var refs []*catalog.ProductRef
	for _, el := range doc.FindElements("//product_suppliers/product_supplier") {
		id := childText(el, "id_product")
		if id == "" {
			continue
		}
		refs = append(refs, &catalog.ProductRef{
			RemoteID:          id,
			SupplierReference: supplierRef,
		})
	}
	return refs, nil
}

// buildUpdatePayload takes a fetched product record, strips the read-only
// fields, sets the price, and re-serializes the document.
func buildUpdatePayload(body []byte, price decimal.Decimal) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, errors.Wrap(errors.TypeValidation, "malformed product record", err)
	}

	product := doc.FindElement("//product")
	if product == nil {
		return nil, errors.Validation("product record has no product element")
	}

	for _, field := range readOnlyFields {
		if el := product.FindElement(field); el != nil {
			product.RemoveChild(el)
		}
	}

	priceEl := product.FindElement("price")
	if priceEl == nil {
		priceEl = product.CreateElement("price")
	}
	priceEl.SetText(price.String())

	return doc.WriteToBytes()
}

// parseErrorMessage pulls the server's message out of an error response,
// if the body is the webservice's XML error envelope.
func parseErrorMessage(body []byte) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return ""
	}
	if msg := doc.FindElement("//errors/error/message"); msg != nil {
		return strings.TrimSpace(msg.Text())
	}
	return ""
}

func childText(el *etree.Element, name string) string {
	if child := el.FindElement(name); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}
