package reconcile

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"pricesync/core/catalog"
	"pricesync/core/item"
	"pricesync/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeClient implements catalog.Client for orchestrator tests
type fakeClient struct {
	mu sync.Mutex

	refs        map[string]*catalog.ProductRef
	ambiguous   map[string]int
	updateErrs  map[string][]error // popped per call
	updated     []string
	onUpdate    func(remoteID string)
	lookupCalls int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		refs:       map[string]*catalog.ProductRef{},
		ambiguous:  map[string]int{},
		updateErrs: map[string][]error{},
	}
}

func (f *fakeClient) addProduct(sku, id, price string) {
	f.refs[sku] = &catalog.ProductRef{RemoteID: id, SupplierReference: sku, Price: dec(price)}
}

func (f *fakeClient) Lookup(_ context.Context, supplierRef string) (*catalog.ProductRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	if n, ok := f.ambiguous[supplierRef]; ok {
		return nil, errors.Ambiguous(supplierRef, n)
	}
	if ref, ok := f.refs[supplierRef]; ok {
		return ref, nil
	}
	return nil, errors.NotFound(supplierRef)
}

func (f *fakeClient) UpdatePrice(_ context.Context, remoteID string, _ decimal.Decimal) error {
	f.mu.Lock()
	if errs := f.updateErrs[remoteID]; len(errs) > 0 {
		err := errs[0]
		f.updateErrs[remoteID] = errs[1:]
		f.mu.Unlock()
		return err
	}
	f.updated = append(f.updated, remoteID)
	cb := f.onUpdate
	f.mu.Unlock()
	if cb != nil {
		cb(remoteID)
	}
	return nil
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func pricedItem(sku, purchase, sale string) item.LineItem {
	return item.LineItem{SupplierSKU: sku, PurchasePrice: dec(purchase), SalePrice: dec(sale)}
}

// TestRunOutcomePerItem checks one ordered outcome per input item and
// consistent summary counts across mixed dispositions.
func TestRunOutcomePerItem(t *testing.T) {
	client := newFakeClient()
	client.addProduct("REF001", "42", "13.10")
	client.ambiguous["REF003"] = 2
	client.addProduct("REF004", "44", "5.00")
	client.updateErrs["44"] = []error{errors.Newf(errors.TypeTransient, "retries exhausted after 4 attempts")}

	items := []item.LineItem{
		pricedItem("REF001", "12.50", "14.38"),
		pricedItem("REF002", "10.00", "11.50"), // no remote match
		pricedItem("REF003", "10.00", "11.50"), // ambiguous
		pricedItem("REF004", "4.00", "4.60"),   // update fails
	}

	report := New(client, Options{MarginPercent: dec("15")}, nil).Run(context.Background(), items)

	if len(report.Outcomes) != len(items) {
		t.Fatalf("got %d outcomes for %d items", len(report.Outcomes), len(items))
	}
	for i, o := range report.Outcomes {
		if o.SupplierSKU != items[i].SupplierSKU {
			t.Errorf("outcome %d is %s, want %s (order must match input)", i, o.SupplierSKU, items[i].SupplierSKU)
		}
	}

	wantStatus := []Status{StatusUpdated, StatusNotFound, StatusFailed, StatusFailed}
	for i, want := range wantStatus {
		if report.Outcomes[i].Status != want {
			t.Errorf("outcome %d status = %s, want %s (%s)", i, report.Outcomes[i].Status, want, report.Outcomes[i].Detail)
		}
	}

	if report.Outcomes[0].NewPrice == nil || report.Outcomes[0].NewPrice.StringFixed(2) != "14.38" {
		t.Errorf("updated outcome new price = %v, want 14.38", report.Outcomes[0].NewPrice)
	}
	if report.Outcomes[0].OldPrice == nil || report.Outcomes[0].OldPrice.StringFixed(2) != "13.10" {
		t.Errorf("updated outcome old price = %v, want 13.10", report.Outcomes[0].OldPrice)
	}
	if d := report.Outcomes[2].Detail; d == "" || !strings.Contains(d, "matches 2 remote products") {
		t.Errorf("ambiguous outcome detail = %q, want ambiguity named", d)
	}
	if d := report.Outcomes[3].Detail; !strings.Contains(d, "retries exhausted") {
		t.Errorf("failed outcome detail = %q, want retry exhaustion named", d)
	}

	s := report.Summary
	if s.Total() != len(items) {
		t.Errorf("summary total %d != item count %d", s.Total(), len(items))
	}
	if s.UpdatedCount != 1 || s.NotFoundCount != 1 || s.FailedCount != 2 || s.SkippedCount != 0 {
		t.Errorf("summary = %+v", s)
	}
}

// TestRunNoWriteOnNotFound proves a missing match never triggers a write
func TestRunNoWriteOnNotFound(t *testing.T) {
	client := newFakeClient()
	items := []item.LineItem{pricedItem("REF002", "10.00", "11.50")}

	report := New(client, Options{}, nil).Run(context.Background(), items)

	if report.Outcomes[0].Status != StatusNotFound {
		t.Fatalf("status = %s, want not_found", report.Outcomes[0].Status)
	}
	if len(client.updated) != 0 {
		t.Errorf("update was attempted for an unmatched item")
	}
}

// TestRunSkipsNonPositivePrices checks the skip policy
func TestRunSkipsNonPositivePrices(t *testing.T) {
	client := newFakeClient()
	client.addProduct("REF001", "42", "1.00")

	items := []item.LineItem{pricedItem("REF001", "0.00", "0.00")}

	report := New(client, Options{SkipNonPositive: true}, nil).Run(context.Background(), items)

	if report.Outcomes[0].Status != StatusSkipped {
		t.Fatalf("status = %s, want skipped", report.Outcomes[0].Status)
	}
	if client.lookupCalls != 0 {
		t.Error("skipped item must not be looked up")
	}
}

// TestRunCancellation cancels mid-run: processed items keep their outcomes,
// the rest are skipped with a cancellation detail, order intact.
func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	client := newFakeClient()
	for _, sku := range []string{"A", "B", "C", "D"} {
		client.addProduct(sku, "id-"+sku, "1.00")
	}
	client.onUpdate = func(remoteID string) {
		if remoteID == "id-B" {
			cancel()
		}
	}

	items := []item.LineItem{
		pricedItem("A", "1.00", "2.00"),
		pricedItem("B", "1.00", "2.00"),
		pricedItem("C", "1.00", "2.00"),
		pricedItem("D", "1.00", "2.00"),
	}

	report := New(client, Options{}, nil).Run(ctx, items)

	want := []Status{StatusUpdated, StatusUpdated, StatusSkipped, StatusSkipped}
	for i, w := range want {
		if report.Outcomes[i].Status != w {
			t.Errorf("outcome %d status = %s, want %s", i, report.Outcomes[i].Status, w)
		}
	}
	for _, o := range report.Outcomes[2:] {
		if o.Detail != "run cancelled" {
			t.Errorf("skipped outcome detail = %q, want \"run cancelled\"", o.Detail)
		}
	}
	if report.Summary.Total() != len(items) {
		t.Errorf("summary total %d != item count %d", report.Summary.Total(), len(items))
	}
}

// TestRunParallelPreservesOrder runs with a worker pool and checks the
// outcome sequence still matches input order.
func TestRunParallelPreservesOrder(t *testing.T) {
	client := newFakeClient()
	skus := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8"}
	items := make([]item.LineItem, len(skus))
	for i, sku := range skus {
		client.addProduct(sku, "id-"+sku, "1.00")
		items[i] = pricedItem(sku, "1.00", "2.00")
	}

	report := New(client, Options{Parallelism: 4}, nil).Run(context.Background(), items)

	for i, o := range report.Outcomes {
		if o.SupplierSKU != skus[i] {
			t.Fatalf("outcome %d is %s, want %s", i, o.SupplierSKU, skus[i])
		}
		if o.Status != StatusUpdated {
			t.Errorf("outcome %s status = %s (%s)", o.SupplierSKU, o.Status, o.Detail)
		}
	}
	if report.Summary.UpdatedCount != len(items) {
		t.Errorf("updated count = %d, want %d", report.Summary.UpdatedCount, len(items))
	}
}

// TestRunWarnsOnLossPrice checks the warning detail for a manual price
// below purchase price; the update still goes through.
func TestRunWarnsOnLossPrice(t *testing.T) {
	client := newFakeClient()
	client.addProduct("REF001", "42", "15.00")

	it := item.LineItem{SupplierSKU: "REF001", PurchasePrice: dec("12.50")}
	it.SetManualPrice(dec("10.00"))

	report := New(client, Options{}, nil).Run(context.Background(), []item.LineItem{it})

	o := report.Outcomes[0]
	if o.Status != StatusUpdated {
		t.Fatalf("status = %s, want updated (%s)", o.Status, o.Detail)
	}
	if !strings.Contains(o.Detail, "below purchase price") {
		t.Errorf("detail = %q, want loss warning", o.Detail)
	}
}

