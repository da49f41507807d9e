// Package prestashop implements the catalog client against a
// PrestaShop-style webservice.
package prestashop

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pricesync/core/catalog"
	"pricesync/internal/errors"
)

// DefaultUserAgent is sent when no user agent is configured. Some hosts
// reject requests carrying default HTTP client signatures.
const DefaultUserAgent = "Mozilla/5.0 pricesync"

// Config configures the client
type Config struct {
	// ShopURL is the shop base URL; the webservice lives under /api
	ShopURL string

	// APIKey is the webservice key, sent as the basic-auth username
	APIKey string

	// SupplierID optionally narrows lookups via the product_suppliers
	// resource when the products filter finds nothing
	SupplierID string

	// UserAgent overrides DefaultUserAgent
	UserAgent string

	// MaxRetries bounds transient-failure retries per call
	MaxRetries int

	// Timeout bounds each remote call
	Timeout time.Duration

	// MethodOverride enables the POST substitution when the host blocks
	// the update verb
	MethodOverride bool
}

// Client talks to one shop for the duration of one run. The lookup cache is
// scoped to the client; build a fresh client per run. Safe for concurrent
// use within that run.
type Client struct {
	cfg    Config
	apiURL string
	http   *http.Client
	send   sendFunc
	log    *zap.Logger

	mu    sync.RWMutex
	cache map[string]*catalog.ProductRef // nil value records a confirmed miss
}

var _ catalog.Client = (*Client)(nil)

// New creates a client for one run
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		cfg:    cfg,
		apiURL: strings.TrimRight(cfg.ShopURL, "/") + "/api",
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    log,
		cache:  make(map[string]*catalog.ProductRef),
	}
	// Verb substitution sits under the retry policy so a transient failure
	// of the substituted request is retried like any other.
	c.send = c.withRetry(withMethodOverride(c.sendDirect, cfg.MethodOverride, log))
	return c
}

// Ping verifies connectivity and credentials against the webservice root
func (c *Client) Ping(ctx context.Context) error {
	resp, body, err := c.do(ctx, &request{method: http.MethodGet, url: c.apiURL})
	if err != nil {
		return err
	}
	return classify(resp.StatusCode, body)
}

// Lookup finds the product for a supplier reference. Results, including
// confirmed misses, are cached for the run.
func (c *Client) Lookup(ctx context.Context, supplierRef string) (*catalog.ProductRef, error) {
	c.mu.RLock()
	ref, hit := c.cache[supplierRef]
	c.mu.RUnlock()
	if hit {
		if ref == nil {
			return nil, errors.NotFound(supplierRef)
		}
		return ref, nil
	}

	ref, err := c.lookupRemote(ctx, supplierRef)
	if err != nil {
		if errors.IsType(err, errors.TypeNotFound) {
			c.store(supplierRef, nil)
		}
		return nil, err
	}
	c.store(supplierRef, ref)
	return ref, nil
}

func (c *Client) store(supplierRef string, ref *catalog.ProductRef) {
	c.mu.Lock()
	c.cache[supplierRef] = ref
	c.mu.Unlock()
}

func (c *Client) lookupRemote(ctx context.Context, supplierRef string) (*catalog.ProductRef, error) {
	q := url.Values{}
	q.Set("display", "[id,supplier_reference,price]")
	q.Set("filter[supplier_reference]", supplierRef)

	resp, body, err := c.do(ctx, &request{method: http.MethodGet, url: c.apiURL + "/products", query: q})
	if err != nil {
		return nil, err
	}
	if err := classify(resp.StatusCode, body); err != nil {
		return nil, err
	}

	refs, err := parseProductList(body, supplierRef)
	if err != nil {
		return nil, err
	}
	switch len(refs) {
	case 1:
		return refs[0], nil
	default:
		if len(refs) > 1 {
			return nil, errors.Ambiguous(supplierRef, len(refs))
		}
	}

	// Fall back to the supplier association table when a supplier is
	// configured; some catalogs only carry the reference there.
	if c.cfg.SupplierID != "" {
		return c.lookupBySupplier(ctx, supplierRef)
	}
	return nil, errors.NotFound(supplierRef)
}

func (c *Client) lookupBySupplier(ctx context.Context, supplierRef string) (*catalog.ProductRef, error) {
	q := url.Values{}
	q.Set("display", "[id,id_product,product_supplier_reference]")
	q.Set("filter[product_supplier_reference]", supplierRef)
	q.Set("filter[id_supplier]", c.cfg.SupplierID)

	resp, body, err := c.do(ctx, &request{method: http.MethodGet, url: c.apiURL + "/product_suppliers", query: q})
	if err != nil {
		return nil, err
	}
	if err := classify(resp.StatusCode, body); err != nil {
		return nil, err
	}

	refs, err := parseProductSupplierList(body, supplierRef)
	if err != nil {
		return nil, err
	}
	switch len(refs) {
	case 0:
		return nil, errors.NotFound(supplierRef)
	case 1:
		return refs[0], nil
	default:
		return nil, errors.Ambiguous(supplierRef, len(refs))
	}
}

// UpdatePrice writes the price through a read-modify-write of the product
// record. The webservice rejects payloads carrying read-only fields, so the
// fetched record is pruned before being sent back.
func (c *Client) UpdatePrice(ctx context.Context, remoteID string, price decimal.Decimal) error {
	endpoint := c.apiURL + "/products/" + url.PathEscape(remoteID)

	resp, body, err := c.do(ctx, &request{method: http.MethodGet, url: endpoint})
	if err != nil {
		return err
	}
	if err := classify(resp.StatusCode, body); err != nil {
		return err
	}

	payload, err := buildUpdatePayload(body, price)
	if err != nil {
		return err
	}

	resp, body, err = c.do(ctx, &request{method: http.MethodPut, url: endpoint, body: payload})
	if err != nil {
		return err
	}
	return classify(resp.StatusCode, body)
}

// do runs one logical request through the layered send policies and drains
// the response body.
func (c *Client) do(ctx context.Context, req *request) (*http.Response, []byte, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, nil, errors.Transient("reading response body", err)
	}
	return resp, body, nil
}
