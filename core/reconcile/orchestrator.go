package reconcile

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pricesync/core/catalog"
	"pricesync/core/item"
	"pricesync/core/match"
	"pricesync/internal/errors"
)

const cancelledDetail = "run cancelled"

// Options configures one reconciliation run
type Options struct {
	// MarginPercent is recorded on the report; pricing itself has already
	// happened before the run starts
	MarginPercent decimal.Decimal

	// Parallelism bounds concurrent item processing; 1 means sequential
	Parallelism int

	// SkipNonPositive skips items whose sale price is zero or negative
	SkipNonPositive bool
}

// Orchestrator runs the per-item pipeline: match, then update. Sale prices
// are final before Run is called; the orchestrator never recomputes them.
// One client instance belongs to one run; an Orchestrator is not re-entrant.
type Orchestrator struct {
	matcher *match.Matcher
	client  catalog.Client
	opts    Options
	log     *zap.Logger
}

// New creates an orchestrator over a catalog client
func New(client catalog.Client, opts Options, log *zap.Logger) *Orchestrator {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		matcher: match.New(client),
		client:  client,
		opts:    opts,
		log:     log,
	}
}

// Run processes every item and returns one outcome per item, in input order.
// A single item's failure never aborts the run. Cancelling the context stops
// new remote calls promptly; unattempted items are reported as skipped.
func (o *Orchestrator) Run(ctx context.Context, items []item.LineItem) *Report {
	start := time.Now()
	outcomes := make([]Outcome, len(items))

	if o.opts.Parallelism == 1 {
		for i, it := range items {
			if ctx.Err() != nil {
				outcomes[i] = skipped(it.SupplierSKU, cancelledDetail)
				continue
			}
			outcomes[i] = o.processOne(ctx, it)
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(o.opts.Parallelism)
		for i, it := range items {
			i, it := i, it
			g.Go(func() error {
				if ctx.Err() != nil {
					outcomes[i] = skipped(it.SupplierSKU, cancelledDetail)
					return nil
				}
				outcomes[i] = o.processOne(ctx, it)
				return nil
			})
		}
		_ = g.Wait()
	}

	report := &Report{
		RunID:         uuid.NewString(),
		StartedAt:     start,
		Duration:      time.Since(start),
		MarginPercent: o.opts.MarginPercent,
		Summary:       Summarize(outcomes),
		Outcomes:      outcomes,
	}

	o.log.Info("run finished",
		zap.String("run_id", report.RunID),
		zap.Int("items", len(items)),
		zap.Int("updated", report.Summary.UpdatedCount),
		zap.Int("not_found", report.Summary.NotFoundCount),
		zap.Int("failed", report.Summary.FailedCount),
		zap.Int("skipped", report.Summary.SkippedCount),
		zap.Duration("duration", report.Duration),
	)
	return report
}

// cancelled reports whether err stems from the run being aborted rather than
// from the item itself.
func cancelled(err error) bool {
	return errors.IsType(err, errors.TypeCancelled) || stderrors.Is(err, context.Canceled)
}

func (o *Orchestrator) processOne(ctx context.Context, it item.LineItem) Outcome {
	sku := it.SupplierSKU

	if o.opts.SkipNonPositive && !it.SalePrice.IsPositive() {
		return skipped(sku, "sale price is zero or negative")
	}

	ref, err := o.matcher.Match(ctx, it)
	if err != nil {
		switch {
		case errors.IsType(err, errors.TypeNotFound):
			o.log.Debug("no remote match", zap.String("sku", sku))
			return notFound(sku, err.Error())
		case cancelled(err):
			return skipped(sku, cancelledDetail)
		default:
			o.log.Warn("match failed", zap.String("sku", sku), zap.Error(err))
			return failed(sku, err.Error())
		}
	}

	var oldPrice *decimal.Decimal
	if !ref.Price.IsZero() {
		p := ref.Price
		oldPrice = &p
	}

	if err := o.client.UpdatePrice(ctx, ref.RemoteID, it.SalePrice); err != nil {
		if cancelled(err) {
			return skipped(sku, cancelledDetail)
		}
		o.log.Warn("update failed", zap.String("sku", sku), zap.Error(err))
		return failed(sku, err.Error())
	}

	detail := ""
	if it.Overridden() && it.SalePrice.LessThan(it.PurchasePrice) {
		detail = "warning: manual price is below purchase price"
	}

	o.log.Info("price updated",
		zap.String("sku", sku),
		zap.String("remote_id", ref.RemoteID),
		zap.String("new_price", it.SalePrice.String()),
	)
	return updated(sku, oldPrice, it.SalePrice, detail)
}
