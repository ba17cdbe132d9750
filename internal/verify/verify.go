// Package verify runs provider validations: a registry lookup and a license
// document extraction in parallel, reconciled into one report.
package verify

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/provider-verify/internal/model"
	"github.com/sells-group/provider-verify/internal/ocr"
	"github.com/sells-group/provider-verify/internal/reconcile"
	"github.com/sells-group/provider-verify/internal/resilience"
	"github.com/sells-group/provider-verify/internal/roster"
)

// RegistryLookup queries the authoritative registry by NPI.
type RegistryLookup interface {
	Lookup(ctx context.Context, id string) model.LookupResult
}

// DocumentExtractor recovers text and a license number from a document.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, data []byte) (*ocr.Extraction, error)
}

// Result is the outcome of one validation run.
type Result struct {
	RunID      string                     `json:"run_id"`
	Input      model.ProviderRecord       `json:"input"`
	Registry   model.LookupResult         `json:"registry"`
	Document   model.LookupResult         `json:"document"`
	Extraction *ocr.Extraction            `json:"extraction,omitempty"`
	Report     model.ReconciliationReport `json:"report"`
	DurationMs int64                      `json:"duration_ms"`
}

// Runner sequences validation runs. It holds no per-run state and is safe
// for concurrent use.
type Runner struct {
	registry  RegistryLookup
	extractor DocumentExtractor
	retry     resilience.RetryConfig
	readFile  func(string) ([]byte, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithRetry allows up to attempts registry lookups when a lookup fails
// transiently. Values below 2 keep the single attempt default.
func WithRetry(attempts int) Option {
	return func(r *Runner) {
		r.retry = resilience.WithAttempts(attempts)
		r.retry.OnRetry = resilience.RetryLogger("registry", "lookup")
	}
}

// WithFileReader replaces os.ReadFile for loading license documents.
func WithFileReader(fn func(string) ([]byte, error)) Option {
	return func(r *Runner) { r.readFile = fn }
}

// New creates a Runner.
func New(reg RegistryLookup, ext DocumentExtractor, opts ...Option) *Runner {
	r := &Runner{
		registry:  reg,
		extractor: ext,
		retry:     resilience.SingleAttempt(),
		readFile:  os.ReadFile,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run validates one roster row. Source failures are folded into the report;
// Run itself never fails.
func (r *Runner) Run(ctx context.Context, row roster.Row) *Result {
	start := time.Now()
	res := &Result{
		RunID: uuid.New().String(),
		Input: row.Record,
	}
	log := zap.L().With(
		zap.String("run_id", res.RunID),
		zap.String("npi", row.Record.NPI),
	)
	log.Info("verify: starting run", zap.String("provider", row.Record.Name))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res.Registry = r.lookup(gCtx, row.Record.NPI)
		return nil
	})

	g.Go(func() error {
		res.Document, res.Extraction = r.extract(gCtx, row.LicensePDF)
		return nil
	})

	_ = g.Wait()

	res.Report = reconcile.Reconcile(row.Record, res.Registry, res.Document)
	res.DurationMs = time.Since(start).Milliseconds()

	log.Info("verify: run complete",
		zap.String("registry", string(res.Registry.Status)),
		zap.String("document", string(res.Document.Status)),
		zap.Int("discrepancies", len(res.Report.Discrepancies)),
		zap.String("confidence", res.Report.ConfidencePercent()),
		zap.Int64("duration_ms", res.DurationMs),
	)
	return res
}

func (r *Runner) lookup(ctx context.Context, npi string) model.LookupResult {
	if r.registry == nil {
		return model.NotFound("verify: no registry configured")
	}
	res, _ := resilience.DoVal(ctx, r.retry, func(ctx context.Context) (model.LookupResult, error) {
		lr := r.registry.Lookup(ctx, npi)
		if lr.Status != model.LookupTransient {
			return lr, nil
		}
		if lr.Err == nil {
			return lr, eris.New(lr.Reason)
		}
		return lr, lr.Err
	})
	if res.Status == "" {
		// Cancelled while backing off between attempts.
		return model.TransientError("", eris.Wrap(ctx.Err(), "verify: registry lookup"))
	}
	return res
}

func (r *Runner) extract(ctx context.Context, path string) (model.LookupResult, *ocr.Extraction) {
	if path == "" {
		return model.NotFound("verify: no license document"), nil
	}
	if r.extractor == nil {
		return model.NotFound("verify: no document extractor configured"), nil
	}

	data, err := r.readFile(path)
	if err != nil {
		return model.TransientError("", eris.Wrapf(err, "verify: read %s", path)), nil
	}

	x, err := r.extractor.ExtractText(ctx, data)
	if err != nil {
		if ocr.IsMalformed(err) {
			zap.L().Warn("verify: malformed license document", zap.String("path", path), zap.Error(err))
		}
		return ocr.ToLookupResult(nil, err), nil
	}
	return ocr.ToLookupResult(x, nil), x
}

// RunAll validates rows with at most concurrency runs in flight. Results are
// returned in row order.
func (r *Runner) RunAll(ctx context.Context, rows []roster.Row, concurrency int) []*Result {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*Result, len(rows))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, row := range rows {
		g.Go(func() error {
			results[i] = r.Run(gCtx, row)
			return nil
		})
	}
	_ = g.Wait()

	var clean int
	for _, res := range results {
		if len(res.Report.Discrepancies) == 0 && res.Report.ConfidenceScore == 1 {
			clean++
		}
	}
	zap.L().Info("verify: batch complete",
		zap.Int("total", len(rows)),
		zap.Int("clean", clean),
		zap.Int("flagged", len(rows)-clean),
	)
	return results
}
