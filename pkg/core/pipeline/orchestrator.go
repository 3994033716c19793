// Package pipeline drives a batch of filing documents through extraction,
// classification, anomaly checks, and record building. Documents are
// independent: one worker per document up to the configured parallelism, and
// a failing document never stops the batch.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"insider_filings/pkg/core/alerts"
	"insider_filings/pkg/core/announce"
	"insider_filings/pkg/core/anomaly"
	"insider_filings/pkg/core/classify"
	"insider_filings/pkg/core/company"
	"insider_filings/pkg/core/config"
	"insider_filings/pkg/core/marketref"
	"insider_filings/pkg/core/record"
	"insider_filings/pkg/core/textextract"
	"insider_filings/pkg/models"
)

// Document is one input: the text dump of a filing plus its filename.
type Document struct {
	Filename string
	Text     string
}

// RecordSink receives completed records. The pgx repository satisfies this;
// tests use an in-memory sink.
type RecordSink interface {
	InsertRecord(ctx context.Context, rec *models.FilingRecord) error
}

// Orchestrator wires the batch snapshots and collaborators together.
type Orchestrator struct {
	Config    config.Config
	Directory *company.Directory
	Prices    *marketref.Snapshot
	Announce  *announce.Index
	Alerts    *alerts.Manager
	Sink      RecordSink

	now func() time.Time
}

func New(cfg config.Config, dir *company.Directory) *Orchestrator {
	return &Orchestrator{
		Config:    cfg,
		Directory: dir,
		Alerts:    alerts.NewManager(),
		now:       time.Now,
	}
}

// Result summarizes one batch run.
type Result struct {
	Records  []*models.FilingRecord
	Inserted int
	Skipped  int
}

// Run processes every document. The batch always completes: per-document
// failures become fatal alerts, not batch errors.
func (o *Orchestrator) Run(ctx context.Context, docs []Document) *Result {
	start := o.now()
	res := &Result{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers())

	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			rec := o.processDocument(ctx, doc)
			mu.Lock()
			defer mu.Unlock()
			if rec == nil {
				res.Skipped++
				return nil
			}
			res.Records = append(res.Records, rec)
			if rec.SkipReason == "" {
				res.Inserted++
			} else {
				res.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("[Pipeline] processed %d document(s): %d record(s), %d skipped in %s",
		len(docs), res.Inserted, res.Skipped, o.now().Sub(start).Round(time.Millisecond))
	return res
}

// processDocument runs the per-document flow. It returns nil when the
// document yields no record at all.
func (o *Orchestrator) processDocument(ctx context.Context, doc Document) *models.FilingRecord {
	if doc.Text == "" {
		o.Alerts.Log("parser", SkipNoText, models.SeverityFatal,
			"no text extracted from document", doc.Filename, nil)
		return nil
	}

	text := textextract.NewDocument(doc.Text).SliceToEnglish()
	info := ExtractFiling(text, doc.Filename, o.Directory, o.Config)
	if info.Skipped() {
		o.Alerts.Log("parser", info.SkipReason, models.SeverityFatal,
			"document skipped during extraction", doc.Filename, o.skipContext(info))
		return nil
	}

	if info.Symbol == "" {
		o.Alerts.Log("resolver", CodeSymbolMissing, models.SeverityWarning,
			"symbol could not be resolved from issuer name", doc.Filename,
			map[string]interface{}{
				"company_name_raw": info.CompanyNameRaw,
				"suggestions":      o.Directory.Suggest(info.CompanyNameRaw, o.Config.Resolver.SuggestTopK),
			})
	}

	flags := classify.DetectFlags(text.Text())
	auditFlags := o.checkAnomalies(info)

	// declared wording vs holdings movement, observability only
	inferred := classify.InferDirection(info.HoldingBefore, info.HoldingAfter, info.PctBefore, info.PctAfter)
	if flag, ok := classify.MismatchFlag(info.DeclaredType, inferred,
		info.HoldingBefore, info.HoldingAfter, info.PctBefore, info.PctAfter); ok {
		auditFlags = append(auditFlags, flag)
	}

	var meta *models.AnnouncementMeta
	if o.Announce != nil {
		meta, _ = o.Announce.Resolve(doc.Filename)
	}

	builder := &record.Builder{Directory: o.Directory, Prices: o.Prices}
	rec := builder.Build(info, meta, flags)
	rec.AuditFlags = auditFlags
	rec.NeedsReview = len(auditFlags) > 0 || info.Symbol == ""

	for _, f := range rec.AuditFlags {
		o.Alerts.Log("anomaly", f.Code, models.SeverityWarning, f.Message, doc.Filename, f.Details)
	}

	if o.Sink != nil {
		insertCtx, cancel := o.docContext(ctx)
		err := o.Sink.InsertRecord(insertCtx, rec)
		cancel()
		if err != nil {
			o.Alerts.Log("store", "insert_failed", models.SeverityFatal,
				err.Error(), doc.Filename, map[string]interface{}{"uid": rec.UID})
			rec.SkipReason = "insert_failed"
		}
	}
	return rec
}

func (o *Orchestrator) checkAnomalies(info *models.FilingInfo) []models.AuditFlag {
	det := anomaly.New(o.Config.Anomaly)

	var ref *marketref.Reference
	if o.Prices != nil && info.Symbol != "" {
		if r, ok := o.Prices.Reference(info.Symbol, o.Config.Anomaly.MarketRefDays, o.now()); ok {
			ref = &r
		}
	}
	flags := det.CheckRows(info.Transactions, ref)
	if flag, ok := det.CheckPercentages(info); ok {
		flags = append(flags, flag)
	}
	return flags
}

func (o *Orchestrator) skipContext(info *models.FilingInfo) map[string]interface{} {
	ctx := map[string]interface{}{"skip_reason": info.SkipReason}
	if info.HolderNameRaw != "" {
		ctx["holder_name_raw"] = info.HolderNameRaw
	}
	return ctx
}

func (o *Orchestrator) workers() int {
	if o.Config.Pipeline.Workers > 0 {
		return o.Config.Pipeline.Workers
	}
	return 1
}

func (o *Orchestrator) docContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Config.Pipeline.DocTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(o.Config.Pipeline.DocTimeout)*time.Second)
}
