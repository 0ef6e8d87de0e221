// Package runner wires the whole report run together: fetch spend and
// CRM data concurrently, reduce them into the snapshot, render, persist,
// and deliver. A run degrades rather than aborts: missing data sources
// produce a partial report and failed delivery channels are logged and
// skipped.
package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightops/adpulse/internal/config"
	"github.com/brightops/adpulse/internal/databox"
	"github.com/brightops/adpulse/internal/delivery"
	"github.com/brightops/adpulse/internal/hubspot"
	"github.com/brightops/adpulse/internal/intelligence"
	"github.com/brightops/adpulse/internal/metrics"
	"github.com/brightops/adpulse/internal/pipeline"
	"github.com/brightops/adpulse/internal/pkg/logger"
	"github.com/brightops/adpulse/internal/report"
	"github.com/brightops/adpulse/internal/storage"
	"github.com/brightops/adpulse/internal/window"
)

// Runner owns the clients and deliverers for one process.
type Runner struct {
	cfg       *config.Config
	spend     *databox.Collector
	crm       *hubspot.Client
	webhook   *delivery.Webhook
	emailer   *delivery.Emailer
	publisher *delivery.Publisher
	local     *storage.Local
	archive   *storage.Archive

	now func() time.Time
}

// New builds a runner from validated configuration. Optional channels
// (webhook, email, publish, S3 archive) come back nil when unconfigured.
func New(ctx context.Context, cfg *config.Config) (*Runner, error) {
	local, err := storage.NewLocal(cfg.Storage.LocalPath)
	if err != nil {
		return nil, err
	}

	emailer, err := delivery.NewEmailer(ctx, cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("setting up email delivery: %w", err)
	}

	archive, err := storage.NewArchive(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("setting up S3 archive: %w", err)
	}

	return &Runner{
		cfg:       cfg,
		spend:     databox.NewCollector(databox.NewClient(cfg.Databox), cfg.Databox.PageSize),
		crm:       hubspot.NewClient(cfg.HubSpot),
		webhook:   delivery.NewWebhook(cfg.Slack.WebhookURL),
		emailer:   emailer,
		publisher: delivery.NewPublisher(cfg.Pages),
		local:     local,
		archive:   archive,
		now:       time.Now,
	}, nil
}

// fetchResult carries everything the concurrent fetch phase produces.
type fetchResult struct {
	primaryRows []databox.Row
	weekRows    []databox.Row
	priorRows   []databox.Row
	channelRows []databox.Row
	contacts    []hubspot.Contact
	deals       []hubspot.Deal
}

// Run executes one complete report run.
func (r *Runner) Run(ctx context.Context) error {
	generatedAt := r.now()
	windows := window.Compute(generatedAt)
	logger.Info("starting report run",
		"last_30_days", windows.Last30Days.From+".."+windows.Last30Days.To,
		"prior_month", windows.PriorMonth.From+".."+windows.PriorMonth.To)

	fetched := r.fetchAll(ctx, windows)
	snap := r.buildSnapshot(generatedAt, windows, fetched)

	logger.Info("snapshot computed",
		"run_id", snap.RunID,
		"spend", snap.Primary.Spend,
		"demos", snap.Primary.Demos,
		"booked", snap.Pipeline30.Booked,
		"alerts", len(snap.Findings.Alerts),
		"warnings", len(snap.Findings.Warnings))

	textReport := report.RenderText(snap)
	htmlReport, err := report.RenderHTML(snap)
	if err != nil {
		logger.Error("HTML render failed, continuing with text only", "error", err.Error())
		htmlReport = "<pre>" + textReport + "</pre>"
	}

	r.deliver(ctx, snap, generatedAt, textReport, htmlReport)
	return nil
}

// fetchAll runs the spend and CRM fetches concurrently and waits for all
// of them. The spend source is queried four ways: 7-day, 30-day, and
// prior-month on the primary channel, plus an unfiltered 30-day query for
// the cross-channel comparison. Spend fetches fail open (empty rows);
// CRM fetches return whatever pages succeeded.
func (r *Runner) fetchAll(ctx context.Context, windows window.Windows) fetchResult {
	var result fetchResult
	var wg sync.WaitGroup

	crmWindow := crmUnionWindow(windows)
	primary := r.cfg.Report.PrimaryChannel

	wg.Add(6)
	go func() {
		defer wg.Done()
		result.primaryRows = r.spend.FetchWindow(ctx, windows.Last30Days, primary)
	}()
	go func() {
		defer wg.Done()
		result.weekRows = r.spend.FetchWindow(ctx, windows.Last7Days, primary)
	}()
	go func() {
		defer wg.Done()
		result.priorRows = r.spend.FetchWindow(ctx, windows.PriorMonth, primary)
	}()
	go func() {
		defer wg.Done()
		result.channelRows = r.spend.FetchWindow(ctx, windows.Last30Days, "")
	}()
	go func() {
		defer wg.Done()
		contacts, err := r.crm.SearchContacts(ctx, crmWindow)
		if err != nil {
			logger.Warn("CRM contact fetch failed, continuing without pipeline data", "error", err.Error())
		}
		result.contacts = contacts
	}()
	go func() {
		defer wg.Done()
		deals, err := r.crm.SearchDeals(ctx, crmWindow)
		if err != nil {
			logger.Warn("CRM deal fetch failed, continuing without revenue data", "error", err.Error())
		}
		result.deals = deals
	}()
	wg.Wait()

	return result
}

// crmUnionWindow is the single wide range covering every window the run
// slices locally. Prior-month start usually precedes the 30-day start,
// but not right after a short month, so take the earlier of the two.
func crmUnionWindow(windows window.Windows) window.Range {
	from := windows.PriorMonth.From
	if windows.Last30Days.From < from {
		from = windows.Last30Days.From
	}
	return window.Range{
		Label: "Reporting Period",
		From:  from,
		To:    windows.Last30Days.To,
	}
}

func (r *Runner) buildSnapshot(generatedAt time.Time, windows window.Windows, fetched fetchResult) report.Snapshot {
	channels := metrics.Aggregate(fetched.channelRows, metrics.ByChannel)
	primaryKey := strings.ToLower(r.cfg.Report.PrimaryChannel)

	primary, ok := channels[primaryKey]
	if !ok {
		// Channel-level rows may be missing while the dedicated primary
		// fetch succeeded; fall back to totaling the campaign rows.
		primary = totalOf(fetched.primaryRows, r.cfg.Report.PrimaryChannel)
	}

	var comparisons []metrics.Aggregated
	for key, agg := range channels {
		if key == primaryKey {
			continue
		}
		comparisons = append(comparisons, agg)
	}
	comparisons = sortedCopy(comparisons)

	campaigns := metrics.SortedBySpend(metrics.Aggregate(fetched.primaryRows, metrics.ByCampaign))

	week := totalOf(fetched.weekRows, r.cfg.Report.PrimaryChannel)
	priorSpend := totalOf(fetched.priorRows, r.cfg.Report.PrimaryChannel)

	ds := pipeline.Dataset{Contacts: fetched.contacts, Deals: fetched.deals}
	pl7 := pipeline.Slice(ds, windows.Last7Days)
	pl30 := pipeline.Slice(ds, windows.Last30Days)
	plMTD := pipeline.Slice(ds, windows.MonthToDate)
	plPrior := pipeline.Slice(ds, windows.PriorMonth)

	pacing := 0.0
	if r.cfg.Report.MonthlyBudget > 0 {
		pacing = primary.Spend / r.cfg.Report.MonthlyBudget
	}
	expectedPace := elapsedMonthShare(generatedAt)

	findings := intelligence.Analyze(intelligence.Snapshot{
		Channel:       primary,
		Comparisons:   comparisons,
		Pipeline:      pl30,
		PriorPipeline: plPrior,
		BudgetPacing:  pacing,
		ExpectedPace:  expectedPace,
	}, r.cfg.Thresholds)

	recommendations := intelligence.Recommend(campaigns, pl30, r.cfg.Thresholds)

	return report.Snapshot{
		RunID:           uuid.New().String(),
		GeneratedAt:     generatedAt.UTC(),
		Windows:         windows,
		Primary:         primary,
		Week:            week,
		PriorSpend:      priorSpend,
		Comparisons:     comparisons,
		Campaigns:       campaigns,
		Pipeline7:       pl7,
		Pipeline30:      pl30,
		PipelineMTD:     plMTD,
		PriorMonth:      plPrior,
		MonthlyBudget:   r.cfg.Report.MonthlyBudget,
		BudgetPacing:    pacing,
		ExpectedPace:    expectedPace,
		Findings:        findings,
		Recommendations: recommendations,
	}
}

// deliver persists and ships the rendered reports sequentially. The
// publish step runs before the chat post so the summary can link to the
// fresh dashboard. Every failure is logged and skipped.
func (r *Runner) deliver(ctx context.Context, snap report.Snapshot, generatedAt time.Time, textReport, htmlReport string) {
	textPath, htmlPath, err := r.local.Save(generatedAt, textReport, htmlReport)
	if err != nil {
		logger.Error("saving reports locally failed", "error", err.Error())
	} else {
		logger.Info("reports saved", "text", textPath, "html", htmlPath)
	}

	if r.archive != nil {
		if err := r.archive.Put(ctx, generatedAt, textReport, htmlReport); err != nil {
			logger.Error("archiving reports to S3 failed", "error", err.Error())
		}
	}

	publicURL := ""
	if r.publisher != nil {
		url, err := r.publisher.Publish(ctx, htmlReport)
		if err != nil {
			logger.Error("publishing dashboard failed", "error", err.Error())
		} else {
			publicURL = url
			logger.Info("dashboard published", "url", url)
		}
	}

	if r.webhook != nil {
		if err := r.webhook.Post(ctx, report.RenderChat(snap, publicURL)); err != nil {
			logger.Error("posting chat summary failed", "error", err.Error())
		} else {
			logger.Info("chat summary posted")
		}
	}

	if r.emailer != nil {
		subject := fmt.Sprintf("Marketing Pulse %s: %s", generatedAt.UTC().Format("Jan 2"), snap.Status())
		emailText := textReport
		if publicURL != "" {
			emailText = "Published dashboard: " + publicURL + "\n\n" + textReport
		}
		if err := r.emailer.Send(ctx, subject, emailText, htmlReport); err != nil {
			logger.Error("sending report email failed", "error", err.Error())
		} else {
			logger.Info("report email sent")
		}
	}
}

// ReportsDir exposes the local reports directory for -serve mode.
func (r *Runner) ReportsDir() string {
	return r.local.Dir()
}

func totalOf(rows []databox.Row, name string) metrics.Aggregated {
	total := metrics.Aggregated{Name: name}
	for _, row := range rows {
		total.Spend += row.Spend.Float()
		total.Clicks += row.Clicks.Float()
		total.Impressions += row.Impressions.Float()
		total.Demos += row.Conversions.Float()
	}
	return total
}

func sortedCopy(groups []metrics.Aggregated) []metrics.Aggregated {
	byName := make(map[string]metrics.Aggregated, len(groups))
	for _, g := range groups {
		byName[strings.ToLower(g.Name)] = g
	}
	return metrics.SortedBySpend(byName)
}

// elapsedMonthShare is the fraction of the current calendar month that
// has already passed, by whole days.
func elapsedMonthShare(now time.Time) float64 {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()
	return float64(now.Day()-1) / float64(daysInMonth)
}
