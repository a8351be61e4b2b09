package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shepherd/internal/adapters/email"
	"shepherd/internal/domain/engagement"
	"shepherd/internal/domain/firsttimer"
	"shepherd/internal/domain/followup"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// ErrNoRecipients is returned when a digest has nobody to go to.
var ErrNoRecipients = errors.New("digest has no recipients")

// digestRenderer converts digest Markdown to HTML. Raw HTML in the input is escaped.
var digestRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// FirstTimerStoreForDigest lists first-timer records for the digest year.
type FirstTimerStoreForDigest interface {
	ListByVisitDate(ctx context.Context, startDate, endDate string) ([]firsttimer.Record, error)
}

// TaxonomyStore reads the configured follow-up taxonomy.
type TaxonomyStore interface {
	List(ctx context.Context) (followup.Taxonomy, error)
}

// SendEngagementDigestInput selects the year to summarise. Zero selects the
// year in progress, or the year just closed when run in January.
type SendEngagementDigestInput struct {
	Year int
}

// SendEngagementDigestDeps holds dependencies for SendEngagementDigest.
type SendEngagementDigestDeps struct {
	FirstTimerStore FirstTimerStoreForDigest
	FollowUpStore   TaxonomyStore
	Sender          email.Sender
	Recipients      []string
	From            string           // optional; the sender default applies when empty
	Now             func() time.Time // nil uses time.Now
}

// SendEngagementDigestResult carries the rendered digest and delivery count.
type SendEngagementDigestResult struct {
	Subject  string
	Markdown string
	HTML     string
	Sent     int
}

// ExecuteSendEngagementDigest emails the first-timer annual summary for a year.
// PRE: Recipients is non-empty
// POST: One email per recipient is handed to Sender; recipients never see each other
func ExecuteSendEngagementDigest(ctx context.Context, input SendEngagementDigestInput, deps SendEngagementDigestDeps) (SendEngagementDigestResult, error) {
	if len(deps.Recipients) == 0 {
		return SendEngagementDigestResult{}, ErrNoRecipients
	}

	if input.Year == 0 {
		now := time.Now()
		if deps.Now != nil {
			now = deps.Now()
		}
		input.Year = digestYear(now)
	}

	taxonomy, err := deps.FollowUpStore.List(ctx)
	if err != nil {
		return SendEngagementDigestResult{}, err
	}
	if len(taxonomy) == 0 {
		taxonomy = followup.DefaultTaxonomy()
	}

	records, err := deps.FirstTimerStore.ListByVisitDate(ctx,
		fmt.Sprintf("%04d-01-01", input.Year), fmt.Sprintf("%04d-12-31", input.Year))
	if err != nil {
		return SendEngagementDigestResult{}, err
	}

	summary, err := engagement.BuildAnnualSummary(records, input.Year, taxonomy)
	if err != nil {
		return SendEngagementDigestResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	md := RenderDigestMarkdown(summary)
	var buf bytes.Buffer
	if err := digestRenderer.Convert([]byte(md), &buf); err != nil {
		return SendEngagementDigestResult{}, fmt.Errorf("render digest: %w", err)
	}

	res := SendEngagementDigestResult{
		Subject:  fmt.Sprintf("First-timer engagement digest %d", input.Year),
		Markdown: md,
		HTML:     buf.String(),
	}

	reqs := make([]email.SendRequest, 0, len(deps.Recipients))
	for _, to := range deps.Recipients {
		reqs = append(reqs, email.SendRequest{
			To:      []string{to},
			From:    deps.From,
			Subject: res.Subject,
			HTML:    res.HTML,
			Text:    md,
		})
	}
	sent, err := deps.Sender.SendBatch(ctx, reqs)
	res.Sent = len(sent)
	if err != nil {
		return res, fmt.Errorf("send digest: %w", err)
	}

	slog.Info("digest_event", "event", "engagement_digest_sent", "year", input.Year, "recipients", res.Sent, "first_timers", summary.Total)
	return res, nil
}

// RenderDigestMarkdown formats an annual summary as a Markdown report.
func RenderDigestMarkdown(s engagement.AnnualSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# First-timer engagement %d\n\n", s.Year)
	fmt.Fprintf(&b, "**%d** first-time visitors, an average of **%.1f** per month.\n", s.Total, s.AveragePerMonth)
	fmt.Fprintf(&b, "Integration rate: **%.1f%%**.\n", s.IntegrationRate)
	if s.Total > 0 {
		fmt.Fprintf(&b, "Busiest month: **%s** (%d).\n", s.Peak.Month, s.Peak.Total)
	}

	b.WriteString("\n## Follow-up status\n\n| Status | Count | Share |\n|---|---:|---:|\n")
	for _, sc := range s.Distribution {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", sc.Label, sc.Count, sc.Percentage)
	}

	b.WriteString("\n## By month\n\n| Month | Visitors | Trend |\n|---|---:|---|\n")
	for _, m := range s.Months {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", m.Month.String()[:3], m.Total, trendText(m))
	}

	if n := s.Skipped.Total(); n > 0 {
		fmt.Fprintf(&b, "\n_%d record(s) were left out: %d without a visit date, %d with a status no longer in use._\n",
			n, s.Skipped.MissingVisitDate, s.Skipped.UnknownStatus)
	}
	return b.String()
}

func trendText(m engagement.MonthSummary) string {
	switch m.Trend {
	case engagement.TrendUp:
		return fmt.Sprintf("up %.1f%%", m.TrendPercent)
	case engagement.TrendDown:
		return fmt.Sprintf("down %.1f%%", m.TrendPercent)
	case engagement.TrendStable:
		return "stable"
	default:
		return "-"
	}
}

// digestYear returns the year a digest run on now should cover: the current
// year, except during January when the previous year has just closed.
func digestYear(now time.Time) int {
	if now.Month() == time.January {
		return now.Year() - 1
	}
	return now.Year()
}
