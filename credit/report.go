/*
report.go - Daily report aggregation and read-only summary queries

PURPOSE:
  Aggregates one calendar day's transactions into an immutable daily
  snapshot, plus range and ISO-week queries that read only stored
  snapshots (never the raw transaction log).

DAILY RUN:
  1. Window the day as [00:00, next day 00:00) UTC
  2. Load the window's transactions once
  3. Per agent: direct members, signed sum of their window
     transactions → credit movement; commission = Round2(movement ×
     FlatRate), clamped at zero for negative movement
  4. Upsert the report keyed by date - rerunning with unchanged
     transactions yields identical aggregates
  5. Best-effort follow-up: bump each paying agent's TotalCommission;
     a failure here is logged and does not invalidate the stored
     report

RATES:
  FlatRate is a single platform-wide constant (default 1%) applied to
  daily credit movement. It is deliberately distinct from the
  per-agent CommissionRate used by the commission engine; the two are
  never multiplied together.
*/
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultFlatRate is the platform cut of daily credit movement.
var DefaultFlatRate = MustDecimal("0.01")

// ReportBuilder owns daily report runs and snapshot queries.
type ReportBuilder struct {
	store     Store
	hierarchy *Hierarchy
	flatRate  decimal.Decimal
	log       zerolog.Logger

	now func() time.Time
}

func NewReportBuilder(store Store, hierarchy *Hierarchy, log zerolog.Logger) *ReportBuilder {
	return &ReportBuilder{
		store:     store,
		hierarchy: hierarchy,
		flatRate:  DefaultFlatRate,
		log:       log,
		now:       time.Now,
	}
}

// WithFlatRate overrides the platform rate. Non-positive rates are
// ignored and keep the default.
func (b *ReportBuilder) WithFlatRate(rate decimal.Decimal) *ReportBuilder {
	if rate.IsPositive() {
		b.flatRate = rate
	}
	return b
}

// RunDaily aggregates one day's transactions into a DailyReport and
// upserts it. Safe to rerun for the same day: the upsert replaces the
// prior report wholesale.
func (b *ReportBuilder) RunDaily(ctx context.Context, day time.Time) (*DailyReport, error) {
	from, to := DayWindow(day)

	txs, err := b.store.TransactionsInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("report: load transactions for %s: %w", DateKey(day), err)
	}

	// Signed movement per account, one pass over the window.
	movement := make(map[AccountID]decimal.Decimal, len(txs))
	for i := range txs {
		movement[txs[i].AccountID] = movement[txs[i].AccountID].Add(txs[i].Signed())
	}

	agents, err := b.hierarchy.Agents(ctx)
	if err != nil {
		return nil, fmt.Errorf("report: list agents: %w", err)
	}

	report := DailyReport{
		Date:                from,
		TotalCreditMovement: decimal.Zero,
		TotalCommission:     decimal.Zero,
		Notes:               fmt.Sprintf("auto-generated for %s", DateKey(day)),
		GeneratedAt:         b.now().UTC(),
	}

	for i := range agents {
		agent := &agents[i]
		members, err := b.hierarchy.Members(ctx, agent.ID)
		if err != nil {
			return nil, fmt.Errorf("report: list members of %s: %w", agent.ID, err)
		}

		agentMovement := decimal.Zero
		activeMembers := 0
		for j := range members {
			agentMovement = agentMovement.Add(movement[members[j].ID])
			if members[j].IsActive() {
				activeMembers++
			}
		}

		commission := Round2(agentMovement.Mul(b.flatRate))
		if commission.IsNegative() {
			// Net outflow days pay nothing; they never claw back.
			commission = decimal.Zero
		}

		report.AgentReports = append(report.AgentReports, AgentReport{
			AgentID:        agent.ID,
			MemberCount:    len(members),
			CreditMovement: Round2(agentMovement),
			Commission:     commission,
		})
		report.TotalMembers += len(members)
		report.ActiveMembers += activeMembers
		report.TotalCreditMovement = report.TotalCreditMovement.Add(agentMovement)
		report.TotalCommission = report.TotalCommission.Add(commission)
	}
	report.TotalCreditMovement = Round2(report.TotalCreditMovement)
	report.TotalCommission = Round2(report.TotalCommission)

	if err := b.store.SaveDailyReport(ctx, report); err != nil {
		return nil, fmt.Errorf("report: save daily report %s: %w", DateKey(day), err)
	}

	// The report is committed; the rollup bump below is best-effort.
	b.creditAgentTotals(ctx, report)

	b.log.Info().
		Str("date", DateKey(day)).
		Int("agents", len(report.AgentReports)).
		Str("total_movement", report.TotalCreditMovement.StringFixed(2)).
		Str("total_commission", report.TotalCommission.StringFixed(2)).
		Msg("daily report stored")

	return &report, nil
}

// creditAgentTotals rolls the day's commission into each agent's
// stats. Failures are logged and skipped; the stored report stands.
func (b *ReportBuilder) creditAgentTotals(ctx context.Context, report DailyReport) {
	for i := range report.AgentReports {
		ar := &report.AgentReports[i]
		if !ar.Commission.IsPositive() {
			continue
		}
		stats, err := b.store.GetStats(ctx, ar.AgentID)
		if err != nil || stats == nil {
			if err != nil {
				b.softFail(ar.AgentID, err)
			}
			continue
		}
		stats.TotalCommission = stats.TotalCommission.Add(ar.Commission)
		stats.LastUpdated = b.now().UTC()
		if err := b.store.SaveStats(ctx, *stats); err != nil {
			b.softFail(ar.AgentID, err)
		}
	}
}

func (b *ReportBuilder) softFail(agentID AccountID, err error) {
	be := &BestEffortError{Op: "report.credit_totals", Err: err}
	b.log.Warn().Str("agent_id", string(agentID)).Err(be).Msg("report follow-up failed, continuing")
}

// RangeReports returns stored daily reports with dates in [start, end]
// inclusive, ascending, with agent display names resolved.
func (b *ReportBuilder) RangeReports(ctx context.Context, start, end time.Time) ([]DailyReport, error) {
	reports, err := b.store.DailyReportsInRange(ctx, Day(start), Day(end))
	if err != nil {
		return nil, fmt.Errorf("report: load range %s..%s: %w", DateKey(start), DateKey(end), err)
	}
	for i := range reports {
		for j := range reports[i].AgentReports {
			ar := &reports[i].AgentReports[j]
			ar.AgentName = b.hierarchy.DisplayName(ctx, ar.AgentID)
		}
	}
	return reports, nil
}

// WeeklySummary aggregates the stored reports of one ISO week. A week
// with no reports yields {Count: 0, Summary: nil}.
func (b *ReportBuilder) WeeklySummary(ctx context.Context, year, week int) (*WeeklyResult, error) {
	start, end := ISOWeekSpan(year, week)

	reports, err := b.store.DailyReportsInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("report: load week %d-W%02d: %w", year, week, err)
	}
	if len(reports) == 0 {
		return &WeeklyResult{Count: 0, Summary: nil}, nil
	}

	summary := &WeeklySummary{
		Start:               start,
		End:                 end,
		TotalCreditMovement: decimal.Zero,
		TotalCommission:     decimal.Zero,
	}
	sumMembers := 0
	sumActive := 0
	for i := range reports {
		summary.TotalCreditMovement = summary.TotalCreditMovement.Add(reports[i].TotalCreditMovement)
		summary.TotalCommission = summary.TotalCommission.Add(reports[i].TotalCommission)
		sumMembers += reports[i].TotalMembers
		sumActive += reports[i].ActiveMembers
	}
	summary.TotalCreditMovement = Round2(summary.TotalCreditMovement)
	summary.TotalCommission = Round2(summary.TotalCommission)
	summary.AvgTotalMembers = roundedAverage(sumMembers, len(reports))
	summary.AvgActiveMembers = roundedAverage(sumActive, len(reports))

	return &WeeklyResult{Count: len(reports), Summary: summary}, nil
}

func roundedAverage(sum, n int) int {
	if n == 0 {
		return 0
	}
	return (sum + n/2) / n
}
