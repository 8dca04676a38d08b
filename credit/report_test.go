package credit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/credit-engine/credit"
	memstore "github.com/warp/credit-engine/credit/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var reportDay = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func seedTx(t *testing.T, store *memstore.Memory, id string, account credit.AccountID, dir credit.Direction, amount string, at time.Time) {
	t.Helper()
	require.NoError(t, store.AppendTransaction(context.Background(), credit.Transaction{
		ID:        id,
		AccountID: account,
		Direction: dir,
		Amount:    money(amount),
		ActorID:   "agent-1",
		CreatedAt: at,
	}))
}

// seedReportDay writes a day of member activity for agent-1:
// +40.00 and -10.00 on member-1, +5.00 on member-2, net 35.00.
// Plus out-of-window noise just before and exactly at the window end.
func seedReportDay(t *testing.T, store *memstore.Memory) {
	t.Helper()
	seedTx(t, store, "tx-1", "member-1", credit.DirectionAdd, "40.00", reportDay.Add(9*time.Hour))
	seedTx(t, store, "tx-2", "member-1", credit.DirectionDeduct, "10.00", reportDay.Add(13*time.Hour))
	seedTx(t, store, "tx-3", "member-2", credit.DirectionAdd, "5.00", reportDay.Add(23*time.Hour+59*time.Minute))

	seedTx(t, store, "tx-before", "member-1", credit.DirectionAdd, "99.00", reportDay.Add(-time.Minute))
	seedTx(t, store, "tx-after", "member-1", credit.DirectionAdd, "77.00", reportDay.AddDate(0, 0, 1))
}

// =============================================================================
// DAILY RUN
// =============================================================================

func TestRunDaily_AggregatesAgentMovement(t *testing.T) {
	// GIVEN: One agent whose members moved a net 35.00 inside the day,
	//        with extra transactions outside the half-open window
	// WHEN: Running the daily report
	// THEN: creditMovement=35.00, commission=round2(35.00 × 0.01)=0.35

	engine, store := newTestEngine(t)
	seedHierarchy(t, store)
	seedReportDay(t, store)
	ctx := context.Background()

	report, err := engine.Reports.RunDaily(ctx, reportDay)
	require.NoError(t, err)

	assert.Equal(t, reportDay, report.Date)
	assert.Equal(t, 2, report.TotalMembers)
	assert.Equal(t, 1, report.ActiveMembers)
	assert.True(t, report.TotalCreditMovement.Equal(money("35.00")),
		"movement should exclude out-of-window transactions, got %s", report.TotalCreditMovement)
	assert.True(t, report.TotalCommission.Equal(money("0.35")))

	require.Len(t, report.AgentReports, 1)
	ar := report.AgentReports[0]
	assert.Equal(t, credit.AccountID("agent-1"), ar.AgentID)
	assert.Equal(t, 2, ar.MemberCount)
	assert.True(t, ar.CreditMovement.Equal(money("35.00")))
	assert.True(t, ar.Commission.Equal(money("0.35")))
}

func TestRunDaily_Idempotent(t *testing.T) {
	// Rerunning for the same day with unchanged transactions must yield
	// exactly one stored report with identical totals.

	engine, store := newTestEngine(t)
	seedHierarchy(t, store)
	seedReportDay(t, store)
	ctx := context.Background()

	first, err := engine.Reports.RunDaily(ctx, reportDay)
	require.NoError(t, err)
	second, err := engine.Reports.RunDaily(ctx, reportDay)
	require.NoError(t, err)

	assert.True(t, first.TotalCreditMovement.Equal(second.TotalCreditMovement))
	assert.True(t, first.TotalCommission.Equal(second.TotalCommission))
	assert.Equal(t, first.TotalMembers, second.TotalMembers)
	assert.Equal(t, first.ActiveMembers, second.ActiveMembers)

	stored, err := store.DailyReportsInRange(ctx, reportDay, reportDay)
	require.NoError(t, err)
	require.Len(t, stored, 1, "upsert must leave exactly one report per date")
	assert.True(t, stored[0].TotalCreditMovement.Equal(first.TotalCreditMovement))
}

func TestRunDaily_NegativeMovement_NoCommission(t *testing.T) {
	// A net-outflow day pays nothing and never claws back.

	engine, store := newTestEngine(t)
	seedHierarchy(t, store)
	seedTx(t, store, "tx-out", "member-1", credit.DirectionDeduct, "20.00", reportDay.Add(time.Hour))
	ctx := context.Background()

	report, err := engine.Reports.RunDaily(ctx, reportDay)
	require.NoError(t, err)

	require.Len(t, report.AgentReports, 1)
	assert.True(t, report.AgentReports[0].CreditMovement.Equal(money("-20.00")))
	assert.True(t, report.AgentReports[0].Commission.IsZero())
	assert.True(t, report.TotalCommission.IsZero())
}

func TestRunDaily_BumpsAgentTotals_BestEffort(t *testing.T) {
	// GIVEN: A rollup record for the agent
	// WHEN: The daily run pays 0.35
	// THEN: TotalCommission is bumped; a missing rollup is skipped
	//       without failing the run

	engine, store := newTestEngine(t)
	seedHierarchy(t, store)
	seedReportDay(t, store)
	ctx := context.Background()

	require.NoError(t, store.SaveStats(ctx, credit.AgentStats{
		AgentID:         "agent-1",
		CommissionRate:  money("0.05"),
		TotalCommission: money("1.00"),
	}))

	_, err := engine.Reports.RunDaily(ctx, reportDay)
	require.NoError(t, err)

	stats, err := store.GetStats(ctx, "agent-1")
	require.NoError(t, err)
	assert.True(t, stats.TotalCommission.Equal(money("1.35")),
		"1.00 + day's 0.35, got %s", stats.TotalCommission)
	assert.True(t, stats.CommissionRate.Equal(money("0.05")), "rate is never touched by report runs")
}

func TestRunDaily_NoStats_ReportStillWritten(t *testing.T) {
	engine, store := newTestEngine(t)
	seedHierarchy(t, store)
	seedReportDay(t, store)
	ctx := context.Background()

	report, err := engine.Reports.RunDaily(ctx, reportDay)
	require.NoError(t, err)
	require.NotNil(t, report)

	stored, err := store.GetDailyReport(ctx, reportDay)
	require.NoError(t, err)
	require.NotNil(t, stored, "the report must be stored even with no rollup to bump")
}

// =============================================================================
// RANGE / WEEKLY QUERIES
// =============================================================================

func TestRangeReports_SortedAndAnnotated(t *testing.T) {
	// GIVEN: Reports stored for two days (inserted out of order)
	// WHEN: Querying the surrounding range
	// THEN: Exactly those two, ascending, with agent names resolved

	engine, store := newTestEngine(t)
	seedHierarchy(t, store)
	ctx := context.Background()

	later := reportDay.AddDate(0, 0, 2)
	require.NoError(t, store.SaveDailyReport(ctx, credit.DailyReport{
		Date:            later,
		TotalMembers:    2,
		AgentReports:    []credit.AgentReport{{AgentID: "agent-1", MemberCount: 2}},
		TotalCommission: money("0.10"),
	}))
	require.NoError(t, store.SaveDailyReport(ctx, credit.DailyReport{
		Date:            reportDay,
		TotalMembers:    2,
		AgentReports:    []credit.AgentReport{{AgentID: "agent-1", MemberCount: 2}},
		TotalCommission: money("0.35"),
	}))

	reports, err := engine.Reports.RangeReports(ctx, reportDay.AddDate(0, 0, -1), later.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, reportDay, reports[0].Date)
	assert.Equal(t, later, reports[1].Date)
	require.Len(t, reports[0].AgentReports, 1)
	assert.Equal(t, "Agent One", reports[0].AgentReports[0].AgentName)
}

func TestWeeklySummary_EmptyWeek(t *testing.T) {
	// A week with zero reports yields {Count: 0, Summary: nil}.

	engine, _ := newTestEngine(t)

	result, err := engine.Reports.WeeklySummary(context.Background(), 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Nil(t, result.Summary)
}

func TestWeeklySummary_Aggregates(t *testing.T) {
	// GIVEN: Two reports inside ISO week 2021-W33 (Aug 16 - Aug 22)
	// THEN: Monetary sums keep 2 decimals, member averages round to
	//       whole units

	engine, store := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDailyReport(ctx, credit.DailyReport{
		Date:                time.Date(2021, time.August, 17, 0, 0, 0, 0, time.UTC),
		TotalMembers:        10,
		ActiveMembers:       3,
		TotalCreditMovement: money("120.50"),
		TotalCommission:     money("1.21"),
	}))
	require.NoError(t, store.SaveDailyReport(ctx, credit.DailyReport{
		Date:                time.Date(2021, time.August, 19, 0, 0, 0, 0, time.UTC),
		TotalMembers:        20,
		ActiveMembers:       4,
		TotalCreditMovement: money("79.50"),
		TotalCommission:     money("0.80"),
	}))

	result, err := engine.Reports.WeeklySummary(ctx, 2021, 33)
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	require.NotNil(t, result.Summary)

	s := result.Summary
	assert.Equal(t, time.Date(2021, time.August, 16, 0, 0, 0, 0, time.UTC), s.Start)
	assert.Equal(t, time.Date(2021, time.August, 22, 0, 0, 0, 0, time.UTC), s.End)
	assert.True(t, s.TotalCreditMovement.Equal(money("200.00")))
	assert.True(t, s.TotalCommission.Equal(money("2.01")))
	assert.Equal(t, 15, s.AvgTotalMembers)
	assert.Equal(t, 4, s.AvgActiveMembers, "3.5 rounds up to 4")
}
