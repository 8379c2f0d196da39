package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sales_dashboard/internal/alerts"
	"sales_dashboard/internal/dashboard"

	"go.uber.org/zap"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeHealth(w io.Writer, panel dashboard.Panel[dashboard.Health]) {
	state := "offline"
	if panel.Data.Online {
		state = "online"
	}
	fmt.Fprintf(w, "Backend %s (status: %s)\n", state, panel.Data.Status)
}

func writeKPIs(w io.Writer, panel dashboard.Panel[dashboard.KPIMetrics]) {
	fmt.Fprintln(w, sectionTitle("KPIs", panel.Demo))
	t := newTable(w)
	fmt.Fprintf(t, "Avg weekly sales\t%s\n", money(panel.Data.AvgWeeklySales))
	fmt.Fprintf(t, "Min sales\t%s\n", money(panel.Data.MinSales))
	fmt.Fprintf(t, "Max sales\t%s\n", money(panel.Data.MaxSales))
	fmt.Fprintf(t, "Volatility\t%s\n", money(panel.Data.Volatility))
	fmt.Fprintf(t, "Holiday avg\t%s\n", money(panel.Data.HolidaySalesAvg))
	_ = t.Flush()
}

func writeStores(w io.Writer, title string, panel dashboard.Panel[[]dashboard.StoreSummary]) {
	fmt.Fprintln(w, sectionTitle(title, panel.Demo))
	if len(panel.Data) == 0 {
		fmt.Fprintln(w, "- (no stores)")
		return
	}
	t := newTable(w)
	fmt.Fprintln(t, "STORE\tTOTAL SALES\tAVG WEEKLY\tDEPTS")
	for _, s := range panel.Data {
		fmt.Fprintf(t, "%d\t%s\t%s\t%d\n", s.ID, money(s.TotalSales), money(s.AvgWeeklySales), s.Departments)
	}
	_ = t.Flush()
}

func writeForecast(w io.Writer, panel dashboard.Panel[[]dashboard.ForecastPoint]) {
	fmt.Fprintln(w, sectionTitle("Forecast", panel.Demo))
	if len(panel.Data) == 0 {
		fmt.Fprintln(w, "- (no forecast)")
		return
	}
	t := newTable(w)
	fmt.Fprintln(t, "WEEK\tFORECAST\tLOWER\tUPPER")
	for _, p := range panel.Data {
		fmt.Fprintf(t, "%s\t%s\t%s\t%s\n", p.Date, money(p.Forecast), money(p.Lower), money(p.Upper))
	}
	_ = t.Flush()
}

func writeRecommendations(w io.Writer, panel dashboard.Panel[[]dashboard.Recommendation]) {
	fmt.Fprintln(w, sectionTitle("Recommendations", panel.Demo))
	if len(panel.Data) == 0 {
		fmt.Fprintln(w, "- (no recommendations)")
		return
	}
	for i, rec := range panel.Data {
		fmt.Fprintf(w, "%d) [%s] %s: %s\n", i+1, strings.ToUpper(rec.Severity), rec.Title, rec.Details)
		if rec.Action != "" {
			fmt.Fprintf(w, "   impact: %s\n", rec.Action)
		}
	}
}

func writeInventory(w io.Writer, panel dashboard.Panel[[]dashboard.InventoryItem]) {
	fmt.Fprintln(w, sectionTitle("Inventory", panel.Demo))
	t := newTable(w)
	fmt.Fprintln(t, "STORE\tDEPT\tSTOCK\tDEMAND/DAY\tDAYS LEFT\tRISK")
	for _, item := range panel.Data {
		fmt.Fprintf(t, "%d\t%d\t%.0f\t%.1f\t%.1f\t%s\n",
			item.StoreID, item.Dept, item.StockLevel, item.DemandRate, item.DaysUntilStockout, item.Risk)
	}
	_ = t.Flush()
}

func writeOverview(w io.Writer, overview dashboard.Overview) {
	writeKPIs(w, overview.KPIs)
	fmt.Fprintln(w)
	writeStores(w, "Top stores", overview.TopStores)
	fmt.Fprintln(w)
	writeForecast(w, overview.Forecast)
	fmt.Fprintln(w)
	writeRecommendations(w, overview.Recommendations)
	fmt.Fprintln(w)
	writeInventory(w, overview.Inventory)
}

func writeAlertSummary(w io.Writer, panel dashboard.Panel[dashboard.AlertSummary]) {
	fmt.Fprintln(w, sectionTitle("Risk assessment", panel.Demo))
	d := panel.Data.Details
	fmt.Fprintf(w, "- risk: %s (score %.2f)\n", d.RiskLevel, d.RiskScore)
	fmt.Fprintf(w, "- cluster: %d\n", d.Cluster)
	fmt.Fprintf(w, "- anomaly: %t (score %.4f)\n", d.AnomalyDetected, d.AnomalyScore)
	fmt.Fprintln(w, "Alerts:")
	for _, msg := range panel.Data.Messages {
		fmt.Fprintf(w, "- %s\n", msg)
	}
}

func writeEvent(w io.Writer, event alerts.Event) {
	switch {
	case event.Alert != nil:
		a := event.Alert
		fmt.Fprintf(w, "%s ALERT [%s] store %d dept %d: %s (risk %.2f)\n",
			event.Timestamp, strings.ToUpper(a.Priority), a.Store, a.Dept, a.Message, a.RiskScore)
	case event.Update != nil:
		u := event.Update
		fmt.Fprintf(w, "%s update store %d dept %d: sales %s, risk %s (%.2f), cluster %d",
			event.Timestamp, u.Store, u.Dept, money(u.WeeklySales), u.RiskLevel, u.RiskScore, u.Cluster)
		if u.AnomalyDetected {
			fmt.Fprint(w, ", ANOMALY")
		}
		fmt.Fprintln(w)
	}
}

func writeAnswer(w io.Writer, resp response) {
	fmt.Fprintln(w, resp.AnswerText)
	if resp.NextStep != "" {
		fmt.Fprintf(w, "\nNext: %s\n", resp.NextStep)
	}
}

func logResponse(logger *zap.Logger, resp response) {
	logger.Info("response",
		zap.String("query", strings.TrimSpace(resp.Query)),
		zap.String("answer", strings.TrimSpace(resp.AnswerText)),
		zap.Int("tool_calls", len(resp.ToolCalls)),
		zap.String("next_step", strings.TrimSpace(resp.NextStep)),
	)
}

// money renders whole dollars with thousands separators.
func money(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	digits := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
