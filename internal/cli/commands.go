package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"sales_dashboard/internal/alerts"
	"sales_dashboard/internal/analytics"
	"sales_dashboard/internal/export"

	"go.uber.org/zap"
)

const defaultExportPath = "dashboard-overview.xlsx"

func runHealth(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("health")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.Health(ctx)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	writeHealth(r.stdout, panel)
	return nil
}

func runKPI(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("kpi")
	storeID := fs.Int("store", 0, "Store number (0 = all stores)")
	dept := fs.Int("dept", 0, "Department number (0 = all departments)")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.KPIs(ctx, *storeID, *dept)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	writeKPIs(r.stdout, panel)
	return nil
}

func runStores(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("stores")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.Stores(ctx)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	writeStores(r.stdout, "Stores", panel)
	return nil
}

func runTopStores(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("top")
	limit := fs.Int("limit", analytics.DefaultTopStores, "Number of stores")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.TopStores(ctx, *limit)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	writeStores(r.stdout, "Top stores", panel)
	return nil
}

func runForecast(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("forecast")
	storeID := fs.Int("store", 0, "Store number (0 = all stores)")
	periods := fs.Int("periods", analytics.DefaultForecastPeriods, "Weeks ahead (1-26)")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.Forecast(ctx, *storeID, *periods)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	writeForecast(r.stdout, panel)
	return nil
}

func runRecommendations(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("recommendations")
	storeID := fs.Int("store", 0, "Store number (0 = all stores)")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.Recommendations(ctx, *storeID)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	writeRecommendations(r.stdout, panel)
	return nil
}

func runInventory(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("inventory")
	storeID := fs.Int("store", 1, "Store number")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.Inventory(ctx, *storeID)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	writeInventory(r.stdout, panel)
	return nil
}

func runOverview(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("overview")
	storeID := fs.Int("store", 0, "Store number (0 = all stores)")
	limit := fs.Int("limit", analytics.DefaultTopStores, "Number of top stores")
	periods := fs.Int("periods", analytics.DefaultForecastPeriods, "Forecast weeks ahead (1-26)")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	overview := r.dashboard.Overview(ctx, *storeID, *limit, *periods)
	if r.options.JSON {
		return r.writeJSON(overview)
	}
	writeOverview(r.stdout, overview)
	return nil
}

func salesInputFlags(fs *flag.FlagSet) *analytics.SalesInput {
	input := &analytics.SalesInput{}
	fs.IntVar(&input.Store, "store", 1, "Store number")
	fs.IntVar(&input.Dept, "dept", 1, "Department number")
	fs.Float64Var(&input.WeeklySales, "weekly-sales", 0, "Weekly sales (USD)")
	fs.Float64Var(&input.Temperature, "temperature", 60, "Average temperature (F)")
	fs.Float64Var(&input.FuelPrice, "fuel-price", 3.5, "Fuel price (USD/gallon)")
	fs.Float64Var(&input.CPI, "cpi", 211.0, "Consumer price index")
	fs.Float64Var(&input.Unemployment, "unemployment", 8.0, "Unemployment rate (%)")
	fs.Func("holiday", "Week contains a holiday (true/false)", func(value string) error {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes":
			input.IsHoliday = 1
		case "0", "false", "no", "":
			input.IsHoliday = 0
		default:
			return fmt.Errorf("invalid holiday value %q", value)
		}
		return nil
	})
	return input
}

func runRisk(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("risk")
	input := salesInputFlags(fs)
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.Alerts(ctx, *input)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	writeAlertSummary(r.stdout, panel)
	return nil
}

func runAnomaly(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("anomaly")
	input := salesInputFlags(fs)
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.Anomaly(ctx, *input)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	r.println(sectionTitle("Anomaly detection", panel.Demo))
	r.printf("- anomaly detected: %t\n- anomaly score: %.4f\n", panel.Data.AnomalyDetected, panel.Data.AnomalyScore)
	return nil
}

func runCluster(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("cluster")
	input := salesInputFlags(fs)
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	panel := r.dashboard.Cluster(ctx, *input)
	if r.options.JSON {
		return r.writeJSON(panel)
	}
	r.println(sectionTitle("Behaviour cluster", panel.Demo))
	r.printf("- cluster: %d\n- high-risk group: %t\n", panel.Data.Cluster, panel.Data.HighRisk)
	return nil
}

func runIoT(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("iot")
	input := salesInputFlags(fs)
	timestamp := fs.String("timestamp", "", "Reading time (RFC 3339, default now)")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	reading := analytics.NewIoTReading(*input, time.Now())
	if *timestamp != "" {
		reading.Timestamp = *timestamp
	}

	assessment, err := r.dashboard.Ingest(ctx, reading)
	if err != nil {
		return err
	}
	if r.options.JSON {
		return r.writeJSON(assessment)
	}
	r.printf("Reading accepted for store %d dept %d\n", reading.Store, reading.Dept)
	r.printf("- risk: %s (score %.2f)\n- cluster: %d\n- anomaly: %t (score %.4f)\n",
		assessment.RiskLevel, assessment.RiskScore, assessment.Cluster, assessment.AnomalyDetected, assessment.AnomalyScore)
	return nil
}

func runAlerts(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("alerts")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	if !r.options.JSON {
		fmt.Fprintf(r.stderr, "Listening on %s (Ctrl-C to stop)\n", r.stream.Endpoint())
	}
	return r.stream.Run(ctx, func(event alerts.Event) error {
		if r.options.JSON {
			return r.writeJSON(event)
		}
		writeEvent(r.stdout, event)
		return nil
	})
}

func runLogin(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("login")
	username := fs.String("username", "", "Admin username")
	password := fs.String("password", "", "Admin password (prompted when empty)")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	reader := bufio.NewReader(r.stdin)
	if strings.TrimSpace(*username) == "" {
		value, err := prompt(r, reader, "Username: ")
		if err != nil {
			return err
		}
		*username = value
	}
	if *password == "" {
		value, err := prompt(r, reader, "Password: ")
		if err != nil {
			return err
		}
		*password = value
	}

	// A failed login returns *auth.LoginError whose text is the backend's
	// message.
	resp, err := r.auth.Login(ctx, *username, *password)
	if err != nil {
		return err
	}

	if r.options.JSON {
		return r.writeJSON(map[string]any{
			"username":  resp.Username,
			"expiresIn": resp.ExpiresIn,
			"loggedIn":  true,
		})
	}
	r.printf("Logged in as %s", firstNonEmpty(resp.Username, *username))
	if resp.ExpiresIn > 0 {
		r.printf(" (token valid for %d minutes)", resp.ExpiresIn)
	}
	r.println()
	r.logger.Debug("session saved", zap.String("path", r.store.Path()))
	return nil
}

func runLogout(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("logout")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	wasLoggedIn := r.auth.LoggedIn()
	if err := r.auth.Logout(ctx); err != nil {
		return err
	}
	if r.options.JSON {
		return r.writeJSON(map[string]any{"loggedIn": false})
	}
	if wasLoggedIn {
		r.println("Logged out.")
	} else {
		r.println("Not logged in.")
	}
	return nil
}

func runWhoami(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("whoami")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	user, err := r.auth.Whoami(ctx)
	if err != nil {
		return err
	}
	if r.options.JSON {
		return r.writeJSON(user)
	}
	r.printf("%s (admin: %t)\n", user.Username, user.IsAdmin)
	return nil
}

func runExport(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("export")
	out := fs.String("out", defaultExportPath, "Output .xlsx path")
	storeID := fs.Int("store", 0, "Store number (0 = all stores)")
	limit := fs.Int("limit", analytics.DefaultTopStores, "Number of top stores")
	periods := fs.Int("periods", analytics.DefaultForecastPeriods, "Forecast weeks ahead (1-26)")
	if ok, err := parseCommandFlags(fs, args); !ok {
		return err
	}

	overview := r.dashboard.Overview(ctx, *storeID, *limit, *periods)
	if err := export.Save(*out, overview); err != nil {
		return err
	}
	if r.options.JSON {
		return r.writeJSON(map[string]any{"path": *out})
	}
	r.printf("Wrote %s\n", *out)
	return nil
}

func prompt(r *Runner, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(r.stderr, label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
