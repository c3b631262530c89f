package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	healthcheckVerbose bool
	healthcheckTimeout time.Duration
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// checkStatus is the result level of one health check
type checkStatus int

const (
	checkOK checkStatus = iota
	checkWarn
	checkFailed
)

type checkResult struct {
	name    string
	status  checkStatus
	summary string
	details []string
}

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, history storage and service reachability",
	Long: `Check the health of enhance-session by verifying:
  • Configuration loads and validates
  • The history medium opens and its collection decodes
  • The enhancement service answers on its base URL
  • The model catalog is reachable or cached

The checks after configuration run concurrently.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 Enhance Session Health Check"))
		_, _ = fmt.Fprintln(out)

		env, err := loadEnvironment()
		if err != nil {
			printCheck(cmd, checkResult{name: "Configuration", status: checkFailed, summary: err.Error()})
			return fmt.Errorf("health check failed: %w", err)
		}
		printCheck(cmd, checkResult{
			name:    "Configuration",
			summary: "loaded",
			details: []string{
				fmt.Sprintf("Server: %s", env.cfg.ServerURL),
				fmt.Sprintf("History: %s (%s)", env.cfg.HistoryPath, env.cfg.HistoryBackend),
				fmt.Sprintf("Task timeout: %s", env.cfg.TaskTimeout),
			},
		})

		ctx, cancel := context.WithTimeout(cmd.Context(), healthcheckTimeout)
		defer cancel()

		checks := []func(context.Context, *environment) checkResult{
			checkHistory,
			checkService,
			checkModels,
		}
		results := make([]checkResult, len(checks))
		g, gctx := errgroup.WithContext(ctx)
		for i, check := range checks {
			i, check := i, check
			g.Go(func() error {
				results[i] = check(gctx, env)
				return nil
			})
		}
		_ = g.Wait()

		failed := 0
		for _, r := range results {
			printCheck(cmd, r)
			if r.status == checkFailed {
				failed++
			}
		}

		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out)
		if failed > 0 {
			_, _ = fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ Health check failed (%d check(s))", failed)))
			return fmt.Errorf("health check failed: %d check(s) failed", failed)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func printCheck(cmd *cobra.Command, r checkResult) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("Checking %s...", r.name)))
	switch r.status {
	case checkOK:
		_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s: %s", r.name, r.summary)))
	case checkWarn:
		_, _ = fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %s: %s", r.name, r.summary)))
	default:
		_, _ = fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ %s: %s", r.name, r.summary)))
	}
	if healthcheckVerbose {
		for _, d := range r.details {
			_, _ = fmt.Fprintf(out, "   %s\n", d)
		}
	}
	_, _ = fmt.Fprintln(out)
}

func checkHistory(_ context.Context, env *environment) checkResult {
	r := checkResult{name: "History"}
	store, closeStore, err := env.openHistory()
	if err != nil {
		r.status, r.summary = checkFailed, err.Error()
		return r
	}
	defer closeStore()
	r.summary = fmt.Sprintf("%d saved prompt(s)", store.Len())
	r.details = []string{fmt.Sprintf("Medium: %s", env.cfg.HistoryPath)}
	return r
}

func checkService(ctx context.Context, env *environment) checkResult {
	r := checkResult{name: "Enhancement service"}
	base := env.cfg.HTTPBase()
	r.details = []string{
		fmt.Sprintf("HTTP: %s", base),
		fmt.Sprintf("WebSocket: %s", env.cfg.WebSocketBase()),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/", nil)
	if err != nil {
		r.status, r.summary = checkFailed, err.Error()
		return r
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		r.status, r.summary = checkFailed, fmt.Sprintf("unreachable: %v", err)
		return r
	}
	_ = resp.Body.Close()
	// Any HTTP answer means the host is serving; the channel path is not
	// probed because opening it would start a task.
	r.summary = fmt.Sprintf("reachable (HTTP %d)", resp.StatusCode)
	return r
}

func checkModels(ctx context.Context, env *environment) checkResult {
	r := checkResult{name: "Model catalog"}
	models, cached, err := env.modelCatalog().Models(ctx, false)
	if err != nil {
		r.status, r.summary = checkWarn, fmt.Sprintf("unavailable: %v", err)
		return r
	}
	r.summary = fmt.Sprintf("%d model(s)", len(models))
	if cached {
		r.summary += " (cached)"
	}
	r.details = []string{fmt.Sprintf("Source: %s", env.cfg.ModelsURL)}
	return r
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "v", false, "Show detailed diagnostic information")
	healthcheckCmd.Flags().DurationVar(&healthcheckTimeout, "timeout", 10*time.Second, "Time allowed for the concurrent checks")
}
