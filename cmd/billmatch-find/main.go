// billmatch-find searches an offline list of bills for combinations close to a target.
//
// Usage:
//
//	billmatch-find -target 1000000 -tolerance 0.1 -items bills.json
//	cat bills.json | billmatch-find -target 1000000 -max-results 10 -json
//
// The items file is a JSON array of {"id": "...", "amount": "..."} objects;
// amounts may be strings or numbers with at most two decimals.
//
// Env vars:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/lmittmann/tint"
	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/billmatch/internal/version"
	billmatch "github.com/kailas-cloud/billmatch/pkg/sdk"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.version {
		fmt.Println(version.String())
		return
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      levelFromEnv(),
		TimeFormat: time.Kitchen,
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, cfg, os.Stdin, os.Stdout, slog.Default()); err != nil {
		slog.Error("search failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

type config struct {
	itemsPath  string
	target     string
	tolerance  float64
	maxItems   int
	maxResults int
	maxSteps   int
	timeout    time.Duration
	skipZero   bool
	asJSON     bool
	version    bool
}

func parseFlags(args []string) (config, error) {
	cfg := config{}
	fs := flag.NewFlagSet("billmatch-find", flag.ContinueOnError)
	fs.StringVar(&cfg.itemsPath, "items", "-", "JSON items file (- for stdin)")
	fs.StringVar(&cfg.target, "target", "", "target amount, e.g. 1000000 or 99.50 (required)")
	fs.Float64Var(&cfg.tolerance, "tolerance", 0.1, "allowed relative deviation (0.1 = 10%)")
	fs.IntVar(&cfg.maxItems, "max-items", 0, "consider only the first N items (0=unlimited)")
	fs.IntVar(&cfg.maxResults, "max-results", 10, "keep the best N combinations (0=unlimited)")
	fs.IntVar(&cfg.maxSteps, "max-steps", 0, "max subsets to visit (0=unlimited)")
	fs.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "search time budget (0=unlimited)")
	fs.BoolVar(&cfg.skipZero, "skip-zero", true, "ignore zero-amount items")
	fs.BoolVar(&cfg.asJSON, "json", false, "print results as JSON")
	fs.BoolVar(&cfg.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if cfg.target == "" && !cfg.version {
		fs.Usage()
		return config{}, errors.New("-target is required")
	}
	return cfg, nil
}

// itemJSON is one element of the items file.
type itemJSON struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

func run(ctx context.Context, cfg config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	target, err := decimal.NewFromString(cfg.target)
	if err != nil {
		return fmt.Errorf("parse target %q: %w", cfg.target, err)
	}

	items, err := readItems(cfg.itemsPath, stdin)
	if err != nil {
		return err
	}
	logger.Debug("items loaded", "count", len(items), "source", cfg.itemsPath)

	finder, err := billmatch.New(
		billmatch.WithMaxItems(cfg.maxItems),
		billmatch.WithMaxResults(cfg.maxResults),
		billmatch.WithMaxSteps(cfg.maxSteps),
		billmatch.WithTimeBudget(cfg.timeout),
		billmatch.WithSkipZeroAmounts(cfg.skipZero),
		billmatch.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	res, err := finder.Find(ctx, items, target, cfg.tolerance)
	if err != nil {
		return err
	}
	if res.Truncated {
		logger.Warn("search truncated, results are partial", "reason", res.Reason, "steps", res.Stats.Steps)
	}

	if cfg.asJSON {
		return writeJSON(stdout, res)
	}
	return writeTable(stdout, res)
}

func readItems(path string, stdin io.Reader) ([]billmatch.Item, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open items: %w", err)
		}
		defer f.Close()
		r = f
	}

	var raw []itemJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]billmatch.Item, len(raw))
	for i, it := range raw {
		items[i] = billmatch.Item{ID: it.ID, Amount: it.Amount}
	}
	return items, nil
}

type resultJSON struct {
	Combinations []combinationJSON `json:"combinations"`
	Truncated    bool              `json:"truncated"`
	Reason       string            `json:"truncation_reason,omitempty"`
	Steps        int               `json:"steps"`
	ElapsedMS    int64             `json:"elapsed_ms"`
}

type combinationJSON struct {
	IDs                  []string        `json:"ids"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	AbsoluteDifference   decimal.Decimal `json:"absolute_difference"`
	PercentageDifference decimal.Decimal `json:"percentage_difference"`
}

func writeJSON(w io.Writer, res *billmatch.Result) error {
	out := resultJSON{
		Combinations: make([]combinationJSON, len(res.Combinations)),
		Truncated:    res.Truncated,
		Reason:       string(res.Reason),
		Steps:        res.Stats.Steps,
		ElapsedMS:    res.Stats.Elapsed.Milliseconds(),
	}
	for i, c := range res.Combinations {
		out.Combinations[i] = combinationJSON{
			IDs:                  c.IDs(),
			TotalAmount:          c.TotalAmount,
			AbsoluteDifference:   c.AbsoluteDifference,
			PercentageDifference: c.PercentageDifference.Round(4),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTable(w io.Writer, res *billmatch.Result) error {
	if len(res.Combinations) == 0 {
		_, err := fmt.Fprintln(w, "no combination within tolerance")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTOTAL\tDIFF\tDIFF %\tITEMS")
	for i, c := range res.Combinations {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			c.TotalAmount.StringFixed(2),
			c.AbsoluteDifference.StringFixed(2),
			c.PercentageDifference.StringFixed(2),
			strings.Join(c.IDs(), ","),
		)
	}
	return tw.Flush()
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
