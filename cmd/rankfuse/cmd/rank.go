package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpusworks/rankfuse/internal/config"
	"github.com/corpusworks/rankfuse/internal/output"
	"github.com/corpusworks/rankfuse/internal/ui"
	"github.com/corpusworks/rankfuse/pkg/rank"
	"github.com/corpusworks/rankfuse/pkg/scoring"
)

// rankOptions holds flag values for the rank command.
type rankOptions struct {
	signals    []string
	exprs      []string
	strategy   string
	normalizer string
	limit      int
	format     string
	showScores bool
}

func newRankCmd() *cobra.Command {
	opts := rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank FILE",
		Short: "Rank documents by fusing weighted signals",
		Long: `Rank documents from a YAML or JSON file by fusing one or more signals.

Each --signal reads a numeric document field and weights it; each --expr
evaluates a CEL expression against the document, bound as 'item' with
id, title, text, and every numeric field. Raw scores are normalized per
signal and fused by the configured strategy. Without --signal or --expr
the signal weights come from ranking.signals in the config file.

Examples:
  rankfuse rank docs.yaml --signal views --signal freshness=0.5
  rankfuse rank docs.yaml --signal views=-1.0            # demote by views
  rankfuse rank docs.json --expr 'boost=item.views * 0.5 + item.likes'
  rankfuse rank docs.yaml --strategy rrf --limit 10
  rankfuse rank docs.yaml --format json | jq '.results[0]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.signals, "signal", "s", nil, "Field signal as name or name=weight (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.exprs, "expr", "e", nil, "CEL signal as name=expression (repeatable)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Fusion strategy: weighted_sum, rrf, or hybrid")
	cmd.Flags().StringVar(&opts.normalizer, "normalizer", "", "Score normalizer: minmax, zscore, or percentile")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Keep only the top N results (0 = all)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.showScores, "scores", false, "Show per-signal raw scores under each result")

	return cmd
}

func runRank(ctx context.Context, cmd *cobra.Command, file string, opts rankOptions) error {
	out := output.New(cmd.OutOrStdout())
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.strategy != "" {
		cfg.Ranking.Strategy = opts.strategy
	}
	if opts.normalizer != "" {
		cfg.Ranking.Normalizer = opts.normalizer
	}

	docs, err := loadDocuments(file)
	if err != nil {
		return err
	}

	scorers, signalNames, err := buildScorers(opts, cfg)
	if err != nil {
		return err
	}

	normalizer, err := buildNormalizer(cfg.Ranking.Normalizer)
	if err != nil {
		return err
	}
	strategy, err := buildStrategy(cfg.Ranking.Strategy, cfg)
	if err != nil {
		return err
	}

	slog.Info("rank_started",
		slog.String("file", file),
		slog.Int("documents", len(docs)),
		slog.Int("signals", len(scorers)),
		slog.String("strategy", cfg.Ranking.Strategy),
		slog.String("normalizer", cfg.Ranking.Normalizer))

	engine := rank.New[Document](
		rank.WithDefaultNormalizer(normalizer),
		rank.WithDefaultStrategy(strategy),
		rank.WithParallelism(cfg.Ranking.Parallelism),
		rank.WithLogger(slog.Default()),
	)

	var results []rank.Result[Document]
	if opts.limit > 0 {
		results, err = engine.RankTopK(ctx, docs, scorers, opts.limit)
	} else {
		results, err = engine.Rank(ctx, docs, scorers)
	}
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	elapsed := time.Since(start)
	slog.Info("rank_complete",
		slog.Int("results", len(results)),
		slog.Duration("duration", elapsed))

	if opts.format == "json" {
		return printRankedJSON(cmd, results, cfg.Ranking.Strategy, elapsed)
	}

	out.Statusf("📊", "Ranking %d documents (strategy: %s, normalizer: %s)",
		len(docs), cfg.Ranking.Strategy, cfg.Ranking.Normalizer)
	out.Newline()

	renderRankedTable(cmd, results, signalNames, opts.showScores)

	out.Newline()
	out.Successf("Ranked %d documents in %dms", len(results), elapsed.Milliseconds())
	return nil
}

// buildScorers turns --signal and --expr flags into weighted scorers.
// Without flags it falls back to the ranking.signals map from config.
func buildScorers(opts rankOptions, cfg *config.Config) ([]rank.WeightedScorer[Document], []string, error) {
	var scorers []rank.WeightedScorer[Document]
	var names []string

	for _, raw := range opts.signals {
		name, weight, err := parseSignalFlag(raw)
		if err != nil {
			return nil, nil, err
		}
		scorers = append(scorers, rank.WeightedScorer[Document]{
			Scorer: newFieldScorer(name),
			Weight: weight,
		})
		names = append(names, name)
	}

	for _, raw := range opts.exprs {
		name, expr, err := parseExprFlag(raw)
		if err != nil {
			return nil, nil, err
		}
		scorer, err := scoring.NewCELScorer[Document](name, expr, celInput)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid expression for signal %q: %w", name, err)
		}
		weight := 1.0
		if w, ok := cfg.Ranking.Signals[name]; ok {
			weight = w
		}
		scorers = append(scorers, rank.WeightedScorer[Document]{
			Scorer: scorer,
			Weight: weight,
		})
		names = append(names, name)
	}

	// Fall back to configured signals when no flags were given.
	if len(scorers) == 0 {
		configured := make([]string, 0, len(cfg.Ranking.Signals))
		for name := range cfg.Ranking.Signals {
			configured = append(configured, name)
		}
		sort.Strings(configured)
		for _, name := range configured {
			scorers = append(scorers, rank.WeightedScorer[Document]{
				Scorer: newFieldScorer(name),
				Weight: cfg.Ranking.Signals[name],
			})
			names = append(names, name)
		}
	}

	if len(scorers) == 0 {
		return nil, nil, fmt.Errorf("no signals configured (use --signal, --expr, or set ranking.signals in config)")
	}

	return scorers, names, nil
}

// newFieldScorer reads a numeric document field; missing fields score zero.
func newFieldScorer(name string) rank.Scorer[Document] {
	return scoring.NewFunc[Document](name, func(d Document) float64 {
		return d.Fields[name]
	})
}

// celInput binds a document for CEL evaluation: id, title, and text plus
// every numeric field, all at the top level of 'item'.
func celInput(d Document) map[string]any {
	in := map[string]any{
		"id":    d.ID,
		"title": d.Title,
		"text":  d.Text,
	}
	for name, value := range d.Fields {
		in[name] = value
	}
	return in
}

// parseSignalFlag parses "name" or "name=weight".
func parseSignalFlag(raw string) (string, float64, error) {
	name, value, found := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, fmt.Errorf("invalid --signal %q: missing signal name", raw)
	}
	if !found {
		return name, 1.0, nil
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --signal %q: weight must be a number", raw)
	}
	return name, weight, nil
}

// parseExprFlag parses "name=expression".
func parseExprFlag(raw string) (string, string, error) {
	name, expr, found := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" || strings.TrimSpace(expr) == "" {
		return "", "", fmt.Errorf("invalid --expr %q: expected name=expression", raw)
	}
	return name, strings.TrimSpace(expr), nil
}

// buildNormalizer maps a config name to a normalizer.
func buildNormalizer(name string) (rank.Normalizer, error) {
	switch name {
	case "minmax":
		return rank.NewMinMaxNormalizer(), nil
	case "zscore":
		return rank.NewZScoreNormalizer(), nil
	case "percentile":
		return rank.NewPercentileNormalizer(), nil
	default:
		return nil, fmt.Errorf("unknown normalizer %q (expected minmax, zscore, or percentile)", name)
	}
}

// buildStrategy maps a config name to a fusion strategy, carrying the
// configured RRF constant and hybrid alpha.
func buildStrategy(name string, cfg *config.Config) (rank.Strategy, error) {
	switch name {
	case "weighted_sum":
		return rank.NewWeightedSumStrategy(), nil
	case "rrf":
		return rank.NewRRFStrategyWithK(cfg.Ranking.RRFConstant), nil
	case "hybrid":
		return rank.NewHybridStrategyWithK(cfg.Ranking.HybridAlpha, cfg.Ranking.RRFConstant), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (expected weighted_sum, rrf, or hybrid)", name)
	}
}

// renderRankedTable prints results as a score table plus a falloff
// sparkline of the final scores.
func renderRankedTable(cmd *cobra.Command, results []rank.Result[Document], signalNames []string, showScores bool) {
	rows := make([]ui.Row, len(results))
	scores := make([]float64, len(results))
	for i, r := range results {
		rows[i] = ui.Row{
			Rank:    r.Rank,
			ID:      r.Item.ID,
			Title:   r.Item.Title,
			Score:   r.FinalScore,
			Signals: r.Scores,
		}
		scores[i] = r.FinalScore
	}

	table := ui.NewTable(effectiveNoColor(cmd.OutOrStdout()))
	if showScores {
		table = table.WithSignals(signalNames...)
	}
	table.Render(cmd.OutOrStdout(), rows)

	if len(scores) > 1 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		table.RenderFalloff(cmd.OutOrStdout(), scores)
	}
}

// rankedDoc is the JSON shape of one ranked result.
type rankedDoc struct {
	Rank    int                `json:"rank"`
	ID      string             `json:"id"`
	Title   string             `json:"title,omitempty"`
	Score   float64            `json:"score"`
	Signals map[string]float64 `json:"signals,omitempty"`
}

// rankedOutput is the JSON shape of a complete ranking run.
type rankedOutput struct {
	Strategy   string      `json:"strategy"`
	Count      int         `json:"count"`
	DurationMS int64       `json:"duration_ms"`
	Results    []rankedDoc `json:"results"`
}

func printRankedJSON(cmd *cobra.Command, results []rank.Result[Document], strategy string, elapsed time.Duration) error {
	docs := make([]rankedDoc, len(results))
	for i, r := range results {
		docs[i] = rankedDoc{
			Rank:    r.Rank,
			ID:      r.Item.ID,
			Title:   r.Item.Title,
			Score:   r.FinalScore,
			Signals: r.Scores,
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rankedOutput{
		Strategy:   strategy,
		Count:      len(docs),
		DurationMS: elapsed.Milliseconds(),
		Results:    docs,
	})
}
