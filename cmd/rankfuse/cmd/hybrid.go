package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/spf13/cobra"

	"github.com/corpusworks/rankfuse/internal/config"
	"github.com/corpusworks/rankfuse/internal/embed"
	"github.com/corpusworks/rankfuse/internal/output"
	"github.com/corpusworks/rankfuse/pkg/index"
	"github.com/corpusworks/rankfuse/pkg/rank"
	"github.com/corpusworks/rankfuse/pkg/scoring"
	"github.com/corpusworks/rankfuse/pkg/selection"
	"github.com/corpusworks/rankfuse/pkg/vector"
)

// Fallback fusion weights when ranking.signals does not configure
// keyword/semantic explicitly.
const (
	defaultKeywordWeight  = 0.7
	defaultSemanticWeight = 0.3
)

// hybridOptions holds flag values for the hybrid command.
type hybridOptions struct {
	strategy   string
	normalizer string
	limit      int
	diversify  bool
	lambda     float64
	format     string
	showScores bool
}

func newHybridCmd() *cobra.Command {
	opts := hybridOptions{}

	cmd := &cobra.Command{
		Use:   "hybrid FILE QUERY",
		Short: "Hybrid keyword + semantic search over documents",
		Long: `Search documents with BM25 keyword matching and vector similarity,
fused into one ranking.

Documents are indexed twice: into an in-memory Bleve index for BM25
scoring and into an HNSW graph for cosine similarity over static
embeddings. Both scores feed the ranking engine as signals named
'keyword' and 'semantic'; weights come from ranking.signals in the
config (default 0.7 keyword, 0.3 semantic). With --diversify the top
results are chosen by MMR over the full ranking so near-duplicates
don't crowd the list.

Examples:
  rankfuse hybrid docs.yaml "connection pool timeout"
  rankfuse hybrid docs.yaml "connection pool timeout" --strategy rrf
  rankfuse hybrid docs.yaml "connection pool timeout" --diversify --lambda 0.3
  rankfuse hybrid docs.yaml "connection pool timeout" --format json -n 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHybrid(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Fusion strategy: weighted_sum, rrf, or hybrid")
	cmd.Flags().StringVar(&opts.normalizer, "normalizer", "", "Score normalizer: minmax, zscore, or percentile")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Number of results to return")
	cmd.Flags().BoolVarP(&opts.diversify, "diversify", "d", false, "Reorder top results by MMR for diversity")
	cmd.Flags().Float64VarP(&opts.lambda, "lambda", "l", selection.DefaultLambda, "MMR relevance/diversity balance (with --diversify)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.showScores, "scores", false, "Show keyword/semantic raw scores under each result")

	return cmd
}

func runHybrid(ctx context.Context, cmd *cobra.Command, file, query string, opts hybridOptions) error {
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
	if cmd.Flags().Changed("lambda") {
		cfg.Selection.Lambda = opts.lambda
	}

	docs, err := loadDocuments(file)
	if err != nil {
		return err
	}

	slog.Info("hybrid_started",
		slog.String("file", file),
		slog.Int("documents", len(docs)),
		slog.String("query", query),
		slog.String("strategy", cfg.Ranking.Strategy))

	keywordScores, err := keywordSearch(ctx, docs, query)
	if err != nil {
		return fmt.Errorf("keyword search failed: %w", err)
	}
	slog.Debug("keyword_search_complete", slog.Int("hits", len(keywordScores)))

	embedder := embed.NewStaticEmbedder(cfg.Embeddings.Dimensions)
	embeddings, queryEmb, err := embedAll(ctx, embedder, docs, query)
	if err != nil {
		return err
	}

	semanticScores, err := semanticSearch(cfg, docs, embeddings, queryEmb)
	if err != nil {
		return fmt.Errorf("semantic search failed: %w", err)
	}
	slog.Debug("semantic_search_complete", slog.Int("hits", len(semanticScores)))

	normalizer, err := buildNormalizer(cfg.Ranking.Normalizer)
	if err != nil {
		return err
	}
	strategy, err := buildStrategy(cfg.Ranking.Strategy, cfg)
	if err != nil {
		return err
	}

	docID := func(d Document) string { return d.ID }
	scorers := []rank.WeightedScorer[Document]{
		{
			Scorer: scoring.NewLookup[Document]("keyword", docID, keywordScores),
			Weight: signalWeight(cfg, "keyword", defaultKeywordWeight),
		},
		{
			Scorer: scoring.NewLookup[Document]("semantic", docID, semanticScores),
			Weight: signalWeight(cfg, "semantic", defaultSemanticWeight),
		},
	}

	engine := rank.New[Document](
		rank.WithDefaultNormalizer(normalizer),
		rank.WithDefaultStrategy(strategy),
		rank.WithParallelism(cfg.Ranking.Parallelism),
		rank.WithLogger(slog.Default()),
	)

	var results []rank.Result[Document]
	if opts.diversify {
		// Rank everything, then let MMR choose the top slice so the
		// selector has the full pool to diversify from.
		ranked, rankErr := engine.Rank(ctx, docs, scorers)
		if rankErr != nil {
			return fmt.Errorf("ranking failed: %w", rankErr)
		}
		results, err = diversifyResults(docs, ranked, embeddings, queryEmb, cfg.Selection.Lambda, opts.limit)
		if err != nil {
			return fmt.Errorf("diversification failed: %w", err)
		}
	} else {
		results, err = engine.RankTopK(ctx, docs, scorers, opts.limit)
		if err != nil {
			return fmt.Errorf("ranking failed: %w", err)
		}
	}

	elapsed := time.Since(start)
	slog.Info("hybrid_complete",
		slog.Int("results", len(results)),
		slog.Bool("diversified", opts.diversify),
		slog.Duration("duration", elapsed))

	if opts.format == "json" {
		return printRankedJSON(cmd, results, cfg.Ranking.Strategy, elapsed)
	}

	out.Statusf("🔍", "Searching %d documents for %q (strategy: %s)",
		len(docs), query, cfg.Ranking.Strategy)
	out.Newline()

	renderRankedTable(cmd, results, []string{"keyword", "semantic"}, opts.showScores)

	out.Newline()
	if opts.diversify {
		out.Successf("Found %d results in %dms (diversified, lambda: %.2f)",
			len(results), elapsed.Milliseconds(), cfg.Selection.Lambda)
	} else {
		out.Successf("Found %d results in %dms", len(results), elapsed.Milliseconds())
	}
	return nil
}

// keywordDoc is the shape indexed into Bleve.
type keywordDoc struct {
	Content string `json:"content"`
}

// keywordSearch indexes all documents into an in-memory Bleve index and
// returns BM25 scores by document ID. Unmatched documents are absent.
func keywordSearch(ctx context.Context, docs []Document, query string) (map[string]float64, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	defer func() { _ = idx.Close() }()

	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, keywordDoc{Content: doc.EmbedText()}); err != nil {
			return nil, fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to execute batch: %w", err)
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")
	request := bleve.NewSearchRequest(matchQuery)
	request.Size = len(docs)

	result, err := idx.SearchInContext(ctx, request)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(result.Hits))
	for _, hit := range result.Hits {
		scores[hit.ID] = hit.Score
	}
	return scores, nil
}

// embedAll embeds every document plus the query with one embedder.
func embedAll(ctx context.Context, embedder *embed.StaticEmbedder, docs []Document, query string) ([]vector.Embedding, vector.Embedding, error) {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.EmbedText()
	}
	embeddings, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	queryEmb, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return embeddings, queryEmb, nil
}

// semanticSearch builds an HNSW graph over the document embeddings and
// returns cosine similarity scores by document ID.
func semanticSearch(cfg *config.Config, docs []Document, embeddings []vector.Embedding, query vector.Embedding) (map[string]float64, error) {
	vectorIndex, err := index.New(index.Config{
		Dimensions: cfg.Embeddings.Dimensions,
		M:          cfg.Index.M,
		EfSearch:   cfg.Index.EfSearch,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	if err := vectorIndex.Add(ids, embeddings); err != nil {
		return nil, err
	}

	hits, err := vectorIndex.Search(query, len(docs))
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(hits))
	for _, hit := range hits {
		scores[hit.ID] = hit.Score
	}
	return scores, nil
}

// signalWeight reads a fusion weight from ranking.signals, falling back
// to the built-in default.
func signalWeight(cfg *config.Config, name string, fallback float64) float64 {
	if w, ok := cfg.Ranking.Signals[name]; ok {
		return w
	}
	return fallback
}

// diversifyResults picks limit results from the full ranking by MMR over
// their embeddings, reassigning ranks to the new order. With limit at or
// above the pool size the ranked order passes through unchanged.
func diversifyResults(docs []Document, ranked []rank.Result[Document], embeddings []vector.Embedding, query vector.Embedding, lambda float64, limit int) ([]rank.Result[Document], error) {
	if len(ranked) < 2 {
		return ranked, nil
	}

	// Embeddings are indexed by document position, results by rank.
	position := make(map[string]int, len(docs))
	for i, doc := range docs {
		position[doc.ID] = i
	}
	rankedEmbs := make([]vector.Embedding, len(ranked))
	for i, r := range ranked {
		rankedEmbs[i] = embeddings[position[r.Item.ID]]
	}

	candidates, err := selection.ComputeMMR(rankedEmbs, query,
		selection.WithLambda(lambda),
		selection.WithLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	selected := make([]rank.Result[Document], len(candidates))
	for i, c := range candidates {
		selected[i] = ranked[c.Index]
		selected[i].Rank = i + 1
	}
	return selected, nil
}
