package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpusworks/rankfuse/internal/embed"
	"github.com/corpusworks/rankfuse/internal/output"
	"github.com/corpusworks/rankfuse/internal/ui"
	"github.com/corpusworks/rankfuse/pkg/selection"
	"github.com/corpusworks/rankfuse/pkg/vector"
)

// selectOptions holds flag values for the select command.
type selectOptions struct {
	lambda float64
	limit  int
	format string
}

func newSelectCmd() *cobra.Command {
	opts := selectOptions{}

	cmd := &cobra.Command{
		Use:   "select FILE QUERY",
		Short: "Select relevant but diverse documents for a query",
		Long: `Select a diverse subset of documents for a query using MMR
(Maximal Marginal Relevance).

Documents are embedded locally with the static hash embedder, then
picked greedily: each step takes the document with the best balance of
similarity to the query and dissimilarity to everything already picked.
Lambda 1.0 is pure relevance, 0.0 pure diversity.

Examples:
  rankfuse select docs.yaml "vector databases"
  rankfuse select docs.yaml "vector databases" --lambda 0.3 -n 5
  rankfuse select docs.yaml "vector databases" --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().Float64VarP(&opts.lambda, "lambda", "l", selection.DefaultLambda, "Relevance/diversity balance (0.0-1.0)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Number of documents to select")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runSelect(ctx context.Context, cmd *cobra.Command, file, query string, opts selectOptions) error {
	out := output.New(cmd.OutOrStdout())
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("lambda") {
		cfg.Selection.Lambda = opts.lambda
	}
	if cmd.Flags().Changed("limit") {
		cfg.Selection.Limit = opts.limit
	}

	docs, err := loadDocuments(file)
	if err != nil {
		return err
	}

	slog.Info("select_started",
		slog.String("file", file),
		slog.Int("documents", len(docs)),
		slog.Float64("lambda", cfg.Selection.Lambda),
		slog.Int("limit", cfg.Selection.Limit))

	embedder := embed.NewStaticEmbedder(cfg.Embeddings.Dimensions)

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.EmbedText()
	}
	embeddings, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	queryEmb, err := embedder.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	candidates, err := selection.ComputeMMR(embeddings, queryEmb,
		selection.WithLambda(cfg.Selection.Lambda),
		selection.WithLimit(cfg.Selection.Limit),
	)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}

	elapsed := time.Since(start)
	slog.Info("select_complete",
		slog.Int("selected", len(candidates)),
		slog.Duration("duration", elapsed))

	if opts.format == "json" {
		return printSelectedJSON(cmd, docs, candidates, queryEmb, cfg.Selection.Lambda, elapsed)
	}

	out.Statusf("🎯", "Selected %d of %d documents (lambda: %.2f)",
		len(candidates), len(docs), cfg.Selection.Lambda)
	out.Newline()

	rows := make([]ui.Row, len(candidates))
	for i, c := range candidates {
		doc := docs[c.Index]
		// Same embedder produced both sides, dimensions always match.
		sim, _ := vector.CosineSimilarity(c.Embedding, queryEmb)
		rows[i] = ui.Row{
			Rank:  i + 1,
			ID:    doc.ID,
			Title: doc.Title,
			Score: sim,
		}
	}
	ui.NewTable(effectiveNoColor(cmd.OutOrStdout())).Render(cmd.OutOrStdout(), rows)

	out.Newline()
	out.Successf("Selected %d documents in %dms", len(candidates), elapsed.Milliseconds())
	return nil
}

// selectedDoc is the JSON shape of one selected document.
type selectedDoc struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Title      string  `json:"title,omitempty"`
	Similarity float64 `json:"similarity"`
}

// selectedOutput is the JSON shape of a complete selection run.
type selectedOutput struct {
	Lambda     float64       `json:"lambda"`
	Count      int           `json:"count"`
	DurationMS int64         `json:"duration_ms"`
	Results    []selectedDoc `json:"results"`
}

func printSelectedJSON(cmd *cobra.Command, docs []Document, candidates []selection.Candidate, query vector.Embedding, lambda float64, elapsed time.Duration) error {
	results := make([]selectedDoc, len(candidates))
	for i, c := range candidates {
		doc := docs[c.Index]
		sim, _ := vector.CosineSimilarity(c.Embedding, query)
		results[i] = selectedDoc{
			Rank:       i + 1,
			ID:         doc.ID,
			Title:      doc.Title,
			Similarity: sim,
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(selectedOutput{
		Lambda:     lambda,
		Count:      len(results),
		DurationMS: elapsed.Milliseconds(),
		Results:    results,
	})
}
