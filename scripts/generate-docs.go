//go:build ignore

// Package main generates a synthetic document corpus for exercising the
// rankfuse CLI and benchmarks.
// Usage: go run scripts/generate-docs.go -docs 1000 -output testdata/docs.yaml
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numDocs = flag.Int("docs", 1000, "Number of documents to generate")
	output  = flag.String("output", "testdata/docs.yaml", "Output file")
	seed    = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Topic vocabularies keep keyword search meaningful: documents within a
// topic share terms, documents across topics mostly don't.
var topics = map[string][]string{
	"databases":  {"index", "query", "transaction", "replication", "schema", "shard", "vacuum", "btree", "wal", "snapshot"},
	"networking": {"socket", "latency", "packet", "retry", "timeout", "backoff", "congestion", "handshake", "routing", "proxy"},
	"search":     {"ranking", "relevance", "tokenizer", "stemming", "recall", "precision", "embedding", "similarity", "fusion", "rerank"},
	"operations": {"deploy", "rollback", "incident", "alerting", "capacity", "autoscaling", "runbook", "oncall", "postmortem", "quota"},
	"security":   {"authentication", "token", "rotation", "audit", "encryption", "certificate", "sandbox", "policy", "secret", "signing"},
}

var filler = []string{
	"how", "to", "tune", "the", "for", "production", "workloads", "a", "deep",
	"dive", "into", "common", "pitfalls", "when", "scaling", "guide", "notes",
	"on", "debugging", "slow", "under", "load", "best", "settings",
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	topicNames := make([]string, 0, len(topics))
	for name := range topics {
		topicNames = append(topicNames, name)
	}
	// Map iteration order is random; sort for reproducibility.
	for i := 0; i < len(topicNames); i++ {
		for j := i + 1; j < len(topicNames); j++ {
			if topicNames[j] < topicNames[i] {
				topicNames[i], topicNames[j] = topicNames[j], topicNames[i]
			}
		}
	}

	var b strings.Builder
	b.WriteString("documents:\n")
	for i := 0; i < *numDocs; i++ {
		topic := topicNames[rng.Intn(len(topicNames))]
		vocab := topics[topic]

		title := fmt.Sprintf("%s %s %s", capitalize(pick(rng, vocab)), pick(rng, filler), pick(rng, vocab))
		text := makeText(rng, vocab, 20+rng.Intn(30))

		// Long-tail views, recent-skewed freshness, small like counts.
		views := int(rng.ExpFloat64() * 500)
		freshness := rng.Float64()
		likes := rng.Intn(100)

		fmt.Fprintf(&b, "  - id: doc-%04d\n", i)
		fmt.Fprintf(&b, "    title: %q\n", title)
		fmt.Fprintf(&b, "    text: %q\n", text)
		fmt.Fprintf(&b, "    fields:\n")
		fmt.Fprintf(&b, "      views: %d\n", views)
		fmt.Fprintf(&b, "      freshness: %.3f\n", freshness)
		fmt.Fprintf(&b, "      likes: %d\n", likes)
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, []byte(b.String()), 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d documents in %s\n", *numDocs, *output)
}

func makeText(rng *rand.Rand, vocab []string, words int) string {
	parts := make([]string, 0, words)
	for i := 0; i < words; i++ {
		// Two thirds topic vocabulary, one third filler.
		if rng.Intn(3) < 2 {
			parts = append(parts, pick(rng, vocab))
		} else {
			parts = append(parts, pick(rng, filler))
		}
	}
	return strings.Join(parts, " ")
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.Intn(len(words))]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
