// Package selection picks a diverse subset of vector-embedded candidates
// using Maximal Marginal Relevance (MMR).
//
// MMR balances two competing goals when choosing each candidate:
//
//	score = lambda*relevance + (1-lambda)*diversity
//
// where relevance is the candidate's cosine similarity to the query and
// diversity is one minus its mean similarity to the candidates already
// chosen. lambda=1 selects purely by relevance; lambda=0 purely by
// dissimilarity to the running selection.
//
// # Usage
//
//	result, err := selection.ComputeMMR(embeddings, query,
//	    selection.WithLambda(0.7),
//	    selection.WithLimit(10),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, c := range result {
//	    fmt.Println(c.Index) // position in the input collection
//	}
//
// # Determinism
//
// Selection is deterministic: candidates are scanned in input order and a
// strictly-greater comparison picks each winner, so equal scores resolve to
// the lowest original index. The same inputs always produce the same output.
//
// # Thread Safety
//
// [ComputeMMR] never mutates its inputs and keeps no state between calls;
// concurrent calls are safe without synchronization.
package selection
