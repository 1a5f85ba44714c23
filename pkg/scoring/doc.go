// Package scoring provides ready-made signal implementations for the
// ranking engine: plain function adapters, constant and lookup-table
// scorers, cosine-similarity scoring against a query embedding, CEL
// expression scorers compiled once and evaluated per item, and an LRU
// caching wrapper for expensive signals.
//
// Every type here implements [rank.Scorer] and can be mixed freely inside
// one engine call.
package scoring
