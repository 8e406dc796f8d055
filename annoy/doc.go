// Package annoy implements an in-memory approximate nearest-neighbor index
// as a forest of randomized binary space-partitioning trees (the Annoy
// algorithm).
//
// Items are fixed-dimension vectors registered under caller-chosen integer
// ids. Build constructs a configurable number of trees concurrently; each
// tree recursively splits the item set with a randomized hyperplane chosen
// by a cheap two-means heuristic (or a random bit for the Hamming metric).
// Queries run a best-first descent across all trees with a shared priority
// frontier, then rank the gathered candidates by exact distance.
//
// Four metrics are supported: Euclidean, Angular (cosine), Manhattan and
// Hamming. The float metrics are generic over float32 and float64; Hamming
// operates on integer-coded bit words.
package annoy
