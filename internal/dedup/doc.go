// Package dedup detects exact and near-duplicate page content.
//
// Exact duplicates are found by SHA-256 content hash over the raw bytes.
// Near duplicates are found by cosine similarity between term-frequency
// vectors: a candidate at or above the threshold of any previously admitted
// page is rejected, otherwise its vector joins the corpus.
//
// The near-duplicate check is a deliberate O(n) scan over every admitted
// page. For the crawl sizes spinneret targets, correctness and simplicity
// beat asymptotic cost; the corpus is the system's main scaling limit and
// is never pruned.
package dedup
