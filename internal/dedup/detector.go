package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sync"

	"github.com/mkosuda/spinneret/internal/config"
)

// Detector tracks admitted content for exact and near-duplicate rejection.
// It is an explicitly owned instance injected into the admission pipeline
// rather than package state, so independent crawls never share corpora and
// tests get clean teardown.
//
// The exact-hash set and the vector corpus are guarded separately: every
// admission decision both reads and mutates them, but an exact-duplicate
// check should never wait on a near-duplicate scan in another worker.
type Detector struct {
	// threshold is the cosine similarity at or above which content is a
	// near duplicate.
	threshold float64

	// hashMu guards seen.
	hashMu sync.Mutex

	// seen holds the content hashes of every page observed so far.
	seen map[string]struct{}

	// corpusMu guards corpus.
	corpusMu sync.Mutex

	// corpus holds one term-frequency vector per admitted page, in
	// admission order. Append-only.
	corpus []map[string]int
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithThreshold sets the near-duplicate cosine similarity cutoff.
func WithThreshold(threshold float64) DetectorOption {
	return func(d *Detector) {
		d.threshold = threshold
	}
}

// NewDetector creates a Detector with the default similarity threshold.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		threshold: config.DefaultSimilarityThreshold,
		seen:      make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Seen reports whether byte-identical content has been observed before.
// The first observation records the hash and returns false; every later
// observation of the same bytes returns true. Check-and-record is a single
// atomic step so two workers can never both see "new" for the same bytes.
func (d *Detector) Seen(content []byte) bool {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	d.hashMu.Lock()
	defer d.hashMu.Unlock()

	if _, ok := d.seen[hash]; ok {
		return true
	}
	d.seen[hash] = struct{}{}
	return false
}

// SimilarToSeen reports whether the candidate term-frequency vector is a
// near duplicate of any previously admitted page. A definitive "not a
// duplicate" appends the vector to the corpus, so future comparisons see
// it. The scan and the append happen under one lock; the corpus order any
// worker observes is the admission order.
func (d *Detector) SimilarToSeen(tf map[string]int) bool {
	d.corpusMu.Lock()
	defer d.corpusMu.Unlock()

	for _, admitted := range d.corpus {
		if Cosine(tf, admitted) >= d.threshold {
			return true
		}
	}

	d.corpus = append(d.corpus, tf)
	return false
}

// CorpusSize returns the number of admitted vectors.
func (d *Detector) CorpusSize() int {
	d.corpusMu.Lock()
	defer d.corpusMu.Unlock()
	return len(d.corpus)
}

// Cosine computes the cosine similarity of two term-frequency vectors:
// dot(a,b) / (|a|*|b|), defined as 0.0 when either vector has zero
// magnitude. The result lies in [0, 1] for frequency vectors since counts
// are never negative.
func Cosine(a, b map[string]int) float64 {
	// Iterate over the smaller map for the dot product.
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot float64
	for term, ca := range a {
		if cb, ok := b[term]; ok {
			dot += float64(ca) * float64(cb)
		}
	}

	magA := magnitude(a)
	magB := magnitude(b)
	if magA == 0 || magB == 0 {
		return 0.0
	}

	return dot / (magA * magB)
}

// magnitude returns the Euclidean norm of a term-frequency vector.
func magnitude(v map[string]int) float64 {
	var sum float64
	for _, c := range v {
		sum += float64(c) * float64(c)
	}
	return math.Sqrt(sum)
}
