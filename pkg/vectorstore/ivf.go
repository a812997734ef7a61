package vectorstore

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/yilane/rag-related/pkg/types"
)

// IVFStore is an IVF-flat index: k-means partitions the vectors into nlist
// inverted lists and searches scan only the nprobe lists whose centroids are
// closest to the query. Recall trades off against speed through nprobe.
type IVFStore struct {
	mu     sync.RWMutex
	metric Metric
	nlist  int
	nprobe int
	seed   int64
	dim    int

	chunks    []*types.Chunk
	centroids [][]float32
	// lists[i] holds indexes into chunks assigned to centroid i.
	lists   [][]int
	trained bool
}

// IVFConfig configures an IVFStore.
type IVFConfig struct {
	Metric Metric
	NList  int
	NProbe int
	// Seed makes k-means deterministic; zero picks a fixed default.
	Seed int64
}

const kmeansMaxIterations = 25

// NewIVFStore creates an IVF-flat store. NProbe is clamped to NList.
func NewIVFStore(cfg IVFConfig) (*IVFStore, error) {
	switch cfg.Metric {
	case MetricL2, MetricIP:
	case "":
		cfg.Metric = MetricL2
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, cfg.Metric)
	}
	if cfg.NList < 1 {
		cfg.NList = 16
	}
	if cfg.NProbe < 1 {
		cfg.NProbe = 1
	}
	if cfg.NProbe > cfg.NList {
		cfg.NProbe = cfg.NList
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}

	return &IVFStore{
		metric: cfg.Metric,
		nlist:  cfg.NList,
		nprobe: cfg.NProbe,
		seed:   cfg.Seed,
	}, nil
}

// Insert adds chunks and invalidates the trained partition.
func (s *IVFStore) Insert(_ context.Context, chunks []*types.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s", ErrMissingEmbedding, chunk.ID)
		}
		if s.dim == 0 {
			s.dim = len(chunk.Embedding)
		} else if len(chunk.Embedding) != s.dim {
			return fmt.Errorf("%w: chunk %s has dim %d, store has %d",
				ErrDimMismatch, chunk.ID, len(chunk.Embedding), s.dim)
		}
		s.chunks = append(s.chunks, chunk)
	}

	s.trained = false
	return nil
}

// Train runs k-means over the stored vectors. With fewer vectors than nlist
// the index stays untrained and searches fall back to an exact scan.
func (s *IVFStore) Train(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.chunks) < s.nlist {
		s.trained = false
		return nil
	}

	rng := rand.New(rand.NewSource(s.seed))

	// Initialize centroids from a random sample of the data.
	perm := rng.Perm(len(s.chunks))
	s.centroids = make([][]float32, s.nlist)
	for i := 0; i < s.nlist; i++ {
		src := s.chunks[perm[i]].Embedding
		centroid := make([]float32, s.dim)
		copy(centroid, src)
		s.centroids[i] = centroid
	}

	assignments := make([]int, len(s.chunks))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, chunk := range s.chunks {
			best := s.nearestCentroid(chunk.Embedding)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		s.recomputeCentroids(assignments)
	}

	s.lists = make([][]int, s.nlist)
	for i, c := range assignments {
		s.lists[c] = append(s.lists[c], i)
	}

	s.trained = true
	return nil
}

// Search probes the nprobe nearest inverted lists. An untrained index scans
// everything exactly.
func (s *IVFStore) Search(ctx context.Context, vector []float32, config *types.SearchConfig) ([]*types.SearchResult, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 {
		return []*types.SearchResult{}, nil
	}
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has dim %d, store has %d", ErrDimMismatch, len(vector), s.dim)
	}

	var candidates []int
	if !s.trained {
		candidates = make([]int, len(s.chunks))
		for i := range s.chunks {
			candidates[i] = i
		}
	} else {
		for _, list := range s.probeLists(vector) {
			candidates = append(candidates, s.lists[list]...)
		}
	}

	results := make([]*types.SearchResult, 0, len(candidates))
	for _, idx := range candidates {
		chunk := s.chunks[idx]
		if !matchesFilters(chunk, config.Filters) {
			continue
		}
		score := similarity(s.metric, vector, chunk.Embedding)
		if score < config.MinScore {
			continue
		}
		results = append(results, &types.SearchResult{Chunk: chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > config.TopK {
		results = results[:config.TopK]
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (s *IVFStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Trained reports whether the k-means partition is current.
func (s *IVFStore) Trained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trained
}

// Close implements Store.
func (s *IVFStore) Close() error { return nil }

func (s *IVFStore) nearestCentroid(vec []float32) int {
	best := 0
	bestDist := math.MaxFloat64
	for i, c := range s.centroids {
		d := l2Squared(vec, c)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// probeLists returns the indexes of the nprobe centroids closest to the query.
func (s *IVFStore) probeLists(vec []float32) []int {
	type dist struct {
		idx int
		d   float64
	}
	dists := make([]dist, len(s.centroids))
	for i, c := range s.centroids {
		dists[i] = dist{idx: i, d: l2Squared(vec, c)}
	}
	sort.Slice(dists, func(i, j int) bool { return dists[i].d < dists[j].d })

	n := s.nprobe
	if n > len(dists) {
		n = len(dists)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = dists[i].idx
	}
	return out
}

func (s *IVFStore) recomputeCentroids(assignments []int) {
	sums := make([][]float64, s.nlist)
	counts := make([]int, s.nlist)
	for i := range sums {
		sums[i] = make([]float64, s.dim)
	}

	for i, chunk := range s.chunks {
		c := assignments[i]
		counts[c]++
		for j, v := range chunk.Embedding {
			sums[c][j] += float64(v)
		}
	}

	for i := range s.centroids {
		if counts[i] == 0 {
			// Empty cluster keeps its previous centroid.
			continue
		}
		for j := range s.centroids[i] {
			s.centroids[i][j] = float32(sums[i][j] / float64(counts[i]))
		}
	}
}
