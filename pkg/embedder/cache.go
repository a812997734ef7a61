package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	badger "github.com/dgraph-io/badger/v4"
)

// CachedClient wraps a Client with a badger-backed embedding cache keyed by
// model and text. Cache misses fall through to the inner client and the
// computed vectors are written back.
type CachedClient struct {
	inner Client
	db    *badger.DB
	model string
}

// NewCachedClient opens (or creates) a badger store at path and wraps inner.
func NewCachedClient(inner Client, path, model string) (*CachedClient, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}

	return &CachedClient{inner: inner, db: db, model: model}, nil
}

// Embed returns cached vectors where available and embeds only the misses.
func (c *CachedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	err := c.db.View(func(txn *badger.Txn) error {
		for i, text := range texts {
			item, err := txn.Get(c.key(text))
			if err == badger.ErrKeyNotFound {
				missTexts = append(missTexts, text)
				missIdx = append(missIdx, i)
				continue
			}
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[i] = decodeVector(val)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read embedding cache: %w", err)
	}

	if len(missTexts) == 0 {
		return result, nil
	}

	computed, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missTexts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missTexts), len(computed))
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		for j, vec := range computed {
			result[missIdx[j]] = vec
			if err := txn.Set(c.key(missTexts[j]), encodeVector(vec)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("write embedding cache: %w", err)
	}

	return result, nil
}

// EmbedSingle generates an embedding for a single text.
func (c *CachedClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, ErrNoEmbeddings
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (c *CachedClient) Dimensions() int {
	return c.inner.Dimensions()
}

// Close closes the cache store and the inner client.
func (c *CachedClient) Close() error {
	if err := c.db.Close(); err != nil {
		return err
	}
	return c.inner.Close()
}

func (c *CachedClient) key(text string) []byte {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return sum[:]
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
