package index

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"estate-insights/internal/embedding"
	"estate-insights/internal/models"
)

const collectionName = "session"

// Index is an in-memory nearest-neighbor index over one upload batch. A
// session owns at most one; every new batch builds a replacement.
type Index struct {
	collection *chromem.Collection
	chunks     []models.Chunk
}

// Build embeds every chunk and fills a fresh chromem collection. All
// embeddings are computed before anything is stored, so a provider failure on
// any chunk leaves no partial index behind.
func Build(ctx context.Context, embedder embedding.Embedder, chunks []models.Chunk) (*Index, error) {
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, err := embedder.EmbedQuery(ctx, chunk.Text)
		if err != nil {
			return nil, &models.EmbeddingError{Err: fmt.Errorf("chunk %d: %w", chunk.Seq, err)}
		}
		vectors[i] = vec
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(chunk.Seq),
			Content:   chunk.Text,
			Metadata:  map[string]string{"source": chunk.Source},
			Embedding: vectors[i],
		}
	}
	if len(docs) > 0 {
		if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("adding documents: %w", err)
		}
	}

	log.Debug().Int("chunks", len(chunks)).Msg("Built vector index")
	return &Index{collection: collection, chunks: chunks}, nil
}

func (idx *Index) Len() int { return len(idx.chunks) }

// Search returns up to k chunks nearest to the query vector, nearest first.
// Equal similarities rank by insertion order, earliest first.
func (idx *Index) Search(ctx context.Context, queryVec []float32, k int) ([]models.Chunk, error) {
	if idx.Len() == 0 {
		return nil, &models.NoIndexError{}
	}

	// The corpus is small enough to score in full; ranking over all hits
	// keeps the insertion-order tie-break exact even at the k cutoff.
	results, err := idx.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryVec,
		NResults:       idx.Len(),
	})
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return seq(results[i].ID) < seq(results[j].ID)
	})

	if k > len(results) {
		k = len(results)
	}
	out := make([]models.Chunk, 0, k)
	for _, res := range results[:k] {
		out = append(out, idx.chunks[seq(res.ID)])
	}
	return out, nil
}

func seq(id string) int {
	n, _ := strconv.Atoi(id)
	return n
}
