package rag

import (
	"context"
	"fmt"
	"strings"

	"estate-insights/internal/embedding"
	"estate-insights/internal/index"
	"estate-insights/internal/llm"
	"estate-insights/internal/models"
	"estate-insights/internal/session"
)

// Responder answers chat turns. A session with no index gets the raw query as
// the whole prompt; once an index exists every query is grounded in retrieved
// context.
type Responder struct {
	embedder  embedding.Embedder
	completer llm.Completer
	topK      int
}

func NewResponder(embedder embedding.Embedder, completer llm.Completer, topK int) *Responder {
	if topK <= 0 {
		topK = 3
	}
	return &Responder{embedder: embedder, completer: completer, topK: topK}
}

// Answer appends the user turn, runs the branch for the session's state and,
// on success, appends the assistant turn. A failed completion leaves the user
// turn in place with no reply for that turn.
func (r *Responder) Answer(ctx context.Context, sess *session.Session, query string) (string, error) {
	sess.Append(models.Message{Role: models.RoleUser, Content: query})

	var prompt string
	switch sess.State() {
	case session.StateGrounded:
		chunks, err := r.Retrieve(ctx, sess.Index(), query)
		if err != nil {
			return "", err
		}
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}
		prompt = fmt.Sprintf(models.GroundedPromptTemplate, strings.Join(texts, "\n"), query)
	default:
		prompt = query
	}

	reply, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return "", &models.CompletionError{Err: err}
	}

	sess.Append(models.Message{Role: models.RoleAssistant, Content: reply})
	return reply, nil
}

// Retrieve embeds the query with the indexing model and returns the topK
// nearest chunks, nearest first.
func (r *Responder) Retrieve(ctx context.Context, idx *index.Index, query string) ([]models.Chunk, error) {
	if idx == nil {
		return nil, &models.NoIndexError{}
	}
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, &models.EmbeddingError{Err: err}
	}
	return idx.Search(ctx, vec, r.topK)
}
