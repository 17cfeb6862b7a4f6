package outline

import "context"

// Producer yields the raw outline JSON text for a document. Implementations
// typically wrap an LLM call; the returned string is fed through Parse.
type Producer interface {
	Produce(ctx context.Context, documentText string) (string, error)
}
