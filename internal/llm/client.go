package llm

import (
	"context"
)

// Client is the reasoning oracle boundary: a system prompt plus the user's
// free-text message in, the model's raw completion out. Prompt construction
// and response parsing live with the caller.
type Client interface {
	Chat(ctx context.Context, system, user string) (string, error)
}
