package port

import "context"

// ResponseCache stores inference responses keyed by frame and prompt
// content. Get returns ok=false on a miss.
type ResponseCache interface {
	Get(ctx context.Context, frame []byte, prompt string) (response string, ok bool)
	Put(ctx context.Context, frame []byte, prompt string, response string) error
}
