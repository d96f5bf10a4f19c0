package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Non-2xx responses are returned as responses, not errors; err is reserved for
// transport failures.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Put(ctx context.Context, url string, body any, headers map[string]string) (Response, error)
}
