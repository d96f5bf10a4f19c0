package mailchimp

import (
	"context"
	"errors"
	"sync"

	"github.com/tweedegolf/mailchimp-v3-subscriber/pkg/httpclient"
)

type fakeResponse struct {
	status int
	body   []byte
}

func (r fakeResponse) Body() []byte    { return r.body }
func (r fakeResponse) StatusCode() int { return r.status }

// fakeClient records calls and returns a preset response or error.
type fakeClient struct {
	status int
	body   string
	err    error

	calls    int
	method   string
	url      string
	sentBody any
	headers  map[string]string
}

func (f *fakeClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	return f.do("GET", url, nil, headers)
}

func (f *fakeClient) Put(_ context.Context, url string, body any, headers map[string]string) (httpclient.Response, error) {
	return f.do("PUT", url, body, headers)
}

func (f *fakeClient) do(method, url string, body any, headers map[string]string) (httpclient.Response, error) {
	f.calls++
	f.method = method
	f.url = url
	f.sentBody = body
	f.headers = headers
	if f.err != nil {
		return nil, f.err
	}
	return fakeResponse{status: f.status, body: []byte(f.body)}, nil
}

type logEntry struct {
	msg string
	key string
	obj interface{}
}

// recordingLogger captures error-level entries.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) ErrorObj(msg, key string, obj interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{msg: msg, key: key, obj: obj})
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:443: connect: connection refused")

const testAPIKey = "0123456789abcdef-us6"

func newTestSubscriber(client *fakeClient, log Logger, listID string, opts ...Option) *Subscriber {
	opts = append([]Option{WithHTTPClient(client)}, opts...)
	s, err := New(log, testAPIKey, listID, opts...)
	if err != nil {
		panic(err)
	}
	return s
}
