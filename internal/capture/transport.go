package capture

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Wrap returns a RoundTripper that forwards to next and observes responses
// from the link generation endpoint. The response seen by the caller is
// the upstream response, byte for byte; observation starts once the caller
// has read the body to EOF.
func (ic *Interceptor) Wrap(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{next: next, ic: ic}
}

type transport struct {
	next http.RoundTripper
	ic   *Interceptor
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil || resp == nil || resp.Body == nil {
		return resp, err
	}

	target := req.URL.String()
	if !t.ic.Matches(target) {
		return resp, nil
	}

	resp.Body = &teeBody{
		rc:       resp.Body,
		ic:       t.ic,
		ctx:      context.WithoutCancel(req.Context()),
		target:   target,
		encoding: resp.Header.Get("Content-Encoding"),
		limit:    t.ic.maxBody,
	}
	return resp, nil
}

// teeBody copies what the caller reads, up to limit bytes, and schedules
// observation of the copy when the caller hits EOF.
type teeBody struct {
	rc       io.ReadCloser
	ic       *Interceptor
	ctx      context.Context
	target   string
	encoding string
	limit    int64

	mu       sync.Mutex
	buf      bytes.Buffer
	overflow bool
	done     bool
}

func (b *teeBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)

	b.mu.Lock()
	defer b.mu.Unlock()

	if n > 0 && !b.overflow && !b.done {
		if int64(b.buf.Len()+n) > b.limit {
			b.overflow = true
			b.buf.Reset()
		} else {
			b.buf.Write(p[:n])
		}
	}

	if err == io.EOF && !b.done {
		b.done = true
		if b.overflow {
			b.ic.dropped.Add(1)
			b.ic.log.Warn("response too large to observe",
				zap.String("target", b.target), zap.Int64("limit", b.limit))
		} else {
			raw := append([]byte(nil), b.buf.Bytes()...)
			b.ic.observeAsync(b.ctx, b.target, b.encoding, raw)
		}
		b.buf.Reset()
	}

	return n, err
}

func (b *teeBody) Close() error {
	return b.rc.Close()
}
