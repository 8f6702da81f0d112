// Package capture observes downloader API traffic and records the links it
// returns.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/runnerr0/linkhist/internal/storage"
)

const (
	// DefaultPattern is the substring that marks a link generation request.
	DefaultPattern = "api/downloader/add"

	defaultMaxBodyBytes = 1 << 20
)

// Sink receives each newly observed link record.
type Sink interface {
	Captured(ctx context.Context, rec storage.LinkRecord)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, rec storage.LinkRecord)

// Captured calls f.
func (f SinkFunc) Captured(ctx context.Context, rec storage.LinkRecord) { f(ctx, rec) }

// Interceptor watches request/response pairs for the link generation
// endpoint and hands successful results to its Sink. Nothing it does can
// fail the observed request.
type Interceptor struct {
	sink     Sink
	pattern  string
	maxBody  int64
	log      *zap.Logger
	wg       sync.WaitGroup
	captured atomic.Int64
	dropped  atomic.Int64
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithPattern sets the endpoint substring to match.
func WithPattern(pattern string) Option {
	return func(ic *Interceptor) {
		if pattern != "" {
			ic.pattern = pattern
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is copied for
// observation. Larger bodies pass through unobserved.
func WithMaxBodyBytes(n int) Option {
	return func(ic *Interceptor) {
		if n > 0 {
			ic.maxBody = int64(n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(ic *Interceptor) {
		if log != nil {
			ic.log = log
		}
	}
}

// New returns an Interceptor forwarding records to sink.
func New(sink Sink, opts ...Option) *Interceptor {
	ic := &Interceptor{
		sink:    sink,
		pattern: DefaultPattern,
		maxBody: defaultMaxBodyBytes,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ic)
	}
	ic.log = ic.log.Named("capture")
	return ic
}

// Matches reports whether target is the link generation endpoint.
func (ic *Interceptor) Matches(target string) bool {
	return strings.Contains(target, ic.pattern)
}

// Observe inspects one completed response. Bodies from other endpoints are
// ignored; malformed or unsuccessful payloads are logged and dropped.
func (ic *Interceptor) Observe(ctx context.Context, target string, body []byte) {
	if !ic.Matches(target) {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			ic.dropped.Add(1)
			ic.log.Error("panic while observing response",
				zap.String("target", target), zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	rec, err := ParsePayload(body)
	if err != nil {
		ic.dropped.Add(1)
		if errors.Is(err, ErrMalformedPayload) {
			ic.log.Warn("ignoring malformed response", zap.String("target", target), zap.Error(err))
		} else {
			ic.log.Debug("response carries no link", zap.String("target", target), zap.Error(err))
		}
		return
	}

	ic.captured.Add(1)
	ic.log.Info("link captured", zap.String("id", rec.ID), zap.String("filename", rec.Filename))
	ic.sink.Captured(ctx, rec)
}

// observeAsync runs Observe on its own goroutine, tracked by Wait.
func (ic *Interceptor) observeAsync(ctx context.Context, target, encoding string, raw []byte) {
	ic.wg.Add(1)
	go func() {
		defer ic.wg.Done()
		body, err := decodeBody(encoding, raw, ic.maxBody)
		if err != nil {
			ic.dropped.Add(1)
			ic.log.Warn("cannot decode response body", zap.String("target", target), zap.Error(err))
			return
		}
		ic.Observe(ctx, target, body)
	}()
}

// Wait blocks until every in-flight observation has finished.
func (ic *Interceptor) Wait() {
	ic.wg.Wait()
}

// Stats reports how many responses produced a record and how many matching
// responses were dropped.
func (ic *Interceptor) Stats() (captured, dropped int64) {
	return ic.captured.Load(), ic.dropped.Load()
}

func (ic *Interceptor) String() string {
	return fmt.Sprintf("capture(%s)", ic.pattern)
}
