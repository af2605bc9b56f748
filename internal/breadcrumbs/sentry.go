package breadcrumbs

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Sentry sends handler failures to Sentry via a dedicated Hub, mirroring
// observability.SentryReporter.
type Sentry struct {
	hub *sentry.Hub
}

// SentryOption configures the underlying Sentry client.
type SentryOption func(*sentry.ClientOptions)

// WithEnvironment sets the Sentry environment tag.
func WithEnvironment(env string) SentryOption {
	return func(o *sentry.ClientOptions) { o.Environment = env }
}

// WithRelease sets the Sentry release tag.
func WithRelease(release string) SentryOption {
	return func(o *sentry.ClientOptions) { o.Release = release }
}

// NewSentry initializes a Sentry client against dsn and wraps it as a
// Reporter. An empty dsn disables transport but keeps the breadcrumb
// trail in memory, matching Sentry's own "no DSN" no-op client behavior.
func NewSentry(dsn string, opts ...SentryOption) (*Sentry, error) {
	clientOpts := sentry.ClientOptions{Dsn: dsn}
	for _, opt := range opts {
		opt(&clientOpts)
	}
	client, err := sentry.NewClient(clientOpts)
	if err != nil {
		return nil, err
	}
	return &Sentry{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *Sentry) ReportHandlerFailure(f *HandlerFailure, ctx *Context) {
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("handler", f.Handler)
		scope.SetTag("event", f.Event)
		if ctx != nil {
			scope.SetExtra("key", ctx.Key)
			scope.SetExtras(ctx.Extra)
		}
		if f.Panic != nil {
			s.hub.Recover(f.Panic)
			return
		}
		s.hub.CaptureException(f.Cause)
	})
}

func (s *Sentry) RecordBreadcrumb(category, message string, data map[string]any) {
	s.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}, nil)
}

func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}
