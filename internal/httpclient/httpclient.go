package httpclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// New returns an *http.Client backed by go-retryablehttp that makes a single
// attempt per request. Error responses are handed back unchanged so callers can
// decode the provider's error body.
func New(timeout time.Duration) *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = timeout
	client.Logger = requestLogger{slog.Default()}
	return client.StandardClient()
}

// requestLogger demotes retryablehttp's per-request chatter to debug. Failed
// requests are reported by the caller with the record context attached, so
// the transport never logs at error level.
type requestLogger struct {
	log *slog.Logger
}

func (l requestLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l requestLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l requestLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l requestLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn(msg, keysAndValues...)
}
