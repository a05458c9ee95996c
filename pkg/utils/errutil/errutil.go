package errutil

import (
	"context"
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/towebp/pkg/utils/async"
)

// Handle logs err with the request scoped logger and reports it to Sentry.
// The report is sent in the background so that the response is not delayed.
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	ctxlog.From(ctx).Error(msg, "error", err)

	// cancelled requests are not worth an alert
	if errors.Is(err, context.Canceled) {
		return
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		hub := sentry.GetHubFromContext(ctx)
		if hub == nil {
			hub = sentry.CurrentHub()
		}
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetContext("handler", sentry.Context{"message": msg})
			hub.CaptureException(err)
		})
		return nil
	})
}
