package errutil_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/towebp/pkg/utils/errutil"
)

func newContext(t *testing.T, buf *bytes.Buffer) (context.Context, chan *sentry.Event) {
	t.Helper()

	events := make(chan *sentry.Event, 1)
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			events <- event
			return nil
		},
	})
	gt.NoError(t, err).Required()

	logger := slog.New(slog.NewTextHandler(buf, nil))
	ctx := ctxlog.With(context.Background(), logger)
	ctx = sentry.SetHubOnContext(ctx, sentry.NewHub(client, sentry.NewScope()))
	return ctx, events
}

func TestHandle(t *testing.T) {
	t.Run("logs and reports the error", func(t *testing.T) {
		var buf bytes.Buffer
		ctx, events := newContext(t, &buf)

		errutil.Handle(ctx, "Failed to convert image", goerr.New("decode failed", goerr.V("name", "cat.png")))

		gt.True(t, strings.Contains(buf.String(), "Failed to convert image"))
		gt.True(t, strings.Contains(buf.String(), "decode failed"))

		select {
		case ev := <-events:
			gt.True(t, len(ev.Exception) > 0)
		case <-time.After(time.Second):
			t.Fatal("error was not reported")
		}
	})

	t.Run("cancelled requests are only logged", func(t *testing.T) {
		var buf bytes.Buffer
		ctx, events := newContext(t, &buf)

		errutil.Handle(ctx, "Failed to convert image", goerr.Wrap(context.Canceled, "aborted"))

		gt.True(t, strings.Contains(buf.String(), "Failed to convert image"))
		select {
		case <-events:
			t.Fatal("cancelled request must not be reported")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		var buf bytes.Buffer
		ctx, _ := newContext(t, &buf)

		errutil.Handle(ctx, "nothing", nil)
		gt.V(t, buf.Len()).Equal(0)
	})

	t.Run("plain errors are handled too", func(t *testing.T) {
		var buf bytes.Buffer
		ctx, events := newContext(t, &buf)

		errutil.Handle(ctx, "Failed to build archive", errors.New("disk full"))

		select {
		case <-events:
		case <-time.After(time.Second):
			t.Fatal("error was not reported")
		}
	})
}
