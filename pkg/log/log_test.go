package log_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/tagrss/pkg/log"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		wantErr error
		opts    log.Options
	}{
		"json":             {opts: log.Options{Level: "info", Format: "json"}},
		"logfmt":           {opts: log.Options{Level: "debug", Format: "logfmt"}},
		"text":             {opts: log.Options{Level: "warn", Format: "text"}},
		"warning alias":    {opts: log.Options{Level: "WARNING", Format: "JSON"}},
		"unknown level":    {opts: log.Options{Level: "trace", Format: "json"}, wantErr: log.ErrUnknownLogLevel},
		"unknown format":   {opts: log.Options{Level: "info", Format: "xml"}, wantErr: log.ErrUnknownLogFormat},
		"invalid argument": {opts: log.Options{Level: "", Format: "json"}, wantErr: log.ErrInvalidArgument},
		"bad file level": {
			opts:    log.Options{Level: "info", Format: "text", File: "unused.log", FileLevel: "loud"},
			wantErr: log.ErrUnknownLogLevel,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			l, err := log.New(&buf, tc.opts)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, l.Handler())
			require.NoError(t, l.Close())
		})
	}
}

func TestNew_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "tagrss.log")

	var console bytes.Buffer

	l, err := log.New(&console, log.Options{
		Level:     "warn",
		Format:    "logfmt",
		File:      path,
		FileLevel: "debug",
	})
	require.NoError(t, err)

	logger := slog.New(l.Handler())
	logger.Debug("fetching", slog.String("source", "hn"))
	logger.Warn("skipping folder", slog.String("name", "Bad"))
	require.NoError(t, l.Close())

	assert.NotContains(t, console.String(), "fetching")
	assert.Contains(t, console.String(), "skipping folder")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"fetching"`)
	assert.Contains(t, string(data), `"source":"hn"`)
	assert.Contains(t, string(data), `"msg":"skipping folder"`)
}

func TestNewHandler_JSONLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(log.NewHandler(&buf, slog.LevelWarn, log.FormatJSON))
	logger.Info("hidden")
	logger.Warn("shown", slog.String("folder", "AI News"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.NotContains(t, buf.String(), `"source"`)
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"folder":"AI News"`)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, name := range log.AllLevels {
		_, err := log.ParseLevel(name)
		require.NoError(t, err, name)
	}

	lvl, err := log.ParseLevel("Warning")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestTee(t *testing.T) {
	t.Parallel()

	var info, errs bytes.Buffer

	logger := slog.New(log.Tee(
		log.NewHandler(&info, slog.LevelInfo, log.FormatJSON),
		log.NewHandler(&errs, slog.LevelError, log.FormatJSON),
	)).With(slog.String("component", "update"))

	logger.Debug("dropped")
	logger.Info("fetched")
	logger.Error("failed", slog.Any("error", errors.New("boom")))

	assert.NotContains(t, info.String(), "dropped")
	assert.Contains(t, info.String(), "fetched")
	assert.Contains(t, info.String(), "failed")
	assert.Contains(t, info.String(), `"component":"update"`)

	assert.NotContains(t, errs.String(), "fetched")
	assert.Contains(t, errs.String(), "boom")
	assert.Contains(t, errs.String(), `"component":"update"`)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := log.NewRecorder(3, slog.LevelInfo)
	logger := slog.New(r)

	logger.Debug("ignored")

	for i := range 5 {
		logger.Info(fmt.Sprintf("entry %d", i), slog.Int("i", i))
	}

	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, "entry 2", entries[0].Message)
	assert.Equal(t, "entry 4", entries[2].Message)
	assert.Equal(t, "INFO", entries[2].Level)
	assert.Equal(t, int64(4), entries[2].Attrs["i"])

	r.Clear()
	assert.Empty(t, r.Entries())
}

func TestRecorder_AttrsAndGroups(t *testing.T) {
	t.Parallel()

	r := log.NewRecorder(0, slog.LevelDebug)
	logger := slog.New(r).With(slog.String("path", "folders.yaml")).WithGroup("folder")

	logger.Warn("skipping folder", slog.String("name", "Bad"), slog.Any("error", errors.New("invalid")))

	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{
		"path":         "folders.yaml",
		"folder.name":  "Bad",
		"folder.error": "invalid",
	}, entries[0].Attrs)
}

func TestRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	r := log.NewRecorder(10, slog.LevelInfo)
	logger := slog.New(r)

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Go(func() {
			logger.Info("msg", slog.Int("i", i))
		})
		wg.Go(func() {
			_ = r.Entries()
		})
	}

	wg.Wait()

	assert.Len(t, r.Entries(), 10)
}

func TestWithContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Default(), log.WithContext(t.Context()))

	r := log.NewRecorder(1, slog.LevelInfo)
	logger := slog.New(r)
	ctx := log.NewContext(context.Background(), logger)

	assert.Same(t, logger, log.WithContext(ctx))
}

func TestWithContext_Span(t *testing.T) {
	t.Parallel()

	r := log.NewRecorder(1, slog.LevelInfo)
	ctx := log.NewContext(context.Background(), slog.New(r))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 1},
		SpanID:  trace.SpanID{0, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
	})
	ctx = trace.ContextWithSpanContext(ctx, sc)

	log.WithContext(ctx).Info("update complete")

	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "4bf92f35", entries[0].Attrs["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entries[0].Attrs["span_id"])
}
