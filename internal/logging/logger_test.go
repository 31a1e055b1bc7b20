package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reoring/reqschema/internal/logging"
)

func TestCtx_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	defer logging.SetLogger(prev)
	logging.SetLogger(zerolog.New(&buf))

	ctx := logging.ContextWithRequestID(context.Background(), "req-1")
	logging.Ctx(ctx).Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) || !strings.Contains(out, "hello") {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	if id := logging.RequestIDFromContext(context.Background()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if id := logging.GenerateRequestID(); len(id) != 36 {
		t.Fatalf("expected uuid, got %q", id)
	}
}

func TestInit_Levels(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	defer func() {
		logging.Init(logging.Config{})
		logging.SetLogger(prev)
	}()

	logging.Init(logging.Config{Level: "warn", Output: &buf})
	logging.Info().Msg("dropped")
	logging.Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Fatalf("level filter not applied: %s", out)
	}
}
