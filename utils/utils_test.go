package utils

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderJSON_Plain(t *testing.T) {
	var buf bytes.Buffer
	err := RenderJSON(&buf, map[string][]string{"script-src": {"/static/app-1.js"}}, "dracula", true)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"script-src\": [\n    \"/static/app-1.js\"\n  ]\n}\n", buf.String())
}

func TestRenderJSON_Highlighted(t *testing.T) {
	var buf bytes.Buffer
	err := RenderJSON(&buf, map[string]int{"files": 2}, "dracula", false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "files")
}

func TestGracefulShutdown_RunsCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	cleaned := false

	go func() {
		GracefulShutdown(ctx, cancel, func() { cleaned = true })
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not complete")
	}
	assert.True(t, cleaned)
}
