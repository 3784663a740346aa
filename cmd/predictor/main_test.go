package main

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"energy-predictor/internal/cfg"
	"energy-predictor/internal/common"
	"energy-predictor/internal/ml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSignals_ReloadThenShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	reloads := make(chan struct{}, 2)
	done := make(chan struct{})
	go func() {
		handleSignals(ctx, sigChan, cancel, func() { reloads <- struct{}{} })
		close(done)
	}()

	sigChan <- syscall.SIGHUP
	select {
	case <-reloads:
	case <-time.After(time.Second):
		t.Fatal("SIGHUP did not trigger a reload")
	}
	select {
	case <-done:
		t.Fatal("SIGHUP should not stop the service")
	default:
	}

	sigChan <- syscall.SIGTERM
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SIGTERM did not stop the service")
	}
	assert.Error(t, ctx.Err(), "context should be cancelled on shutdown")
}

func TestHandleSignals_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		handleSignals(ctx, make(chan os.Signal), cancel, func() { t.Error("unexpected reload") })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancelled context did not stop the service")
	}
}

func TestReloadModels_PicksUpNewArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ml.WriteSampleModels(dir))
	mm, err := ml.NewModelManager(dir, common.ModelDecisionTree, nil)
	require.NoError(t, err)

	before, err := mm.Get(common.ModelDecisionTree)
	require.NoError(t, err)

	// Swap the tree file for the linear artifact, keeping the catalog.
	data, err := os.ReadFile(filepath.Join(dir, "linear.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "decision_tree.json"), data, 0o644))

	cached, err := mm.Get(common.ModelDecisionTree)
	require.NoError(t, err)
	assert.Same(t, before, cached)

	reloadModels(cfg.Settings{ModelsDir: dir, PreloadModels: true}, mm)

	after, err := mm.Get(common.ModelDecisionTree)
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.Equal(t, ml.KindLinear, after.Metadata.Kind)
}
