// File: internal/capture/session_test.go
package capture

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
	"github.com/xkilldash9x/mimic-cli/internal/config"
)

func TestAllocatorOptions(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.CaptureConfig
	}{
		{
			name: "Defaults",
			cfg:  config.CaptureConfig{},
		},
		{
			name: "Headless With GPU Disabled",
			cfg:  config.CaptureConfig{Headless: true, DisableGPU: true},
		},
		{
			name: "Viewport",
			cfg: config.CaptureConfig{
				Viewport: map[string]int{"width": 1440, "height": 900},
			},
		},
		{
			name: "Extra Args With And Without Prefix",
			cfg: config.CaptureConfig{
				Args: []string{"--no-first-run", "lang=en-US"},
			},
		},
	}

	for _, tc := range tests {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := allocatorOptions(tt.cfg)
			assert.NotEmpty(t, opts)
			// Options are opaque funcs; the count check proves our flags were
			// appended on top of the chromedp defaults.
			assert.Greater(t, len(opts), len(chromedp.DefaultExecAllocatorOptions))
		})
	}
}

func TestCombineContextCancelsWithCaller(t *testing.T) {
	tab, tabCancel := context.WithCancel(context.Background())
	defer tabCancel()
	caller, callerCancel := context.WithCancel(context.Background())

	combined, cancel := combineContext(tab, caller)
	defer cancel()

	require.NoError(t, combined.Err())
	callerCancel()

	select {
	case <-combined.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("combined context was not canceled when the caller's was")
	}
}

func TestCombineContextCancelsWithTab(t *testing.T) {
	tab, tabCancel := context.WithCancel(context.Background())
	caller, callerCancel := context.WithCancel(context.Background())
	defer callerCancel()

	combined, cancel := combineContext(tab, caller)
	defer cancel()

	tabCancel()

	select {
	case <-combined.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("combined context was not canceled when the tab's was")
	}
}

func TestOperationContextAppliesTimeout(t *testing.T) {
	s := &Session{tabCtx: context.Background()}

	opCtx, cancel := s.operationContext(context.Background(), 10*time.Millisecond)
	defer cancel()

	deadline, ok := opCtx.Deadline()
	require.True(t, ok, "a positive timeout must set a deadline")
	assert.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, time.Second)

	opCtx2, cancel2 := s.operationContext(context.Background(), 0)
	defer cancel2()
	_, ok = opCtx2.Deadline()
	assert.False(t, ok, "zero timeout must leave the context unbounded")
}

func TestStepsReturnsACopy(t *testing.T) {
	s := &Session{steps: []schemas.Step{
		{Number: 0, Description: "initial state"},
		{Number: 1, Description: "clicked login"},
	}}

	got := s.Steps()
	require.Len(t, got, 2)

	got[0].Description = "mutated"
	assert.Equal(t, "initial state", s.steps[0].Description, "callers must not be able to mutate recorded steps")
}

func TestWorkflowAssembly(t *testing.T) {
	s := &Session{steps: []schemas.Step{
		{Number: 0, Description: "initial state", URL: "https://example.com/login"},
		{Number: 1, Description: "typed username"},
	}}

	w := s.Workflow("Login Flow", "records the login page")

	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "Login Flow", w.Name)
	assert.Equal(t, "records the login page", w.Description)
	assert.WithinDuration(t, time.Now().UTC(), w.CreatedAt, time.Minute)
	require.Len(t, w.Steps, 2)
	assert.Equal(t, 1, w.TransitionCount())
}

func TestCloseIsIdempotent(t *testing.T) {
	s := &Session{}
	s.Close()
	s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s = &Session{tabCancel: cancel, allocCancel: func() {}}
	s.Close()
	s.Close()
	assert.Error(t, ctx.Err(), "closing must cancel the tab context")
}
