// File: cmd/mimic/main_test.go
package main

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapCrashHooks redirects the injection points so handlePanic can run inside
// a test process without writing files or exiting.
func swapCrashHooks(t *testing.T) (written *[]byte, exitCode *int) {
	t.Helper()

	var captured []byte
	var code = -1

	origWrite, origExit := osWriteFile, osExit
	osWriteFile = func(name string, data []byte, perm fs.FileMode) error {
		assert.Equal(t, panicLogFile, name)
		captured = data
		return nil
	}
	osExit = func(c int) { code = c }
	t.Cleanup(func() {
		osWriteFile = origWrite
		osExit = origExit
	})
	return &captured, &code
}

func TestHandlePanicWritesCrashLog(t *testing.T) {
	written, exitCode := swapCrashHooks(t)

	func() {
		defer handlePanic()
		panic("boom")
	}()

	require.NotNil(t, *written)
	assert.Contains(t, string(*written), "panic: boom")
	assert.Contains(t, string(*written), "goroutine")
	assert.Equal(t, 1, *exitCode)
}

func TestHandlePanicFallsBackToStderrOnWriteFailure(t *testing.T) {
	_, exitCode := swapCrashHooks(t)
	osWriteFile = func(string, []byte, fs.FileMode) error {
		return errors.New("disk full")
	}

	func() {
		defer handlePanic()
		panic("boom")
	}()

	// The crash is still fatal even when the log cannot be written.
	assert.Equal(t, 1, *exitCode)
}

func TestHandlePanicIsQuietWithoutPanic(t *testing.T) {
	written, exitCode := swapCrashHooks(t)

	func() {
		defer handlePanic()
	}()

	assert.Nil(t, *written)
	assert.Equal(t, -1, *exitCode)
}
