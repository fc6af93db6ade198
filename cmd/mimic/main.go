// File: cmd/mimic/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/xkilldash9x/mimic-cli/cmd"
	"github.com/xkilldash9x/mimic-cli/internal/observability"
)

const panicLogFile = "panic.log"

const asciiArt = `
    ____ ___  (_)___ ___  (_)____
   / __ '__ \/ / __ '__ \/ / ___/     "Show it once."
  / / / / / / / / / / / / / /__
 /_/ /_/ /_/_/_/ /_/ /_/_/\___/       [ mimic v1.0 ]

  record -> analyze -> generate -> run

`

// Function variables for dependency injection in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
)

func main() {
	// Global panic handler: a crash must leave a readable trace behind.
	defer handlePanic()

	// Listen for interrupt signals (SIGINT, SIGTERM) for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// If arguments are passed, execute the command directly and exit.
	if len(os.Args) > 1 {
		if err := cmd.Execute(ctx); err != nil {
			observability.Sync()
			if errors.Is(err, context.Canceled) {
				// Graceful shutdown is not a failure.
				osExit(0)
			} else {
				osExit(1)
			}
		}
		observability.Sync()
		return
	}

	// -- Interactive mode --
	fmt.Print(asciiArt)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("mimic > ")
		if !scanner.Scan() {
			break // EOF (Ctrl+D)
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		executeInteractiveCommand(ctx, line)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading from stdin:", err)
		observability.Sync()
		osExit(1)
	}

	observability.Sync()
	fmt.Println("Exiting mimic.")
}

// executeInteractiveCommand runs one line from the interactive shell. Each
// line gets a brand-new command instance so flags and config bindings from one
// invocation never leak into the next.
func executeInteractiveCommand(ctx context.Context, line string) {
	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(strings.Fields(line))

	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "Error: command panicked: %v\n", r)
			}
		}()
		// Errors are already printed by cobra; the shell itself stays up.
		_ = rootCmd.ExecuteContext(ctx)
	}()
}

// handlePanic writes the panic and its stack to panicLogFile so a crash in
// the field produces something attachable to a bug report.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}

	// Flush whatever the logger still buffers before we touch the disk.
	observability.Sync()

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())

	if err := osWriteFile(panicLogFile, []byte(panicMessage), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
		osExit(1)
		return // Return facilitates testing when osExit is mocked.
	}

	fmt.Fprintf(os.Stderr, "\nmimic crashed. Details logged to %s\n", panicLogFile)
	osExit(1)
}
