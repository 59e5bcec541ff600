// Command patchc compiles a patch YAML fixture to IR and prints a
// diagnostics report, the same "load, run, report" shape as the teacher's
// test mains (test/histogram/main.go), minus the CGRA simulation itself.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/sarchlab/patchc/blocks"
	"github.com/sarchlab/patchc/compiler"
	"github.com/sarchlab/patchc/patch"
)

func main() {
	patchPath := flag.String("patch", "", "path to a patch YAML fixture")
	logPath := flag.String("log", "patchc_run.log", "path to the trace log file")
	flag.Parse()

	if *patchPath == "" {
		fmt.Fprintln(os.Stderr, "patchc: -patch is required")
		os.Exit(2)
	}

	runFile, err := os.Create(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "patchc: failed to create log file %s: %v\n", *logPath, err)
		os.Exit(1)
	}
	defer runFile.Close()

	handler := slog.NewJSONHandler(runFile, &slog.HandlerOptions{Level: compiler.LevelTrace})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	compiler.SetLogger(logger)

	p, err := patch.LoadYAML(*patchPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "patchc: %v\n", err)
		os.Exit(1)
	}

	c := compiler.NewBuilder().WithLogger(logger).Build()
	result, err := c.Compile(p)
	if err != nil {
		var failure *compiler.Failure
		if ok := asFailure(err, &failure); ok {
			failure.Report.Write(os.Stdout)
			fmt.Fprintf(os.Stderr, "patchc: compile failed (session %s): %v\n", failure.SessionID, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "patchc: compile failed: %v\n", err)
		os.Exit(1)
	}

	result.Report.Write(os.Stdout)
	fmt.Printf("patchc: session %s compiled %d blocks into %d schedule steps\n", result.SessionID, len(p.Blocks), len(result.Schedule))
}

func asFailure(err error, out **compiler.Failure) bool {
	f, ok := err.(*compiler.Failure)
	if ok {
		*out = f
	}
	return ok
}
