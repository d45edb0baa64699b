// Package cli implements the interactive driver and file runner. It
// owns prompting, chunking and reporting; the language core below it
// never touches I/O except through registered runtime symbols.
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/laurelkeys/kaleidoscopy/internal/config"
	"github.com/laurelkeys/kaleidoscopy/internal/diagnostics"
	"github.com/laurelkeys/kaleidoscopy/internal/history"
	"github.com/laurelkeys/kaleidoscopy/internal/prettyprinter"
	"github.com/laurelkeys/kaleidoscopy/internal/session"
	"github.com/laurelkeys/kaleidoscopy/internal/vm"
)

// Run is the process entry point. It returns the exit code.
func Run(args []string) int {
	flags := flag.NewFlagSet("kaleidoscopy", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	configPath := flags.String("config", config.DefaultConfigFile, "path to the YAML run configuration")
	historyPath := flags.String("history", "", "path to the SQLite transcript (overrides config)")
	dumpAST := flags.Bool("dump-ast", false, "print each parsed unit with explicit grouping")
	dumpCode := flags.Bool("dump-code", false, "disassemble each compiled unit")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadIfPresent(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kaleidoscopy: %v\n", err)
		return 1
	}
	if *historyPath != "" {
		cfg.History = *historyPath
	}
	cfg.DumpAST = cfg.DumpAST || *dumpAST
	cfg.DumpCode = cfg.DumpCode || *dumpCode

	sess := session.New(os.Stdout)

	if flags.NArg() > 0 {
		return runFile(sess, cfg, flags.Arg(0))
	}
	return runREPL(sess, cfg)
}

func runFile(sess *session.Session, cfg *config.Config, path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kaleidoscopy: %v\n", err)
		return 1
	}

	results, errs := sess.Interpret(string(source))
	for _, result := range results {
		report(os.Stdout, cfg, result)
	}
	for _, diag := range errs {
		diag.File = path
		fmt.Fprintln(os.Stderr, diag.Error())
	}

	if len(errs) > 0 {
		return 1
	}
	return 0
}

func runREPL(sess *session.Session, cfg *config.Config) int {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	var store *history.Store
	if cfg.History != "" {
		var err error
		store, err = history.Open(cfg.History)
		if err != nil {
			fmt.Fprintf(os.Stderr, "kaleidoscopy: history disabled: %v\n", err)
		} else {
			defer store.Close()
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			fmt.Fprint(os.Stdout, cfg.Prompt)
		}
		if !scanner.Scan() {
			if interactive {
				fmt.Fprintln(os.Stdout)
			}
			return 0
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		results, errs := sess.Interpret(line)
		for _, result := range results {
			report(os.Stdout, cfg, result)
		}
		for _, diag := range errs {
			fmt.Fprintln(os.Stderr, diag.Error())
		}

		if store != nil {
			recordLine(store, line, results, errs)
		}
	}
}

// report prints a processed unit's outcome, plus any requested dumps.
func report(out io.Writer, cfg *config.Config, result session.Result) {
	if cfg.DumpAST {
		fmt.Fprintf(out, "ast> %s\n", prettyprinter.Print(result.Unit))
	}
	if cfg.DumpCode && result.Compiled != nil && result.Compiled.Chunk != nil {
		fmt.Fprint(out, vm.Disassemble(result.Compiled.Chunk, result.Compiled.Name))
	}
	if result.HasValue {
		fmt.Fprintf(out, "=> %g\n", result.Value)
	}
}

func recordLine(store *history.Store, line string, results []session.Result, errs []*diagnostics.DiagnosticError) {
	var value *float64
	for _, result := range results {
		if result.HasValue {
			v := result.Value
			value = &v
		}
	}
	var errMsg string
	if len(errs) > 0 {
		errMsg = errs[0].Error()
	}
	if err := store.Append(context.Background(), line, value, errMsg); err != nil {
		fmt.Fprintf(os.Stderr, "kaleidoscopy: history: %v\n", err)
	}
}
