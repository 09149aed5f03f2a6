// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gopkg.microglot.org/luaparser.go/internal/compiler"
	"gopkg.microglot.org/luaparser.go/internal/compiler/lua"
	"gopkg.microglot.org/luaparser.go/internal/config"
	"gopkg.microglot.org/luaparser.go/internal/dump"
	"gopkg.microglot.org/luaparser.go/internal/fs"
)

var version = "dev"

// errReported signals that diagnostics were already written to stderr.
var errReported = errors.New("luaparse: errors reported")

type opts struct {
	Config     string
	Verbose    bool
	Roots      []string
	DumpTokens bool
	DumpTree   bool
	Format     string
	MaxDepth   int
	Jobs       int
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := newRootCommand(os.LookupEnv)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

func newRootCommand(lookupEnv func(string) (string, bool)) *cobra.Command {
	op := &opts{}
	root := &cobra.Command{
		Use:   "luaparse [flags] FILE|DIR...",
		Short: "Parse Lua 5.4 source into a lossless syntax tree",
		Long: `luaparse lexes and parses Lua 5.4 files. Every node of the tree keeps
the tokens it was built from, comments and whitespace included.

Directories are searched recursively for .lua files. Without a dump flag
the files are only checked and errors are written to stderr.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, lookupEnv, op, args)
		},
	}
	bindPersistentFlags(root.PersistentFlags(), op)
	bindFlags(root.Flags(), op)
	root.AddCommand(newVersionCommand())
	return root
}

func bindPersistentFlags(flags *pflag.FlagSet, op *opts) {
	flags.StringVar(&op.Config, "config", "", "TOML configuration file.")
	flags.BoolVarP(&op.Verbose, "verbose", "v", false, "Log progress to stderr.")
}

func bindFlags(flags *pflag.FlagSet, op *opts) {
	flags.StringSliceVar(&op.Roots, "root", []string{"."}, "Root search paths for relative targets.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream of every file.")
	flags.BoolVar(&op.DumpTree, "dump-tree", false, "Output the parse tree of every file.")
	flags.StringVar(&op.Format, "format", "text", "Tree output format: text, json, or yaml.")
	flags.IntVar(&op.MaxDepth, "max-depth", lua.DefaultMaxDepth, "Maximum nesting of statements and expressions.")
	flags.IntVarP(&op.Jobs, "jobs", "j", 0, "Files parsed in parallel. Zero uses every CPU.")
}

// mergeConfig fills every flag the user did not set from the file.
func mergeConfig(flags *pflag.FlagSet, op *opts, cfg *config.Config) {
	if !flags.Changed("root") {
		op.Roots = cfg.Compiler.Roots
	}
	if !flags.Changed("dump-tokens") {
		op.DumpTokens = cfg.Output.DumpTokens
	}
	if !flags.Changed("dump-tree") {
		op.DumpTree = cfg.Output.DumpTree
	}
	if !flags.Changed("format") {
		op.Format = cfg.Output.Format
	}
	if !flags.Changed("max-depth") && cfg.Parser.MaxDepth > 0 {
		op.MaxDepth = cfg.Parser.MaxDepth
	}
	if !flags.Changed("jobs") {
		op.Jobs = cfg.Compiler.MaxConcurrency
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newFS(lookupEnv func(string) (string, bool), roots []string) (fs.FileSystemMulti, error) {
	f, err := compiler.NewDefaultFS(lookupEnv)
	if err != nil {
		return nil, err
	}
	mf := make(fs.FileSystemMulti, 0, len(roots)+2)
	for _, root := range roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return nil, err
		}
		mf = append(mf, rf)
	}
	mf = append(mf, f)
	// Absolute targets resolve against the file system root last.
	sysRoot, err := fs.NewFileSystemLocal(string(filepath.Separator))
	if err != nil {
		return nil, err
	}
	return append(mf, sysRoot), nil
}

func run(cmd *cobra.Command, lookupEnv func(string) (string, bool), op *opts, targets []string) error {
	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	logger := newLogger(stderr, op.Verbose)

	cfg := config.Default()
	if op.Config != "" {
		loaded, err := config.Load(op.Config)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debug("loaded config", "path", op.Config)
	}
	mergeConfig(cmd.Flags(), op, cfg)
	format, err := dump.ParseFormat(op.Format)
	if err != nil {
		return err
	}

	mf, err := newFS(lookupEnv, op.Roots)
	if err != nil {
		return err
	}
	c, err := compiler.New(
		compiler.OptionWithLookupEnv(lookupEnv),
		compiler.OptionWithFS(mf),
		compiler.OptionWithMaxConcurrency(op.Jobs),
		compiler.OptionWithParserOptions(lua.WithMaxDepth(op.MaxDepth)),
	)
	if err != nil {
		return err
	}

	started := time.Now()
	logger.Debug("parsing", "targets", len(targets), "roots", op.Roots, "max_depth", op.MaxDepth, "jobs", op.Jobs)
	out, err := c.Parse(ctx, &compiler.Request{
		Files:      targets,
		TokensOnly: op.DumpTokens && !op.DumpTree,
	})
	if out != nil {
		for _, result := range out.Results {
			logger.Debug("parsed", "uri", result.URI, "tokens", len(result.Tokens))
			if op.DumpTokens {
				if errDump := dump.Tokens(stdout, result.Tokens); errDump != nil {
					return errDump
				}
			}
			if op.DumpTree && result.Chunk != nil {
				if errDump := dump.Tree(stdout, result.Chunk, format); errDump != nil {
					return errDump
				}
			}
		}
		logger.Debug("done", "files", len(out.Results), "elapsed", time.Since(started))
	}
	if err != nil {
		var me compiler.MultiException
		if errors.As(err, &me) {
			for _, err := range me {
				fmt.Fprintln(stderr, err.Error())
			}
			return errReported
		}
		return err
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "luaparse %s\n", version)
			fmt.Fprintf(w, "  Go Version: %s\n", runtime.Version())
			fmt.Fprintf(w, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
