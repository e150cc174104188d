package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/diesel-lang/diesel/internal/ast"
	"github.com/diesel-lang/diesel/internal/cli"
	"github.com/diesel-lang/diesel/internal/config"
	"github.com/diesel-lang/diesel/internal/diagnostic"
	"github.com/diesel-lang/diesel/internal/errors"
	"github.com/diesel-lang/diesel/internal/format"
	"github.com/diesel-lang/diesel/internal/optimize"
	"github.com/diesel-lang/diesel/internal/program"
	"github.com/diesel-lang/diesel/internal/watch"
)

const watchDebounce = 200 * time.Millisecond

type optimizeFlags struct {
	noOptimize  bool
	printAST    bool
	printSymtab bool
	diff        bool
	output      string
	fixedPoint  bool
	zeroDivisor string
	watch       bool
}

func (a *app) optimizeCommand() *cobra.Command {
	var f optimizeFlags
	cmd := &cobra.Command{
		Use:   "optimize FILE",
		Short: "Fold constant expressions",
		Long: `Fold constant expressions in FILE.

Assignment right-hand sides, conditions, return values and the operands of
binary operators are replaced by literals when all of their inputs are
constants. Diagnostics are written to stderr.`,
		Example: `  dieselopt optimize prog.yaml -a
  dieselopt optimize prog.yaml -o prog.opt.yaml --fixed-point
  dieselopt optimize prog.yaml --zero-divisor defer --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			log := a.logger(cfg)

			if !f.watch {
				a.status, err = a.optimizeFile(args[0], cfg, &f, log)
				return err
			}
			return a.watchFile(cmd.Context(), args[0], cfg, &f, log)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&f.noOptimize, "no-optimize", "f", false, "skip constant folding")
	flags.BoolVarP(&f.printAST, "print-ast", "a", false, "print the tree after optimization")
	flags.BoolVarP(&f.printSymtab, "print-symtab", "y", false, "print the symbol table")
	flags.BoolVarP(&f.diff, "diff", "d", false, "print a diff of the statements changed by folding")
	flags.StringVarP(&f.output, "output", "o", "", "write the optimized program to `FILE` (- for stdout)")
	flags.BoolVar(&f.fixedPoint, "fixed-point", false, "repeat passes until nothing folds")
	flags.StringVar(&f.zeroDivisor, "zero-divisor", "", "integer division by a constant zero: diagnose or defer")
	flags.BoolVar(&f.watch, "watch", false, "optimize again whenever FILE changes")
	return cmd
}

// apply overrides configuration values with the flags given explicitly.
func (f *optimizeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("no-optimize") {
		cfg.Optimizer.Enabled = !f.noOptimize
	}
	if flags.Changed("fixed-point") {
		cfg.Optimizer.FixedPoint = f.fixedPoint
	}
	if flags.Changed("zero-divisor") {
		if _, err := optimize.ParseZeroDivisorPolicy(f.zeroDivisor); err != nil {
			return fmt.Errorf("--zero-divisor: %w", err)
		}
		cfg.Optimizer.ZeroDivisor = f.zeroDivisor
	}
	return nil
}

// optimizeFile runs one compilation of path and returns the exit status.
func (a *app) optimizeFile(path string, cfg *config.Config, f *optimizeFlags, log *cli.Logger) (int, error) {
	prog, err := program.Load(path)
	if err != nil {
		return 1, err
	}
	log.Info("loaded %s (%d nodes)", prog.File, ast.Count(prog.Body))

	if f.printSymtab {
		if err := prog.Symbols.Dump(a.stdout); err != nil {
			return 1, err
		}
	}

	var before []string
	if f.diff {
		before = format.Listing(prog.Body)
	}

	engine := diagnostic.NewEngine(cfg.EngineConfig())
	if cfg.Optimizer.Enabled {
		if err := a.fold(prog, cfg, engine, log); err != nil {
			return 1, err
		}
	} else {
		log.Info("optimization disabled")
	}

	if f.diff {
		diff := format.DiffBodies(prog.File, before, format.Listing(prog.Body), format.DefaultDiffOptions())
		if _, err := io.WriteString(a.stdout, diff); err != nil {
			return 1, err
		}
	}

	if f.printAST {
		if err := ast.Fprint(a.stdout, prog.Body, prog.Symbols); err != nil {
			return 1, err
		}
	}

	switch f.output {
	case "":
	case "-":
		data, err := prog.Encode()
		if err != nil {
			return 1, err
		}
		if _, err := a.stdout.Write(data); err != nil {
			return 1, err
		}
	default:
		if err := prog.WriteFile(f.output); err != nil {
			return 1, err
		}
		log.Info("wrote %s", f.output)
	}

	formatter := diagnostic.NewFormatter(a.stderr, cfg.ColorMode(), prog.Source)
	if err := formatter.WriteAll(a.stderr, engine); err != nil {
		return 1, err
	}
	return cli.ExitCode(engine.ErrorCount()), nil
}

// fold optimizes the program body. A contract violation raised by the
// optimizer is returned as an error.
func (a *app) fold(prog *program.Program, cfg *config.Config, engine *diagnostic.Engine, log *cli.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*errors.StandardError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("fatal: %w", se)
		}
	}()

	opt := optimize.New(prog.Symbols, engine,
		optimize.WithZeroDivisorPolicy(cfg.ZeroDivisorPolicy()),
		optimize.WithLogger(log),
	)

	if cfg.Optimizer.FixedPoint {
		pipeline := optimize.NewPipeline(opt, cfg.Optimizer.MaxPasses)
		passes := pipeline.Run(prog.Body)
		log.Info("%d pass(es): %s", passes, pipeline.Stats())
		return nil
	}

	stats := opt.Pass(prog.Body)
	log.Info("%s", stats)
	return nil
}

// watchFile optimizes path once and again after every change, until the
// process is interrupted.
func (a *app) watchFile(ctx context.Context, path string, cfg *config.Config, f *optimizeFlags, log *cli.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	once := func(l *cli.Logger) {
		status, err := a.optimizeFile(path, cfg, f, l)
		if err != nil {
			l.Error("%v", err)
		}
		a.status = status
		l.Info("exit status %d", status)
	}

	once(log)
	log.Info("watching %s", path)
	err := watch.File(ctx, path, watchDebounce, func(ev watch.Event) {
		run := log.NewRun()
		run.Debug("%s %s", ev.Op, ev.Path)
		once(run)
	})
	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
