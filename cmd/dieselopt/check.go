package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diesel-lang/diesel/internal/ast"
	"github.com/diesel-lang/diesel/internal/program"
	"github.com/diesel-lang/diesel/internal/symtab"
)

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Decode and validate a program without optimizing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			log := a.logger(cfg)

			prog, err := program.Load(args[0])
			if err != nil {
				return err
			}
			log.Info("loaded %s", prog.File)

			declared := prog.Symbols.Len() - int(symtab.RealType+1)
			fmt.Fprintf(a.stdout, "%s: ok (%d symbols, %d nodes)\n",
				prog.File, declared, ast.Count(prog.Body))
			return nil
		},
	}
}
