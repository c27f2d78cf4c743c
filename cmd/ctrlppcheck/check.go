package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siemens/CtrlppCheck-sub002/internal/batch"
	"github.com/siemens/CtrlppCheck-sub002/internal/checks"
	"github.com/siemens/CtrlppCheck-sub002/internal/config"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc/include"
)

func newCheckCmd() *cobra.Command {
	var includePaths []string
	var configPath string
	var rulesDir string

	cmd := &cobra.Command{
		Use:   "check <files...>",
		Short: "Preprocess and run static checks over one or more CTRL source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfg.IncludePaths = append(cfg.IncludePaths, includePaths...)

			lib := checks.Library{}
			if rulesDir != "" {
				ruleFiles, err := cfg.ResolveRuleFiles(rulesDir)
				if err != nil {
					return err
				}
				for _, rf := range ruleFiles {
					loaded, err := checks.LoadLibrary(rf)
					if err != nil {
						return err
					}
					lib.Merge(loaded)
				}
			}

			cache := include.NewCache()
			results, err := batch.Run(context.Background(), cfg, cache, args)
			if err != nil {
				return err
			}

			issues := 0
			for _, r := range results {
				if r.Err != nil {
					log.WithError(r.Err).Errorf("preprocessing %s", r.Path)
					issues++
					continue
				}
				checks.CheckVariableNaming(r.Output, r.Reg, r.Sink, checks.StyleCamelCase)
				checks.CheckIgnoredReturnValue(r.Output, r.Reg, r.Sink, lib)
				checks.CheckMinArgs(r.Output, r.Reg, r.Sink, lib)
				for _, e := range r.Sink.Entries() {
					fmt.Println(e)
					issues++
				}
			}
			if issues > 0 {
				return fmt.Errorf("%d issue(s) found", issues)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "add a directory to the include search path")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&rulesDir, "rules", "", "directory to search for library-function XML rule files")
	return cmd
}
