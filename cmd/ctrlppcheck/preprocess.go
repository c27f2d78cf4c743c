package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siemens/CtrlppCheck-sub002/internal/batch"
	"github.com/siemens/CtrlppCheck-sub002/internal/collections"
	"github.com/siemens/CtrlppCheck-sub002/internal/config"
	"github.com/siemens/CtrlppCheck-sub002/internal/preproc/include"
)

func newPreprocessCmd() *cobra.Command {
	var includePaths []string
	var defines map[string]string
	var configPath string

	cmd := &cobra.Command{
		Use:   "preprocess <files...>",
		Short: "Run the preprocessor over one or more CTRL source files",
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
			for k, v := range defines {
				cfg.Defines[k] = v
			}

			cache := include.NewCache()
			results, err := batch.Run(context.Background(), cfg, cache, args)
			if err != nil {
				return err
			}

			for _, r := range results {
				for _, e := range r.Sink.Entries() {
					log.Debugf("%s", e)
				}
			}
			failures := collections.FilterSlice(results, func(r batch.Result) bool { return r.Err != nil })
			for _, r := range failures {
				log.WithError(r.Err).Errorf("preprocessing %s", r.Path)
			}
			for _, r := range collections.FilterSlice(results, func(r batch.Result) bool { return r.Err == nil }) {
				fmt.Println(r.Output.Stringify(r.Reg))
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d file(s) failed to preprocess", len(failures), len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "add a directory to the include search path")
	cmd.Flags().StringToStringVarP(&defines, "define", "D", nil, "define NAME=VALUE")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	return cmd
}
