// Command ctrlppcheck preprocesses and statically checks CTRL source files
// (the WinCC OA control-language dialect), the way the teacher's
// index/*/main.go commands wrap a single gazelle-plugin entrypoint around
// a library, but fronting this repo's preprocessor/checks core instead.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		log.WithError(err).Error("ctrlppcheck failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "ctrlppcheck",
		Short: "Preprocess and statically check CTRL source files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.AddCommand(newPreprocessCmd())
	cmd.AddCommand(newCheckCmd())
	return cmd
}
