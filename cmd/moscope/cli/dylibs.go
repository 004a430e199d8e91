package cli

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/appsworld/moscope/internal/report"
)

func init() {
	rootCmd.AddCommand(dylibsCmd)
}

var dylibsCmd = &cobra.Command{
	Use:   "dylibs <binary>",
	Short: "List dylib dependencies and runtime search paths",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, slices, err := analyze(args[0])
		if err != nil {
			return err
		}
		if viper.GetBool("json") {
			r, err := report.Build(f, report.Options{Dylibs: true, Rpaths: true})
			if err != nil {
				return err
			}
			return printJSON(r)
		}

		for _, s := range slices {
			fmt.Println(archBanner(s))
			if s.Err != nil {
				log.WithError(s.Err).Error("failed to parse architecture")
				continue
			}
			for _, d := range s.Dylibs {
				fmt.Printf("  [%-8s] %s %s\n", d.Kind, d.Path,
					faint(fmt.Sprintf("(current %s, compat %s)", d.CurrentVersion, d.CompatVersion)))
			}
			for _, rp := range s.Rpaths {
				fmt.Printf("  [%-8s] %s\n", "rpath", emphasis(rp.Path))
			}
			fmt.Println()
		}
		return nil
	},
}
