package cli

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/appsworld/moscope/internal/report"
)

func init() {
	stringsCmd.Flags().IntP("min-len", "n", 4, "minimum string length")
	stringsCmd.Flags().StringP("pattern", "p", "", "only show strings matching a regular expression")
	viper.BindPFlag("strings.min-len", stringsCmd.Flags().Lookup("min-len"))
	viper.BindPFlag("strings.pattern", stringsCmd.Flags().Lookup("pattern"))
	rootCmd.AddCommand(stringsCmd)
}

var stringsCmd = &cobra.Command{
	Use:   "strings <binary>",
	Short: "Extract C strings from the cstring sections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, slices, err := analyze(args[0])
		if err != nil {
			return err
		}
		opts := report.Options{
			Strings:    true,
			MinStrLen:  viper.GetInt("strings.min-len"),
			StrPattern: viper.GetString("strings.pattern"),
		}
		if viper.GetBool("json") {
			r, err := report.Build(f, opts)
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
			if opts.StrPattern != "" {
				matches, err := s.FilteredStrings(opts.StrPattern)
				if err != nil {
					return err
				}
				for _, es := range matches {
					fmt.Printf("  %s %s\n", faint(fmt.Sprintf("[%s.%s]", es.SegName, es.SectName)), es.Value)
				}
			} else {
				for _, es := range s.Strings(opts.MinStrLen) {
					fmt.Printf("  %s %s\n", faint(fmt.Sprintf("[%s.%s]", es.SegName, es.SectName)), es.Value)
				}
			}
			fmt.Println()
		}
		return nil
	},
}
