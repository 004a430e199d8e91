package cli

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/appsworld/moscope/internal/report"
)

func init() {
	symbolsCmd.Flags().Bool("undefined", false, "only show undefined (imported) symbols")
	viper.BindPFlag("symbols.undefined", symbolsCmd.Flags().Lookup("undefined"))
	rootCmd.AddCommand(symbolsCmd)
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols <binary>",
	Short: "Show the resolved symbol table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, slices, err := analyze(args[0])
		if err != nil {
			return err
		}
		if viper.GetBool("json") {
			r, err := report.Build(f, report.Options{Symbols: true})
			if err != nil {
				return err
			}
			return printJSON(r)
		}

		onlyUndef := viper.GetBool("symbols.undefined")
		for _, s := range slices {
			fmt.Println(archBanner(s))
			if s.Err != nil {
				log.WithError(s.Err).Error("failed to parse architecture")
				continue
			}
			if s.Symtab == nil {
				log.Warn("no LC_SYMTAB in this architecture")
				continue
			}
			for _, sym := range s.Symtab.Syms {
				if sym.Debug {
					continue
				}
				if onlyUndef && sym.Sect != 0 {
					continue
				}
				loc := ""
				if sym.SectName != "" {
					loc = faint(fmt.Sprintf(" (%s.%s)", sym.SegName, sym.SectName))
				}
				if sym.HasIndirect {
					loc += faint(fmt.Sprintf(" slot=%#x", sym.IndirectAddr))
				}
				fmt.Printf("  %#011x %-10s %s%s\n", sym.Value, sym.Kind, emphasis(sym.Name), loc)
			}
			fmt.Println()
		}
		return nil
	},
}
