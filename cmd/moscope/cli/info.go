package cli

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/appsworld/moscope/internal/report"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <binary>",
	Short: "Show header, load commands and segments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, slices, err := analyze(args[0])
		if err != nil {
			return err
		}
		if viper.GetBool("json") {
			r, err := report.Build(f, report.Options{Header: true, LoadCommands: true, Segments: true})
			if err != nil {
				return err
			}
			return printJSON(r)
		}

		if f.Kind.IsFat() {
			fmt.Printf("%s, %d architecture(s)\n\n", f.Kind, f.FatHeader.NArch)
		}
		for _, s := range slices {
			fmt.Println(archBanner(s))
			if s.Err != nil {
				log.WithError(s.Err).Error("failed to parse architecture")
				continue
			}
			fmt.Println(s.Header.String())
			fmt.Println(title("Load commands:"))
			for _, lc := range s.Loads {
				fmt.Printf("  %-28s cmdsize=%-6d %s\n", lc.Cmd, lc.Size, faint(fmt.Sprintf("@ %#x", lc.Offset)))
			}
			fmt.Println()
			fmt.Println(title("Segments:"))
			for _, seg := range s.Segments {
				fmt.Printf("  %-16s %s addr=%#011x size=%#-9x fileoff=%#-8x\n",
					emphasis(seg.Name), seg.Prot, seg.Addr, seg.Memsz, seg.Offset)
				for _, sec := range seg.Sections {
					fmt.Printf("    %-30s addr=%#011x size=%#-9x %s\n",
						fmt.Sprintf("%s.%s", sec.Seg, sec.Name), sec.Addr, sec.Size, faint(sec.Kind.String()))
				}
			}
			fmt.Println(strings.Repeat("-", 60))
		}
		return nil
	},
}
