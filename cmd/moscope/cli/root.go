// Package cli implements the moscope command line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/appsworld/moscope"
)

func init() {
	log.SetHandler(clihander.Default)

	rootCmd.PersistentFlags().BoolP("verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().Bool("color", false, "force colorized output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().StringP("arch", "a", "", "which architecture to analyze for fat binaries")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("arch", rootCmd.PersistentFlags().Lookup("arch"))
}

var rootCmd = &cobra.Command{
	Use:   "moscope",
	Short: "Mach-O static analysis tool",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
		if viper.GetBool("color") {
			color.NoColor = false
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// analyze parses the input file and keeps the slices matching the --arch
// filter (all of them when the filter is empty).
func analyze(path string) (*moscope.File, []*moscope.Slice, error) {
	f, err := moscope.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	filter := viper.GetString("arch")
	if filter == "" {
		return f, f.Slices, nil
	}
	var slices []*moscope.Slice
	for _, s := range f.Slices {
		if strings.EqualFold(s.SubCPU.String(s.CPU), filter) ||
			strings.EqualFold(s.CPU.String(), filter) {
			slices = append(slices, s)
		}
	}
	if len(slices) == 0 {
		return nil, nil, fmt.Errorf("no architecture matching %q in %s", filter, path)
	}
	return f, slices, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

var (
	title    = color.New(color.Bold).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
	emphasis = color.New(color.FgHiCyan).SprintFunc()
)

func archBanner(s *moscope.Slice) string {
	return title(fmt.Sprintf("[%s (%s), offset %#x]", s.CPU, s.SubCPU.String(s.CPU), s.Arch.Offset))
}
