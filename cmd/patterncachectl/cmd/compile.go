package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	compileInput         string
	compileCaseSensitive bool
	compilePartial       bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <pattern>",
	Short: "Compile a pattern and optionally test it against an input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := args[0]

		h, err := cache.Compile(pattern, compileCaseSensitive)
		if err != nil {
			return fmt.Errorf("compile failed: %w", err)
		}
		defer h.Close()

		cmd.Println("pattern compiled")

		if compileInput == "" {
			return nil
		}

		var matched bool
		if compilePartial {
			matched, err = h.PartialMatch([]byte(compileInput))
		} else {
			matched, err = h.FullMatch([]byte(compileInput))
		}
		if err != nil {
			return fmt.Errorf("match failed: %w", err)
		}

		cmd.Printf("match: %t\n", matched)
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVar(&compileInput, "input", "", "input to test the compiled pattern against")
	compileCmd.Flags().BoolVar(&compileCaseSensitive, "case-sensitive", true, "compile case-sensitively")
	compileCmd.Flags().BoolVar(&compilePartial, "partial", false, "use partial match instead of full match")
}
