package cli

import (
	_ "embed"
	"strings"

	"github.com/spf13/cobra"
)

//go:embed quote.txt
var quote string

var helloCmd = &cobra.Command{
	Use:   "hello",
	Short: "Print a quote about letters",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(strings.TrimSpace(quote))
	},
}

func init() {
	rootCmd.AddCommand(helloCmd)
}
