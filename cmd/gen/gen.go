package gen

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generators for documentation",
	Long:  `Generators for documentation`,
}

func init() {
	RootCmd.AddCommand(ManPagesCmd)
}
