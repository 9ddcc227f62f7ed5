package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	lensName string
	verbose  bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&lensName, "lens", "l", "kv", "Stock lens to apply")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-file details")
}

var rootCmd = &cobra.Command{
	Use:   "refract",
	Short: "Refract: bidirectional lens transformations for config-like text",
	Long: `Refract parses text files into labeled trees with a lens, lets you edit
the tree by path, and regenerates the file preserving everything the edit
did not touch.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
