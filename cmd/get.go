package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/refract/lens"
	"github.com/agentic-research/refract/stock"
)

var getCmd = &cobra.Command{
	Use:   "get <file>",
	Short: "Parse a file into a tree and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := stock.Lookup(lensName)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		text := string(data)
		tr, lerr := lens.Get(l, text)
		if lerr != nil {
			return lerr.Exn(text)
		}
		fmt.Println(tr.Dump())
		return nil
	},
}

var putCmd = &cobra.Command{
	Use:   "put <tree.json> <file>",
	Short: "Regenerate a file from an edited tree dump",
	Long: `Reads a JSON tree dump (as printed by get), applies the lens in the put
direction against the original file, and writes the regenerated text to
stdout. Spans not represented in the tree are preserved byte for byte.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := stock.Lookup(lensName)
		if err != nil {
			return err
		}
		dump, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		tr, err := treeFromDump(string(dump))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[1], err)
		}
		original := string(data)
		text, lerr := lens.Put(l, tr, original)
		if lerr != nil {
			return lerr.Exn(original)
		}
		fmt.Print(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
}
