package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/refract/lens"
	"github.com/agentic-research/refract/stock"
	"github.com/agentic-research/refract/tree"
)

var insBefore bool

// editFile parses path with the active lens, applies edit to the tree, and
// writes the regenerated text back atomically.
func editFile(path string, edit func(*tree.Tree) error) error {
	l, err := stock.Lookup(lensName)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	original := string(data)
	tr, lerr := lens.Get(l, original)
	if lerr != nil {
		return lerr.Exn(original)
	}
	if err := edit(tr); err != nil {
		return err
	}
	text, lerr := lens.Put(l, tr, original)
	if lerr != nil {
		return lerr.Exn(original)
	}
	return writeAtomic(path, []byte(text))
}

// writeAtomic writes content through a temp file in the target's directory
// followed by a rename, preserving the original permissions.
func writeAtomic(path string, content []byte) error {
	dir := dirFor(path)
	tmp, err := os.CreateTemp(dir, ".refract-edit-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode()) // best-effort permission sync
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}

func dirFor(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if os.IsPathSeparator(path[i]) {
			if i == 0 {
				return string(path[0])
			}
			return path[:i]
		}
	}
	return "."
}

var setCmd = &cobra.Command{
	Use:   "set <file> <path> <value>",
	Short: "Set a value at a tree path and write the file back",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editFile(args[0], func(tr *tree.Tree) error {
			_, err := tr.Set(args[1], args[2])
			return err
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <file> <path>",
	Short: "Remove the subtrees at a tree path and write the file back",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editFile(args[0], func(tr *tree.Tree) error {
			_, n, err := tr.Remove(args[1])
			if err == nil && verbose {
				fmt.Printf("removed %d nodes\n", n)
			}
			return err
		})
	},
}

var insCmd = &cobra.Command{
	Use:   "ins <file> <label> <path>",
	Short: "Insert a sibling node at a tree path and write the file back",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editFile(args[0], func(tr *tree.Tree) error {
			_, err := tr.Insert(args[1], args[2], insBefore)
			return err
		})
	},
}

// treeFromDump rebuilds a tree from a JSON dump produced by get.
func treeFromDump(src string) (*tree.Tree, error) {
	return tree.ParseDump(src)
}

func init() {
	insCmd.Flags().BoolVar(&insBefore, "before", false, "Insert before the addressed node instead of after")
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(insCmd)
}
