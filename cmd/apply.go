package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/refract/stock"
	"github.com/agentic-research/refract/transform"
)

var configPath string

var applyCmd = &cobra.Command{
	Use:   "apply <dir>",
	Short: "Apply configured transforms to every matching file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", configPath, err)
		}
		cfg, err := transform.DecodeConfig(src, configPath)
		if err != nil {
			return err
		}
		named, err := transform.Build(cfg, stock.Lookup)
		if err != nil {
			return err
		}

		opts := []transform.Option{}
		if verbose {
			level := slog.LevelDebug
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			opts = append(opts, transform.WithLogger(transform.NewSlogAdapter(slog.New(handler))))
		}
		engine := transform.NewEngine(osfs.New(args[0]), opts...)

		failed := 0
		for _, nt := range named {
			results, err := engine.Apply(nt.Transform, ".")
			if err != nil {
				return fmt.Errorf("transform %s: %w", nt.Name, err)
			}
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "%s: %s: %s\n", nt.Name, res.Path, res.Err)
					continue
				}
				fmt.Printf("%s: %s: %d top-level nodes\n", nt.Name, res.Path, len(res.Tree.Children))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d files failed", failed)
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&configPath, "config", "c", "refract.hcl", "Path to the transform config")
	rootCmd.AddCommand(applyCmd)
}
