package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storeplan/internal/codec"
	"storeplan/internal/config"
	"storeplan/internal/export"
	"storeplan/internal/loader"

	"github.com/spf13/cobra"
)

func newExportCommand(flags *globalFlags) *cobra.Command {
	var (
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the stored layout as YAML, JSON or PNG",
		Long:  `Writes the stored layout to a file. The format follows the extension: .yaml, .yml, .json or .png. Use "-" to write YAML to stdout.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			path := args[0]

			if path == "-" {
				return st.svc.Export(ctx, codec.NewYAMLCodec(), cmd.OutOrStdout())
			}

			layout, err := st.svc.GetLayout(ctx)
			if err != nil {
				return err
			}

			if strings.EqualFold(filepath.Ext(path), ".png") {
				renderer, err := export.NewRenderer(export.Options{
					Width:  width,
					Height: height,
					World:  cfg.WorldSize(),
				})
				if err != nil {
					return err
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", path, err)
				}
				defer f.Close()
				if err := renderer.RenderLayout(f, layout); err != nil {
					return err
				}
			} else {
				layout.Sort()
				if err := loader.SaveFile(path, layout); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entities and %d elements to %s\n",
				len(layout.Entities), len(layout.Elements), path)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 1000, "PNG width in pixels")
	cmd.Flags().IntVar(&height, "height", 700, "PNG height in pixels")

	return cmd
}

func newImportCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored layout with a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			path := args[0]
			c, err := codec.ForFormat(loader.FormatForPath(path))
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			result, err := st.svc.Import(context.Background(), c, f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entities and %d elements from %s (%s)\n",
				result.Entities, result.Elements, path, result.Format)
			return nil
		},
	}
	return cmd
}

func newConfigCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cfg.Summary())
			fmt.Fprintf(out, "Database: %s\nListen: %s\n", cfg.Database.Path, cfg.Server.Addr)
			fmt.Fprintln(out, "Search paths:")
			for _, p := range config.SearchPaths() {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
