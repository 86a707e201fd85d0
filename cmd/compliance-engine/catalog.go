// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/compliance-engine/internal/report"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the regulatory source catalog",
	Long: `Catalog prints the regulatory sources the matcher scores documents
against: the built-in catalog, or the file named by catalog_path. The yaml
format is a valid catalog file and can be edited and loaded back.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().String("format", "table", "output format: table or yaml")

	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg.CatalogPath, logger)
	if err != nil {
		return err
	}

	switch format {
	case "table", "":
		report.Catalog(cat.Sources(), cmd.OutOrStdout())
		return nil
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cat.Export()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q: use table or yaml", format)
	}
}
