package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/types"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the template catalog",
	Long: `Lists the registered templates; the default is marked with *. With --fields
the editable fields a resume exposes in its template are listed instead.`,
	RunE: runTemplates,
}

var (
	templatesFieldsFile string
	templatesJSON       bool
)

func init() {
	templatesCmd.Flags().StringVar(&templatesFieldsFile, "fields", "", "Path to a GeneratedResume JSON file whose editable fields to list")
	templatesCmd.Flags().BoolVar(&templatesJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	printer := observability.NewPrinter(cmd.OutOrStdout())

	if templatesFieldsFile != "" {
		var resume types.GeneratedResume
		if err := readJSONFile(templatesFieldsFile, &resume); err != nil {
			return err
		}
		binding := registry.Resolve(resume.TemplateID)
		fields := binding.Renderer.Fields(resume.Content)
		if templatesJSON {
			return printJSON(cmd, fields)
		}
		printer.PrintFields(binding.Template.ID, fields)
		return nil
	}

	if templatesJSON {
		return printJSON(cmd, map[string]any{
			"default":   registry.DefaultID(),
			"templates": registry.Templates(),
		})
	}
	printer.PrintTemplates(registry.Templates(), registry.DefaultID())
	return nil
}

// printJSON writes v to the command output as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
