package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/docpath"
	"github.com/jonathan/resume-builder/internal/templates"
	"github.com/jonathan/resume-builder/internal/types"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit one field of a generated resume",
	Long: `Applies a single edit to a GeneratedResume JSON document. The path is a JSON
array of keys and indexes, e.g. '["experience",0,"achievements"]', or the
dotted form experience.0.achievements.

--value takes a JSON value that is stored as-is. --text takes raw editor input
that is converted the way the resume's template exposes the field: array
fields are split on commas.`,
	Example: `  resume_builder set -r resume.json --path '["summary"]' --value '"Backend engineer"'
  resume_builder set -r resume.json --path '["skills"]' --text 'Go, SQL, Docker'`,
	RunE: runSet,
}

var (
	setResumeFile string
	setPath       string
	setValue      string
	setText       string
	setOutputFile string
)

func init() {
	setCmd.Flags().StringVarP(&setResumeFile, "resume", "r", "", "Path to GeneratedResume JSON file (required)")
	setCmd.Flags().StringVarP(&setPath, "path", "p", "", "JSON array path of the field (required)")
	setCmd.Flags().StringVar(&setValue, "value", "", "JSON value to store")
	setCmd.Flags().StringVar(&setText, "text", "", "Raw editor text for the field")
	setCmd.Flags().StringVarP(&setOutputFile, "out", "o", "", "Path to output file (default: overwrite --resume)")

	for _, name := range []string{"resume", "path"} {
		if err := setCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	setCmd.MarkFlagsMutuallyExclusive("value", "text")
	setCmd.MarkFlagsOneRequired("value", "text")

	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, _ []string) error {
	path, err := docpath.ParsePath(setPath)
	if err != nil {
		return err
	}

	resume, err := readResumeFile(setResumeFile)
	if err != nil {
		return err
	}

	var updated types.ContentDocument
	if cmd.Flags().Changed("text") {
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}
		binding := registry.Resolve(resume.TemplateID)
		updated, err = templates.EditText(binding.Renderer, resume.Content, path, setText)
		if err != nil {
			return err
		}
	} else {
		var value any
		if err := json.Unmarshal([]byte(setValue), &value); err != nil {
			return fmt.Errorf("--value must be JSON: %w", err)
		}
		updated, err = docpath.Set(resume.Content, path, value)
		if err != nil {
			return err
		}
	}
	resume.Content = updated

	out := setOutputFile
	if out == "" {
		out = setResumeFile
	}
	if err := writeJSONFile(out, resume); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s in %s\n", path, out)
	return nil
}
