package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/intake"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate resume content from intake data",
	Long: `Reads intake data (name, title, contact, description, skills) as JSON,
validates it like the intake form does and writes a GeneratedResume JSON document.`,
	RunE: runGenerate,
}

var (
	generateInputFile  string
	generateTemplateID string
	generateOutputFile string
	generateOffline    bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateInputFile, "input", "i", "", "Path to intake data JSON file (required)")
	generateCmd.Flags().StringVarP(&generateTemplateID, "template", "t", "", "Template id (default from the catalog)")
	generateCmd.Flags().StringVarP(&generateOutputFile, "out", "o", "", "Path to output GeneratedResume JSON (default stdout)")
	generateCmd.Flags().BoolVar(&generateOffline, "offline", false, "Use the fallback document instead of calling Gemini")

	if err := generateCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var input types.UserData
	if err := readJSONFile(generateInputFile, &input); err != nil {
		return err
	}
	if err := intake.Validate(input); err != nil {
		return err
	}

	templateID := generateTemplateID
	if templateID == "" {
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}
		templateID = registry.DefaultID()
	}

	generator, cleanup, err := newGenerator(ctx, cfg, generateOffline, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	resume, err := generator.Generate(ctx, input, templateID)
	if err != nil {
		return err
	}
	logger.Debug("Resume generated", zap.String("template_id", resume.TemplateID))

	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintUserData(&input)
		printer.PrintResume(resume)
	}

	if generateOutputFile == "" {
		return printJSON(cmd, resume)
	}
	if err := writeJSONFile(generateOutputFile, resume); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully generated resume: %s\n", generateOutputFile)
	return nil
}
