package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/photos"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a generated resume to HTML or PDF",
	Long: `Renders a GeneratedResume JSON document with its template. Unknown template
ids render with the catalog default. With --pdf the page is printed to PDF
through headless Chrome.`,
	RunE: runRender,
}

var (
	renderResumeFile string
	renderTemplateID string
	renderPhotoFile  string
	renderOutputFile string
	renderPDFFile    string
)

func init() {
	renderCmd.Flags().StringVarP(&renderResumeFile, "resume", "r", "", "Path to GeneratedResume JSON file (required)")
	renderCmd.Flags().StringVarP(&renderTemplateID, "template", "t", "", "Template id (overrides the resume's)")
	renderCmd.Flags().StringVar(&renderPhotoFile, "photo", "", "Path to a profile photo (PNG, JPEG, GIF or WebP)")
	renderCmd.Flags().StringVarP(&renderOutputFile, "out", "o", "", "Path to output HTML file (default stdout)")
	renderCmd.Flags().StringVar(&renderPDFFile, "pdf", "", "Path to output PDF file")

	if err := renderCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	resume, err := readResumeFile(renderResumeFile)
	if err != nil {
		return err
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	templateID := resume.TemplateID
	if renderTemplateID != "" {
		templateID = renderTemplateID
	}
	binding := registry.Resolve(templateID)

	photoRef, err := loadPhoto(cmd, renderPhotoFile)
	if err != nil {
		return err
	}

	var page bytes.Buffer
	if err := binding.Render(&page, resume.Content, photoRef); err != nil {
		return err
	}
	logger.Debug("Resume rendered",
		zap.String("template_id", binding.Template.ID),
		zap.Int("bytes", page.Len()))

	if renderPDFFile != "" {
		pdf, err := newExporter(cfg, logger).Export(ctx, page.String())
		if err != nil {
			return err
		}
		if err := writeFile(renderPDFFile, pdf); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully exported PDF: %s\n", renderPDFFile)
	}

	switch {
	case renderOutputFile != "":
		if err := writeFile(renderOutputFile, page.Bytes()); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully rendered HTML: %s\n", renderOutputFile)
	case renderPDFFile == "":
		_, _ = cmd.OutOrStdout().Write(page.Bytes())
	}
	return nil
}

// loadPhoto runs a local photo through the same checks as an upload and
// returns it as a data URI
func loadPhoto(cmd *cobra.Command, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open photo: %w", err)
	}
	defer f.Close()

	dir, err := os.MkdirTemp("", "resume-photo-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	store := photos.NewLocalStore(dir)
	key, _, err := store.Save(cmd.Context(), uuid.NewString(), f)
	if err != nil {
		return "", fmt.Errorf("photo %s: %w", path, err)
	}
	return photos.DataURI(cmd.Context(), store, key)
}
