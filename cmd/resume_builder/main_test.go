package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/docpath"
	"github.com/jonathan/resume-builder/internal/intake"
	"github.com/jonathan/resume-builder/internal/photos"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/session"
	"github.com/jonathan/resume-builder/internal/types"
)

// execute runs the root command with fresh flag values and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeInput(t *testing.T, dir string, data types.UserData) string {
	t.Helper()
	path := filepath.Join(dir, "input.json")
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func validUserData() types.UserData {
	return types.UserData{
		Name:        "Jane Doe",
		Title:       "Engineer",
		Email:       "jane@example.com",
		Phone:       "555-123-4567",
		Location:    "Berlin",
		Description: "Builds reliable systems.",
		Skills:      []string{"Go", "SQL", "Docker", "Kubernetes"},
	}
}

func readResume(t *testing.T, path string) types.GeneratedResume {
	t.Helper()
	var resume types.GeneratedResume
	require.NoError(t, readJSONFile(path, &resume))
	return resume
}

// generateOfflineResume writes a fallback resume and returns its path
func generateOfflineResume(t *testing.T, dir string, extra ...string) string {
	t.Helper()
	out := filepath.Join(dir, "resume.json")
	args := append([]string{"generate", "--offline", "-i", writeInput(t, dir, validUserData()), "-o", out}, extra...)
	_, err := execute(t, args...)
	require.NoError(t, err)
	return out
}

func TestGenerate_Offline(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "resume.json")

	stdout, err := execute(t, "generate", "--offline", "-i", writeInput(t, dir, validUserData()), "-o", out, "-t", "TECH")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Successfully generated resume")

	resume := readResume(t, out)
	assert.Equal(t, "tech", resume.TemplateID)
	assert.Equal(t, "Jane Doe", resume.Content.Header.Name)
	assert.Equal(t, "555-123-4567", resume.Content.Header.Contact.Phone)
	assert.Equal(t, "Builds reliable systems.", resume.Content.Summary)
	assert.Equal(t, []string{"Go", "SQL", "Docker"}, resume.Content.Projects[0].Technologies)
}

func TestGenerate_Stdout(t *testing.T) {
	dir := t.TempDir()
	stdout, err := execute(t, "generate", "--offline", "-i", writeInput(t, dir, validUserData()))
	require.NoError(t, err)

	var resume types.GeneratedResume
	require.NoError(t, json.Unmarshal([]byte(stdout), &resume))
	assert.Equal(t, "modern", resume.TemplateID)
}

func TestGenerate_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	data := validUserData()
	data.Email = "jane@localhost"

	_, err := execute(t, "generate", "--offline", "-i", writeInput(t, dir, data))
	var validationErr *intake.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "email", validationErr.Errors[0].Field)
}

func TestGenerate_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	dir := t.TempDir()

	_, err := execute(t, "generate", "-i", writeInput(t, dir, validUserData()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestGenerate_MissingInputFlag(t *testing.T) {
	_, err := execute(t, "generate", "--offline")
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	dir := t.TempDir()
	path := generateOfflineResume(t, dir)

	_, err := execute(t, "set", "-r", path, "--path", `["summary"]`, "--value", `"Backend engineer"`)
	require.NoError(t, err)
	_, err = execute(t, "set", "-r", path, "--path", `["skills"]`, "--text", "Go, Rust, ")
	require.NoError(t, err)
	_, err = execute(t, "set", "-r", path, "--path", "experience.0.achievements", "--value", `["Shipped v2"]`)
	require.NoError(t, err)

	resume := readResume(t, path)
	assert.Equal(t, "Backend engineer", resume.Content.Summary)
	assert.Equal(t, []string{"Go", "Rust"}, resume.Content.Skills)
	assert.Equal(t, []string{"Shipped v2"}, resume.Content.Experience[0].Achievements)
}

func TestSet_Output(t *testing.T) {
	dir := t.TempDir()
	path := generateOfflineResume(t, dir)
	out := filepath.Join(dir, "edited.json")

	_, err := execute(t, "set", "-r", path, "--path", `["header","title"]`, "--text", "Staff Engineer", "-o", out)
	require.NoError(t, err)

	assert.Equal(t, "Staff Engineer", readResume(t, out).Content.Header.Title)
	assert.Equal(t, "Engineer", readResume(t, path).Content.Header.Title)
}

func TestSet_Errors(t *testing.T) {
	dir := t.TempDir()
	path := generateOfflineResume(t, dir)

	_, err := execute(t, "set", "-r", path, "--path", `["header","nickname"]`, "--value", `"x"`)
	var pathErr *docpath.InvalidPathError
	assert.ErrorAs(t, err, &pathErr)

	_, err = execute(t, "set", "-r", path, "--path", `["summary"]`, "--value", `not json`)
	assert.Error(t, err)

	_, err = execute(t, "set", "-r", path, "--path", `["summary"]`)
	assert.Error(t, err, "one of --value or --text is required")

	_, err = execute(t, "set", "-r", path, "--path", `["summary"]`, "--value", `"a"`, "--text", "b")
	assert.Error(t, err, "--value and --text are exclusive")

	_, err = execute(t, "set", "-r", path, "--path", "experience..title", "--value", `"a"`)
	assert.Error(t, err)
}

// writeResumeWithout writes a copy of the resume at path with the named
// content field removed
func writeResumeWithout(t *testing.T, path, field string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	delete(doc["content"].(map[string]any), field)

	out := filepath.Join(filepath.Dir(path), "without-"+field+".json")
	edited, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(out, edited, 0o644))
	return out
}

func TestSet_RejectsMalformedResume(t *testing.T) {
	dir := t.TempDir()
	path := writeResumeWithout(t, generateOfflineResume(t, dir), "header")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = execute(t, "set", "-r", path, "--path", `["summary"]`, "--value", `"Backend engineer"`)
	require.Error(t, err)
	var validationErr *schemas.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	missing := filepath.Join(dir, "no-content.json")
	require.NoError(t, os.WriteFile(missing, []byte(`{"template_id":"modern"}`), 0o644))
	_, err = execute(t, "set", "-r", missing, "--path", `["summary"]`, "--value", `"x"`)
	assert.ErrorContains(t, err, "missing content")
}

func TestRender_RejectsMalformedResume(t *testing.T) {
	dir := t.TempDir()
	path := writeResumeWithout(t, generateOfflineResume(t, dir), "summary")

	_, err := execute(t, "render", "-r", path)
	var validationErr *schemas.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRender_HTML(t *testing.T) {
	dir := t.TempDir()
	path := generateOfflineResume(t, dir)

	stdout, err := execute(t, "render", "-r", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Jane Doe")
	assert.Contains(t, stdout, "layout-modern")

	out := filepath.Join(dir, "resume.html")
	_, err = execute(t, "render", "-r", path, "-t", "creative", "-o", out)
	require.NoError(t, err)
	page, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(page), "layout-creative")
}

func TestRender_UnknownTemplateUsesDefault(t *testing.T) {
	dir := t.TempDir()
	path := generateOfflineResume(t, dir, "-t", "does-not-exist")
	assert.Equal(t, "does-not-exist", readResume(t, path).TemplateID)

	stdout, err := execute(t, "render", "-r", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "layout-modern")
}

func TestRender_Photo(t *testing.T) {
	dir := t.TempDir()
	path := generateOfflineResume(t, dir)

	photo := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(photo, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...), 0o644))

	stdout, err := execute(t, "render", "-r", path, "--photo", photo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "data:image/png;base64,")

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("not an image"), 0o644))
	_, err = execute(t, "render", "-r", path, "--photo", text)
	assert.ErrorIs(t, err, photos.ErrUnsupportedType)
}

func TestTemplates(t *testing.T) {
	stdout, err := execute(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, stdout, "TEMPLATES")
	assert.Contains(t, stdout, "* modern")

	stdout, err = execute(t, "templates", "--json")
	require.NoError(t, err)
	var listing struct {
		Default   string           `json:"default"`
		Templates []types.Template `json:"templates"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &listing))
	assert.Equal(t, "modern", listing.Default)
	assert.Len(t, listing.Templates, 7)
}

func TestTemplates_Fields(t *testing.T) {
	dir := t.TempDir()
	path := generateOfflineResume(t, dir, "-t", "tech")

	stdout, err := execute(t, "templates", "--fields", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "EDITABLE FIELDS")
	assert.Contains(t, stdout, `["skills",0]`)
	assert.NotContains(t, stdout, `["skills"] `)
}

func TestToken(t *testing.T) {
	const secret = "cli-test-secret-at-least-32-bytes-long"
	t.Setenv("EXPORT_JWT_SECRET", secret)

	stdout, err := execute(t, "token", "--subject", "alice", "--export")
	require.NoError(t, err)

	jwtConfig, err := config.NewJWTConfig(secret, 1)
	require.NoError(t, err)
	claims, err := server.NewJWTAuthorizer(jwtConfig).ParseToken(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.True(t, claims.Export)
}

func TestToken_RequiresSecret(t *testing.T) {
	t.Setenv("EXPORT_JWT_SECRET", "")
	_, err := execute(t, "token", "--subject", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXPORT_JWT_SECRET")
}

func TestLoadConfig_Layering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9000, "model": "gemini-2.5-pro"}`), 0o644))

	env := map[string]string{"PORT": "3000"}
	c, err := loadConfig(path, func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, 3000, c.Port, "environment wins over the file")
	assert.Equal(t, "gemini-2.5-pro", c.Model, "file wins over defaults")
	assert.Equal(t, config.DefaultPhotoDir, c.PhotoDir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	env := map[string]string{"PHOTO_S3_BUCKET": "photos"}
	_, err := loadConfig("", func(k string) string { return env[k] })
	assert.Error(t, err)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"), func(string) string { return "" })
	assert.Error(t, err)
}

func TestOpenPhotos(t *testing.T) {
	c := config.Default()
	c.PhotoDir = filepath.Join(t.TempDir(), "photos")

	store, err := openPhotos(t.Context(), c)
	require.NoError(t, err)
	assert.IsType(t, &photos.LocalStore{}, store)
	assert.DirExists(t, c.PhotoDir)

	c.PhotoDir = ""
	store, err = openPhotos(t.Context(), c)
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestOpenSessions_Memory(t *testing.T) {
	store, cleanup, err := openSessions(t.Context(), config.Default(), zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &session.MemoryStore{}, store)
}

func TestNewAuthorizer(t *testing.T) {
	c := config.Default()
	authorizer, err := newAuthorizer(c)
	require.NoError(t, err)
	assert.Nil(t, authorizer)

	c.ExportJWTSecret = "short"
	_, err = newAuthorizer(c)
	assert.Error(t, err)

	c.ExportJWTSecret = "a-sufficiently-long-export-secret"
	authorizer, err = newAuthorizer(c)
	require.NoError(t, err)
	assert.NotNil(t, authorizer)
}
