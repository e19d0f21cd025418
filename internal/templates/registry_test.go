package templates

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/types"
)

type fakeRenderer struct{ name string }

func (f fakeRenderer) Render(w io.Writer, _ RenderInput) error {
	_, err := io.WriteString(w, f.name)
	return err
}

func (f fakeRenderer) Fields(types.ContentDocument) []Field { return nil }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(nil)
	require.NoError(t, err)
	return r
}

func TestRegistry_Resolve(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		id   string
		want string
	}{
		{id: "modern", want: "modern"},
		{id: "Professional", want: "professional"},
		{id: "CREATIVE", want: "creative"},
		{id: " tech ", want: "tech"},
		{id: "Elegant-HR", want: "elegant-hr"},
		{id: "does-not-exist", want: "modern"},
		{id: "", want: "modern"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			b := r.Resolve(tt.id)
			assert.Equal(t, tt.want, b.Template.ID)
			assert.NotNil(t, b.Renderer)
		})
	}
}

func TestRegistry_UnknownTemplateRendersWithDefault(t *testing.T) {
	r := newTestRegistry(t)
	doc := testDocument()

	var unknown, modern bytes.Buffer
	require.NoError(t, r.Resolve("does-not-exist").Render(&unknown, doc, ""))
	require.NoError(t, r.Resolve("modern").Render(&modern, doc, ""))

	assert.Equal(t, modern.String(), unknown.String())
}

func TestRegistry_Templates(t *testing.T) {
	r := newTestRegistry(t)

	list := r.Templates()
	require.Len(t, list, 7)
	assert.Equal(t, "modern", list[0].ID)
	assert.Equal(t, "professional", list[1].ID)
	assert.Equal(t, "creative", list[2].ID)
	assert.Equal(t, "modern", r.DefaultID())
}

func TestRegistry_Register(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Register(types.Template{ID: "Startup", AccentColor: "#F43F5E"}, fakeRenderer{name: "startup"})
	require.NoError(t, err)

	b, ok := r.Lookup("STARTUP")
	require.True(t, ok)
	assert.Equal(t, "startup", b.Template.ID)

	var buf bytes.Buffer
	require.NoError(t, r.Resolve("startup").Render(&buf, testDocument(), ""))
	assert.Equal(t, "startup", buf.String())

	assert.Error(t, r.Register(types.Template{}, fakeRenderer{}))
	assert.Error(t, r.Register(types.Template{ID: "x"}, nil))
}

func TestNewRegistry_UnknownLayout(t *testing.T) {
	_, err := NewRegistry(&Catalog{
		Default:   "a",
		Templates: []CatalogEntry{{Template: types.Template{ID: "a", AccentColor: "#fff"}, Layout: "nope"}},
	})
	require.Error(t, err)

	var tmplErr *TemplateError
	assert.ErrorAs(t, err, &tmplErr)
}

func TestNewRegistry_DefaultMustExist(t *testing.T) {
	_, err := NewRegistry(&Catalog{
		Default:   "missing",
		Templates: []CatalogEntry{{Template: types.Template{ID: "modern", AccentColor: "#fff"}}},
	})
	assert.Error(t, err)
}

func TestRegistry_ConcurrentResolve(t *testing.T) {
	r := newTestRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				_ = r.Register(types.Template{ID: "extra"}, fakeRenderer{name: "extra"})
			}
			assert.NotNil(t, r.Resolve("tech").Renderer)
		}(i)
	}
	wg.Wait()
}
