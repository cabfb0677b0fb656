package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

func names(exts []Extension) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		out = append(out, e.Meta().Name)
	}
	return out
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry(logger.Nop())
	require.NoError(t, r.Register(bare{name: "a"}))
	require.NoError(t, r.Register(bare{name: "b"}))

	err := r.Register(bare{name: "a"})
	assert.ErrorIs(t, err, ErrDuplicateExtension)

	assert.Error(t, r.Register(bare{name: ""}))
	assert.Equal(t, []string{"a", "b"}, names(r.All()))
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry(logger.Nop())
	r.MustRegister(bare{name: "a"})

	ext, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", ext.Meta().Name)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, domain.ErrExtensionNotFound)
}

func TestRegistryApplicable(t *testing.T) {
	r := NewRegistry(logger.Nop())
	r.MustRegister(
		bare{name: "not-root", applicable: func(ic InitContext) bool { return ic.Pathname != "/" }},
		bare{name: "yuque-only", applicable: func(ic InitContext) bool {
			return ic.Pathname != "/" && ic.AccountType == "yuque"
		}},
		bare{name: "panics", applicable: func(InitContext) bool { panic("boom") }},
		bare{name: "always"},
	)

	tests := []struct {
		name string
		ic   InitContext
		want []string
	}{
		{name: "root", ic: InitContext{Pathname: "/", AccountType: "yuque"}, want: []string{"always"}},
		{name: "editor yuque", ic: InitContext{Pathname: "/editor", AccountType: "yuque"}, want: []string{"not-root", "yuque-only", "always"}},
		{name: "editor github", ic: InitContext{Pathname: "/editor", AccountType: "github"}, want: []string{"not-root", "always"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(r.Applicable(tt.ic)))
		})
	}
}

func TestApplicableRecoversPanics(t *testing.T) {
	ext := bare{name: "panics", applicable: func(InitContext) bool { panic("boom") }}
	assert.NotPanics(t, func() {
		assert.False(t, Applicable(ext, InitContext{Pathname: "/editor"}))
	})
}

func TestRegistryArrange(t *testing.T) {
	r := NewRegistry(logger.Nop())
	r.MustRegister(bare{name: "a"}, bare{name: "b"}, bare{name: "c"}, bare{name: "d"})

	r.Arrange([]string{"c", "unknown", "a", "c"}, []string{"d", "ghost"})

	assert.Equal(t, []string{"c", "a", "b"}, names(r.All()))
	_, err := r.Get("d")
	assert.ErrorIs(t, err, ErrExtensionDisabled)

	// Re-arranging without disabled names re-enables d.
	r.Arrange(nil, nil)
	assert.Equal(t, []string{"c", "a", "b", "d"}, names(r.All()))
	assert.Len(t, r.Metas(), 4)
}
