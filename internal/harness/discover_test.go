package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_menu.yaml", "a_swipe.yml", "nested/c_scroll.yaml", "notes.md", "page.html"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{
			name: "all",
			want: []string{"a_swipe.yml", "b_menu.yaml", "nested/c_scroll.yaml"},
		},
		{
			name:   "glob on base name",
			filter: "*_s*",
			want:   []string{"a_swipe.yml", "nested/c_scroll.yaml"},
		},
		{
			name:   "exact name without extension",
			filter: "b_menu",
			want:   []string{"b_menu.yaml"},
		},
		{
			name:   "no match",
			filter: "zzz",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths, err := FindScenarios(dir, tt.filter)
			require.NoError(t, err)

			var rel []string
			for _, p := range paths {
				r, err := filepath.Rel(dir, p)
				require.NoError(t, err)
				rel = append(rel, filepath.ToSlash(r))
			}
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestFindScenarios_Errors(t *testing.T) {
	_, err := FindScenarios(t.TempDir(), "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")

	_, err = FindScenarios(filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find scenarios in")
}
