package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapArgs map[string]any

func (m mapArgs) GetArguments() map[string]any { return m }

func TestBindArguments(t *testing.T) {
	t.Parallel()

	type target struct {
		Name    string   `json:"name"`
		Line    int      `json:"line"`
		Enabled bool     `json:"enabled"`
		Tags    []string `json:"tags"`
	}

	tests := []struct {
		name string
		args mapArgs
		want target
	}{
		{
			name: "native types",
			args: mapArgs{"name": "x", "line": float64(12), "enabled": true, "tags": []any{"a", "b"}},
			want: target{Name: "x", Line: 12, Enabled: true, Tags: []string{"a", "b"}},
		},
		{
			name: "string encoded",
			args: mapArgs{"line": " 7 ", "enabled": "true", "tags": "a,b"},
			want: target{Line: 7, Enabled: true, Tags: []string{"a", "b"}},
		},
		{
			name: "missing keys",
			args: mapArgs{},
			want: target{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got target
			require.NoError(t, bindArguments(tt.args, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindArguments_RejectsBadNumber(t *testing.T) {
	t.Parallel()

	var got struct {
		Line int `json:"line"`
	}
	err := bindArguments(mapArgs{"line": "twelve"}, &got)
	assert.Error(t, err)
}
