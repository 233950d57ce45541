package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type color string

const (
	red  color = "red"
	blue color = "blue"
)

func TestEnumParse(t *testing.T) {
	e := NewEnum("color", red, blue)
	require.Equal(t, "color", e.Name())
	require.Equal(t, []string{"blue", "red"}, e.Keys())

	tests := []struct {
		in   string
		want color
		ok   bool
	}{
		{"red", red, true},
		{"  BLUE ", blue, true},
		{"green", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := e.Parse(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestEnumResolve(t *testing.T) {
	e := NewEnum("color", red, blue)

	v, changed := e.Resolve("", red)
	require.Equal(t, red, v)
	require.False(t, changed)

	v, changed = e.Resolve("Blue", red)
	require.Equal(t, blue, v)
	require.True(t, changed)

	v, changed = e.Resolve(" Green", red)
	require.Equal(t, color("green"), v)
	require.True(t, changed)
	require.False(t, e.Valid(v))
	require.True(t, e.Valid(blue))
}
