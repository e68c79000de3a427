package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    int
		want int
	}{
		{"below", 0, 1},
		{"inside", 3, 3},
		{"above", 100, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Clamp(tt.v, 1, 5))
		})
	}
}

func TestPointer(t *testing.T) {
	t.Parallel()

	p := Pointer("x")
	assert.Equal(t, "x", *p)
}
