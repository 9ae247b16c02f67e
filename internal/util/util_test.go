package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kylian Mbappé ", "kylian mbappe"},
		{"  LeBron\tJames  ", "lebron james"},
		{"", ""},
		{"Luka Dončić", "luka doncic"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestIsCapitalized(t *testing.T) {
	assert.True(t, IsCapitalized("Chiefs"))
	assert.False(t, IsCapitalized("chiefs"))
	assert.False(t, IsCapitalized(""))
	assert.False(t, IsCapitalized("25"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.95, Clamp(1.2, 0, 0.95))
	assert.Equal(t, 0.0, Clamp(-0.3, 0, 0.95))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 0.95))
	assert.Equal(t, 0.73, Round2(0.7251))
}
