package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"asha", "asha"},
		{"100%", `100\%`},
		{"room_1", `room\_1`},
		{`a\b`, `a\\b`},
		{"%_%", `\%\_\%`},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in), "input %q", tt.in)
	}
}

func TestSortColumnsWhitelist(t *testing.T) {
	for key, col := range sortColumns {
		assert.NotEmpty(t, col, "sort key %s", key)
	}
	_, ok := sortColumns["'; DROP TABLE rents; --"]
	assert.False(t, ok)
}
