package linker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Basic", "hello world", "hello_world"},
		{"Reserved Windows name", "CON", "_con_"},
		{"Mixed case", "MixedCASE.txt", "mixedcase.txt"},
		{"Leading and trailing spaces", " filename ", "_filename_"},
		{"Single period", "file.name", "file.name"},
		{"Directory-like name", "my/directory/path", "my_directory_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeName(tt.input))
		})
	}
}

func TestSafeName_LengthCapped(t *testing.T) {
	longInput := strings.Repeat("a", 1000)
	result := SafeName(longInput)
	assert.Equal(t, maxSafeNameRunes, utf8.RuneCountInString(result))
}

func TestSafeName_PeriodsPreserved(t *testing.T) {
	for _, input := range []string{"file.name", "file..name", ".hidden", "visible.", "a.b.c.d"} {
		assert.Contains(t, SafeName(input), ".")
	}
}
