package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"spanish", "es"},
		{"Spanish", "es"},
		{"  French ", "fr"},
		{"Deutsch", "de"},
		{"japanese", "ja"},
		{"es", "es"},
		{"pt-BR", "pt-BR"},
		{"mystery-language-name", "mystery-language-name"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLanguage(tt.in))
		})
	}
}

func TestNeedsTranslation(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"english", false},
		{"English", false},
		{"ENGLISH", false},
		{"en", false},
		{"en-GB", false},
		{"french", true},
		{"spanish", true},
		{"es", true},
		{"unknown", true},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsTranslation(tt.lang))
		})
	}
}
