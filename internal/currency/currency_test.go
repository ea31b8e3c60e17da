package currency

import (
	"testing"

	"golang.org/x/text/language"
)

func TestFormatBRL(t *testing.T) {
	f := BRL()

	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"zero", 0, "R$ 0,00"},
		{"cents only", 0.5, "R$ 0,50"},
		{"grouped thousands", 1234.5, "R$ 1.234,50"},
		{"millions", 1234567.89, "R$ 1.234.567,89"},
		{"negative", -42.1, "R$ -42,10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Format(tt.value); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatOtherLocale(t *testing.T) {
	f := New(language.AmericanEnglish, "$")
	if got := f.Format(1234.5); got != "$ 1,234.50" {
		t.Errorf("Format(1234.5) = %q, want %q", got, "$ 1,234.50")
	}
}
