package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"buyer@example.com", false},
		{"first.last+tag@mail.example.ir", false},
		{"no-at-sign", true},
		{"a@b", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Office chairs", SanitizeString("  Office\x00 chairs\n"))
	assert.Equal(t, "", SanitizeString("\t\r\n"))
}
