package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{"Valid pretty format", "pretty", false},
		{"Valid csv format", "csv", false},
		{"JSON not supported", "json", true},
		{"Empty format", "", true},
		{"Case sensitive", "PRETTY", true},
		{"Surrounding spaces", " csv ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateOutputFormat(%q) expected error but got none", tt.format)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateOutputFormat(%q) unexpected error = %v", tt.format, err)
			}
		})
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	err := ValidateOutputFormat("xml")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "xml") || !strings.Contains(err.Error(), "pretty") {
		t.Errorf("error message should name the bad and accepted formats, got %q", err.Error())
	}
}
