package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "Acme", "acme"},
		{"corporation suffix", "Acme Corporation", "acme"},
		{"corp dot suffix", "Acme Corp.", "acme"},
		{"inc dot suffix", "TechStart Inc.", "techstart"},
		{"incorporated suffix", "TechStart Incorporated", "techstart"},
		{"llc suffix", "Globex LLC", "globex"},
		{"dotted llc suffix", "Globex L.L.C.", "globex"},
		{"ltd suffix", "Initech Ltd", "initech"},
		{"limited suffix", "Initech Limited", "initech"},
		{"gmbh suffix", "Hooli GmbH", "hooli"},
		{"co dot suffix", "Wayne Co.", "wayne"},
		{"company suffix", "Wayne Company", "wayne"},
		{"comma removed", "Acme, Inc.", "acme"},
		{"periods removed", "A.B.C.", "abc"},
		{"mid-string designator removed", "Acme Corp. Holdings", "acme holdings"},
		{"whitespace trimmed", "  Acme  ", "acme"},
		{"empty input", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeCompanyName(tt.input))
		})
	}
}

func TestNormalizeCompanyNameIdempotent(t *testing.T) {
	inputs := []string{
		"Acme Corporation",
		"TechStart Inc.",
		"Globex L.L.C.",
		"Wayne Company",
		"already normalized",
		"",
	}

	for _, input := range inputs {
		once := NormalizeCompanyName(input)
		twice := NormalizeCompanyName(once)
		assert.Equal(t, once, twice, "normalizing %q a second time changed the result", input)
	}
}

func TestNormalizeCompanyNameEquivalentForms(t *testing.T) {
	// Different legal designators for the same company collapse to the
	// same normalized form.
	forms := []string{
		"Acme Corporation",
		"Acme Corp.",
		"acme corporation",
		"ACME CORPORATION",
		"Acme",
	}

	for _, form := range forms {
		assert.Equal(t, "acme", NormalizeCompanyName(form))
	}
}

func TestRegistry(t *testing.T) {
	fn, ok := Get("ncompany")
	assert.True(t, ok)
	assert.Equal(t, "acme", fn("Acme Corp."))

	_, ok = Get("does-not-exist")
	assert.False(t, ok)

	// Unknown normalizers pass the value through
	assert.Equal(t, "Value", Apply("Value", "does-not-exist"))
}

func TestApplyChain(t *testing.T) {
	result := ApplyChain("  Acme   Corp. ", "ncompany", "collapse_whitespace")
	assert.Equal(t, "acme", result)
}
