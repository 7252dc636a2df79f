package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeIdent(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"getHTTPResponse", []string{"get", "http", "response"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"field_1234", []string{"field", "1234"}},
		{"Thing$Inner", []string{"thing", "inner"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenizeIdent(tt.in))
		})
	}
}

func TestNormalizeIdent(t *testing.T) {
	assert.Equal(t, "targetfield", NormalizeIdent("targetField"))
	assert.Equal(t, "targetfield", NormalizeIdent("target_field"))
	assert.Equal(t, NormalizeIdent("OnlyIn"), NormalizeIdent("only-in"))
}
