package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"reader@example.com",
		"first.last+tag@sub.example.co",
		"UPPER@EXAMPLE.ORG",
	}
	for _, e := range valid {
		assert.True(t, ValidEmail(e), e)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@localhost",
		"user name@example.com",
		strings.Repeat("a", 250) + "@example.com",
	}
	for _, e := range invalid {
		assert.False(t, ValidEmail(e), e)
	}
}
