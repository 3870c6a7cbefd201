package etrade

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 500))
	assert.Equal(t, strings.Repeat("x", 500)+"...", truncate(strings.Repeat("x", 600), 500))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "invalid symbols: too many", (&ValidationError{Field: "symbols", Message: "too many"}).Error())
	assert.Equal(t, "API returned status 401: 401 Unauthorized",
		(&TransportError{StatusCode: 401, Status: "401 Unauthorized"}).Error())
}
