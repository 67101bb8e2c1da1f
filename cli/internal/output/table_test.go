package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-12,345", FormatNumber(-12345))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$1.23", FormatCost(1.2345, ""))
	assert.Equal(t, "$0.01", FormatCost(0.0105, "USD"))
	assert.Equal(t, "1.23 EUR", FormatCost(1.23, "EUR"))
}

func TestShortenModelName(t *testing.T) {
	assert.Equal(t, "sonnet-4-5", ShortenModelName("claude-sonnet-4-5-20250929"))
	assert.Equal(t, "opus-4", ShortenModelName("claude-opus-4-20250514"))
	assert.Equal(t, "opus-4-5", ShortenModelName("claude-opus-4-5"))
	assert.Equal(t, "opus-4.5", ShortenModelName("anthropic/claude-opus-4.5"))
	assert.Equal(t, "gpt-4o", ShortenModelName("gpt-4o"))
}

func TestShortenSessionID(t *testing.T) {
	assert.Equal(t, "abcd1234", shortenSessionID("abcd1234-5678-90ef"))
	assert.Equal(t, "short", shortenSessionID("short"))
}
