package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewTokenRoundtrip(t *testing.T) {
	for _, token := range []int64{1, 31, 32, 987654321} {
		parsed, err := ParseReviewToken(FormatReviewToken(token))
		assert.NoError(t, err)
		assert.Equal(t, token, parsed)
	}

	// lowercase and surrounding whitespace are accepted
	parsed, err := ParseReviewToken("  r11  ")
	assert.NoError(t, err)
	assert.Equal(t, int64(33), parsed)
}

func TestParseReviewTokenRejects(t *testing.T) {
	for _, bad := range []string{"", "R", "X11", "R0", "R-1", "R!!", "11"} {
		_, err := ParseReviewToken(bad)
		assert.Equal(t, ErrBadReviewToken, err, bad)
	}
}

func TestNewReviewToken(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 16; i++ {
		token, err := NewReviewToken()
		assert.NoError(t, err)
		assert.Greater(t, token, int64(0))
		assert.False(t, seen[token], "tokens repeat")
		seen[token] = true
	}
}
