package auth

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
)

var ErrBadReviewToken = errors.New("bad review token")

// NewReviewToken draws a random positive per-review secret.
func NewReviewToken() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	var token = int64(binary.BigEndian.Uint64(buf[:]) >> 1)
	if token == 0 {
		token = 1 // zero means "no token" everywhere else
	}
	return token, nil
}

// FormatReviewToken returns the text form of a token ("R" plus base 32).
func FormatReviewToken(token int64) string {
	return "R" + strings.ToUpper(strconv.FormatInt(token, 32))
}

func ParseReviewToken(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || (s[0] != 'R' && s[0] != 'r') {
		return 0, ErrBadReviewToken
	}
	token, err := strconv.ParseInt(strings.ToLower(s[1:]), 32, 64)
	if err != nil || token <= 0 {
		return 0, ErrBadReviewToken
	}
	return token, nil
}
