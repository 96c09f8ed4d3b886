package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadCapability = errors.New("bad capability")

// Capabilities maps a capability key to its value. The value of an
// author-view capability is ignored; the value of a reviewer-accept
// capability is the contact id of the delegated reviewer.
type Capabilities map[string]int

// AuthorViewKey is the capability key granting author-view on one paper.
func AuthorViewKey(paperID int) string {
	return fmt.Sprintf("@av%d", paperID)
}

// ReviewAcceptKey is the capability key granting reviewer-accept on one paper.
func ReviewAcceptKey(paperID int) string {
	return fmt.Sprintf("@ra%d", paperID)
}

// AuthorView returns whether the bearer may view the given paper as an author.
func (c Capabilities) AuthorView(paperID int) bool {
	_, ok := c[AuthorViewKey(paperID)]
	return ok
}

// ReviewAccept returns the contact id on whose behalf the bearer may accept
// a review for the given paper, or zero.
func (c Capabilities) ReviewAccept(paperID int) int {
	return c[ReviewAcceptKey(paperID)]
}

// ClickthroughKey records the accepted version of the reviewer terms.
const ClickthroughKey = "@ct"

// Clickthrough returns the accepted reviewer-terms version, zero if none.
func (c Capabilities) Clickthrough() int {
	return c[ClickthroughKey]
}

func capabilityHMAC(secret []byte, key string, value int) string {
	hash := hmac.New(sha256.New, secret)
	hash.Write([]byte(key))
	hash.Write([]byte{0})
	hash.Write([]byte(strconv.Itoa(value)))
	return base64.RawURLEncoding.EncodeToString(hash.Sum(nil))
}

// EncodeCapability creates the URL text form of a capability, so it can be
// mailed to people without an account. The form is "key.value.signature".
func EncodeCapability(secret []byte, key string, value int) string {
	return key + "." + strconv.Itoa(value) + "." + capabilityHMAC(secret, key, value)
}

// DecodeCapability verifies the URL text form of a capability and returns
// its key and value. It returns ErrBadCapability if the signature (or
// anything else) is wrong.
func DecodeCapability(secret []byte, s string) (string, int, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "@") {
		return "", 0, ErrBadCapability
	}
	value, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, ErrBadCapability
	}
	if !hmac.Equal([]byte(capabilityHMAC(secret, parts[0], value)), []byte(parts[2])) {
		return "", 0, ErrBadCapability
	}
	return parts[0], value, nil
}
