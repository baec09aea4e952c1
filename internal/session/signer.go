package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidCookie is returned for cookie values that are malformed or fail signature checks.
var ErrInvalidCookie = errors.New("invalid session cookie")

// Signer binds session identifiers to the server secret so clients cannot forge them.
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer using secret as the HMAC key.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns id.base64url(HMAC-SHA256(secret, id)).
func (s *Signer) Sign(id string) string {
	return id + "." + base64.RawURLEncoding.EncodeToString(s.mac(id))
}

// Verify checks value and returns the identifier it carries.
func (s *Signer) Verify(value string) (string, error) {
	idx := strings.LastIndexByte(value, '.')
	if idx <= 0 || idx == len(value)-1 {
		return "", ErrInvalidCookie
	}

	id := value[:idx]
	receivedSig, err := base64.RawURLEncoding.DecodeString(value[idx+1:])
	if err != nil {
		return "", ErrInvalidCookie
	}

	// constant-time comparison
	if !hmac.Equal(receivedSig, s.mac(id)) {
		return "", ErrInvalidCookie
	}

	return id, nil
}

func (s *Signer) mac(id string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))
	return mac.Sum(nil)
}
