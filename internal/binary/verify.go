package binary

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/blang/semver"
)

var errNoKeyring = errors.New("no keyring configured")

// Verifier checks downloaded bytes before they are installed.
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier. A nil keyring disables signature checks.
func NewVerifier(keyring openpgp.EntityList) *Verifier {
	return &Verifier{keyring: keyring}
}

// HasKeyring reports whether signatures are verified.
func (v *Verifier) HasKeyring() bool {
	return len(v.keyring) > 0
}

// VerifyChecksum compares the SHA-256 of data with expected.
func (v *Verifier) VerifyChecksum(data, expected []byte, version semver.Version) error {
	sum := sha256.Sum256(data)
	if !bytes.Equal(sum[:], expected) {
		return &ChecksumMismatchError{
			Version:  version,
			Expected: hex.EncodeToString(expected),
			Actual:   hex.EncodeToString(sum[:]),
		}
	}
	return nil
}

// VerifySignature checks a detached signature over data against the keyring.
func (v *Verifier) VerifySignature(data, signature []byte, sigURL string) error {
	if !v.HasKeyring() {
		return &SignatureError{URL: sigURL, Err: errNoKeyring}
	}

	// try armored first
	_, err := openpgp.CheckArmoredDetachedSignature(v.keyring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	if err != nil {
		_, err = openpgp.CheckDetachedSignature(v.keyring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	}
	if err != nil {
		return &SignatureError{URL: sigURL, Err: err}
	}
	return nil
}
