package binary

import (
	"github.com/blang/semver"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
)

// Artifact identifies one downloadable compiler binary.
type Artifact struct {
	Platform platform.Platform
	Version  semver.Version
	Name     string // file name as published in the release catalog
	URL      string
}

// VerificationMethod indicates how a binary was verified
type VerificationMethod int

const (
	// VerificationSHA256 indicates only the published checksum was checked
	VerificationSHA256 VerificationMethod = iota + 1
	// VerificationSHA256AndGPG indicates the checksum and a detached signature were checked
	VerificationSHA256AndGPG
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationSHA256:
		return "SHA256"
	case VerificationSHA256AndGPG:
		return "SHA256+GPG"
	default:
		return "Unknown"
	}
}
