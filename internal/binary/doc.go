// Package binary downloads, verifies and installs zksolc compiler binaries.
//
// # Install pipeline
//
// An install of version V on platform P runs these steps in order:
//  1. Fetch the release catalog of P and look up the artifact name and the
//     published SHA-256 of V. A version missing from either is unknown.
//  2. Resolve the artifact URL with a Locator. Each known platform has a
//     supported version range; requests outside it are rejected.
//  3. Download the artifact into memory with a single GET (no retries).
//  4. Verify the SHA-256 of the bytes, and the detached OpenPGP signature when
//     a keyring is configured. Nothing touches the disk before this passes.
//  5. Take the per-version install lock, write the binary through a temp file
//     and rename it into place, then release the lock.
//
// # Windows archives
//
// Older windows-amd64 releases ship as .zip archives. The zksolc.exe entry is
// extracted in memory and written to the canonical binary path. No other
// platform takes this branch.
//
// # Architecture
//
// The package is organized into several components:
//   - Installer: orchestration of the steps above
//   - Locator: platform and version to artifact URL
//   - Downloader: single-shot artifact and signature fetches
//   - Verifier: SHA-256 and OpenPGP verification
//   - Extractor: zip entry extraction
package binary
