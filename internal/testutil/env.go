// Package testutil provides utilities for testing zksvm in isolation.
package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// Env describes the isolated directories created by SetupTestEnv.
type Env struct {
	Root       string
	ConfigFile string
	DataDir    string
}

// SetupTestEnv points every zksvm location at a fresh temp directory so tests
// never read the user's config or touch real installs. The directories are
// removed by t.TempDir().
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Root:       tmpDir,
		ConfigFile: filepath.Join(tmpDir, "config", "zksvm.lua"),
		DataDir:    filepath.Join(tmpDir, "data"),
	}

	t.Setenv("ZKSVM_CONFIG", env.ConfigFile)
	t.Setenv("ZKSVM_DATA_DIR", env.DataDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg-config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "xdg-data"))

	for _, dir := range []string{filepath.Dir(env.ConfigFile), env.DataDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}

// ReleaseServer is an in-process release host. It serves the manifest of a
// platform at /<platform>/list.json and artifacts at /<platform>/<artifact>.
type ReleaseServer struct {
	*httptest.Server

	mu        sync.Mutex
	manifests map[string][]byte
	artifacts map[string][]byte
	requests  map[string]int
}

// Release describes one published version.
type Release struct {
	Version  string
	Artifact string
	Content  []byte
	// NoChecksum omits the build record from the manifest.
	NoChecksum bool
}

// NewReleaseServer starts a release host closed at test cleanup.
func NewReleaseServer(t *testing.T) *ReleaseServer {
	t.Helper()
	s := &ReleaseServer{
		manifests: make(map[string][]byte),
		artifacts: make(map[string][]byte),
		requests:  make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *ReleaseServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests[r.URL.Path]++
	body, ok := s.manifests[r.URL.Path]
	if !ok {
		body, ok = s.artifacts[r.URL.Path]
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(body)
}

// Publish replaces the manifest of platform with releases and serves their artifacts.
func (s *ReleaseServer) Publish(t *testing.T, platform string, releases ...Release) {
	t.Helper()

	type build struct {
		Version string `json:"version"`
		SHA256  string `json:"sha256"`
	}
	manifest := struct {
		Releases map[string]string `json:"releases"`
		Builds   []build           `json:"builds"`
	}{Releases: map[string]string{}, Builds: []build{}}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rel := range releases {
		manifest.Releases[rel.Version] = rel.Artifact
		if !rel.NoChecksum {
			sum := sha256.Sum256(rel.Content)
			manifest.Builds = append(manifest.Builds, build{Version: rel.Version, SHA256: "0x" + hex.EncodeToString(sum[:])})
		}
		s.artifacts["/"+platform+"/"+rel.Artifact] = rel.Content
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	s.manifests["/"+platform+"/list.json"] = data
}

// ListURL returns the manifest URL of platform.
func (s *ReleaseServer) ListURL(platform string) string {
	return s.URL + "/" + platform + "/list.json"
}

// Prefix returns the artifact URL prefix of platform.
func (s *ReleaseServer) Prefix(platform string) string {
	return s.URL + "/" + platform
}

// Requests returns how often paths containing substr were requested.
func (s *ReleaseServer) Requests(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for path, count := range s.requests {
		if strings.Contains(path, substr) {
			n += count
		}
	}
	return n
}
