package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/binary"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/config"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/release"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/service"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/store"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/testutil"
)

const testPlatform = platform.LinuxAmd64

func init() {
	pterm.DisableStyling()
}

type harness struct {
	env     *testutil.Env
	server  *testutil.ReleaseServer
	stdout  *bytes.Buffer
	answer  bool
	prompts []string
}

func newHarness(t *testing.T, releases ...testutil.Release) *harness {
	t.Helper()
	h := &harness{
		env:    testutil.SetupTestEnv(t),
		server: testutil.NewReleaseServer(t),
		stdout: &bytes.Buffer{},
	}
	h.server.Publish(t, testPlatform.String(), releases...)
	return h
}

// run executes the CLI with args against the local release host.
func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.stdout.Reset()

	opts := options{
		stdout: h.stdout,
		stderr: &bytes.Buffer{},
		confirm: func(question string) (bool, error) {
			h.prompts = append(h.prompts, question)
			return h.answer, nil
		},
		paths: config.DefaultPaths,
		build: h.build,
	}

	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func (h *harness) build(cfg *config.Config) (*service.Versions, error) {
	fetcher := release.NewHTTPFetcher(5 * time.Second)
	resolver := release.NewResolver(fetcher,
		release.WithEndpoints(map[platform.Platform]string{testPlatform: h.server.ListURL(testPlatform.String())}))
	locator := binary.NewLocator(map[platform.Platform]binary.Source{
		testPlatform: {Prefix: h.server.Prefix(testPlatform.String()), Min: binary.VersionMin, Max: binary.VersionMax},
	}, h.server.URL, binary.VersionMin)

	installer, err := binary.NewInstaller(binary.InstallerConfig{
		DataDir:    cfg.DataDir,
		Platform:   testPlatform,
		Catalogs:   resolver,
		Downloader: binary.NewDownloader(fetcher),
		Locator:    locator,
	})
	if err != nil {
		return nil, err
	}
	return service.NewVersions(resolver, installer, store.New(cfg.DataDir), testPlatform, service.RealClock{}), nil
}

func (h *harness) binaryPath(version string) string {
	return filepath.Join(h.env.DataDir, version, "zksolc-"+version)
}

func (h *harness) global(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.env.DataDir, store.GlobalPointerFile))
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func rel(version string) testutil.Release {
	return testutil.Release{Version: version, Artifact: "zksolc-v" + version, Content: []byte("zksolc " + version)}
}

func TestInstall(t *testing.T) {
	t.Run("first install becomes global", func(t *testing.T) {
		h := newHarness(t, rel("1.3.17"), rel("1.4.0"))

		require.NoError(t, h.run(t, "install", "1.3.17"))

		data, err := os.ReadFile(h.binaryPath("1.3.17"))
		require.NoError(t, err)
		assert.Equal(t, "zksolc 1.3.17", string(data))
		assert.Equal(t, "1.3.17", h.global(t))
		assert.Contains(t, h.stdout.String(), "Global version set to 1.3.17")
	})

	t.Run("later install keeps global", func(t *testing.T) {
		h := newHarness(t, rel("1.3.17"), rel("1.4.0"))

		require.NoError(t, h.run(t, "install", "v1.3.17", "1.4.0"))

		assert.FileExists(t, h.binaryPath("1.4.0"))
		assert.Equal(t, "1.3.17", h.global(t))
	})

	t.Run("already installed offers global", func(t *testing.T) {
		h := newHarness(t, rel("1.3.17"), rel("1.4.0"))
		require.NoError(t, h.run(t, "install", "1.3.17", "1.4.0"))

		h.answer = true
		require.NoError(t, h.run(t, "install", "1.4.0"))

		assert.Len(t, h.prompts, 1)
		assert.Contains(t, h.stdout.String(), "already installed")
		assert.Equal(t, "1.4.0", h.global(t))
	})

	t.Run("declined global keeps pointer", func(t *testing.T) {
		h := newHarness(t, rel("1.3.17"), rel("1.4.0"))
		require.NoError(t, h.run(t, "install", "1.3.17", "1.4.0"))

		require.NoError(t, h.run(t, "install", "1.4.0"))

		assert.Len(t, h.prompts, 1)
		assert.Equal(t, "1.3.17", h.global(t))
		assert.Equal(t, 1, h.server.Requests("zksolc-v1.4.0"), "installed version is not downloaded again")
	})

	t.Run("current version is not prompted", func(t *testing.T) {
		h := newHarness(t, rel("1.3.17"))
		require.NoError(t, h.run(t, "install", "1.3.17"))

		require.NoError(t, h.run(t, "install", "1.3.17"))

		assert.Empty(t, h.prompts)
		assert.Contains(t, h.stdout.String(), "already installed")
		assert.Equal(t, "1.3.17", h.global(t))
	})

	t.Run("invalid version", func(t *testing.T) {
		h := newHarness(t, rel("1.3.17"))

		err := h.run(t, "install", "1.3")
		assert.ErrorContains(t, err, "invalid version")
	})

	t.Run("unknown version", func(t *testing.T) {
		h := newHarness(t, rel("1.3.17"))

		err := h.run(t, "install", "1.3.16")
		var unknown *binary.UnknownVersionError
		assert.ErrorAs(t, err, &unknown)
		assert.NoDirExists(t, filepath.Join(h.env.DataDir, "1.3.16"))
	})
}

func TestList(t *testing.T) {
	h := newHarness(t, rel("1.3.16"), rel("1.3.17"), rel("1.4.0"))
	require.NoError(t, h.run(t, "install", "1.3.17"))

	t.Run("text", func(t *testing.T) {
		require.NoError(t, h.run(t, "list"))

		out := h.stdout.String()
		assert.Contains(t, out, "1.3.17 (current)")
		assert.Contains(t, out, "Available versions:")
		assert.Contains(t, out, "1.4.0")
	})

	t.Run("json", func(t *testing.T) {
		require.NoError(t, h.run(t, "list", "--output", "json"))

		var l listing
		require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &l))
		assert.Equal(t, "linux-amd64", l.Platform)
		assert.Equal(t, "1.3.17", l.Current)
		assert.Equal(t, []string{"1.3.17"}, l.Installed)
		assert.Equal(t, []string{"1.3.16", "1.4.0"}, l.Available)
	})

	t.Run("yaml", func(t *testing.T) {
		require.NoError(t, h.run(t, "list", "-o", "yaml"))

		var l listing
		require.NoError(t, yaml.Unmarshal(h.stdout.Bytes(), &l))
		assert.Equal(t, []string{"1.3.16", "1.4.0"}, l.Available)
	})

	t.Run("unsupported format", func(t *testing.T) {
		assert.Error(t, h.run(t, "list", "-o", "xml"))
	})
}

func TestUse(t *testing.T) {
	t.Run("installed", func(t *testing.T) {
		h := newHarness(t, rel("1.3.17"), rel("1.4.0"))
		require.NoError(t, h.run(t, "install", "1.3.17", "1.4.0"))

		require.NoError(t, h.run(t, "use", "1.4.0"))
		assert.Equal(t, "1.4.0", h.global(t))
	})

	t.Run("released installs after confirmation", func(t *testing.T) {
		h := newHarness(t, rel("1.4.0"))
		h.answer = true

		require.NoError(t, h.run(t, "use", "1.4.0"))
		assert.FileExists(t, h.binaryPath("1.4.0"))
		assert.Equal(t, "1.4.0", h.global(t))
	})

	t.Run("declined install", func(t *testing.T) {
		h := newHarness(t, rel("1.4.0"))

		err := h.run(t, "use", "1.4.0")
		assert.ErrorContains(t, err, "not installed")
		assert.Empty(t, h.global(t))
	})

	t.Run("yes flag skips prompt", func(t *testing.T) {
		h := newHarness(t, rel("1.4.0"))

		require.NoError(t, h.run(t, "use", "--yes", "1.4.0"))
		assert.Empty(t, h.prompts)
		assert.Equal(t, "1.4.0", h.global(t))
	})

	t.Run("unknown", func(t *testing.T) {
		h := newHarness(t, rel("1.4.0"))

		err := h.run(t, "use", "1.3.20")
		assert.ErrorContains(t, err, "unknown version")
	})
}

func TestRemove(t *testing.T) {
	t.Run("global moves to highest remaining", func(t *testing.T) {
		h := newHarness(t, rel("1.3.16"), rel("1.3.17"), rel("1.4.0"))
		require.NoError(t, h.run(t, "install", "1.4.0", "1.3.16", "1.3.17"))

		require.NoError(t, h.run(t, "remove", "1.4.0"))

		assert.NoDirExists(t, filepath.Join(h.env.DataDir, "1.4.0"))
		assert.Equal(t, "1.3.17", h.global(t))
		assert.Contains(t, h.stdout.String(), "Global version set to 1.3.17")
	})

	t.Run("last version unsets global", func(t *testing.T) {
		h := newHarness(t, rel("1.4.0"))
		require.NoError(t, h.run(t, "install", "1.4.0"))

		require.NoError(t, h.run(t, "remove", "1.4.0"))
		assert.Empty(t, h.global(t))
		assert.Contains(t, h.stdout.String(), "Global version unset")
	})

	t.Run("not installed", func(t *testing.T) {
		h := newHarness(t, rel("1.4.0"))
		assert.ErrorContains(t, h.run(t, "remove", "1.4.0"), "not installed")
	})

	t.Run("all", func(t *testing.T) {
		h := newHarness(t, rel("1.3.17"), rel("1.4.0"))
		require.NoError(t, h.run(t, "install", "1.3.17", "1.4.0"))

		require.NoError(t, h.run(t, "remove", "all"))
		assert.DirExists(t, filepath.Join(h.env.DataDir, "1.4.0"), "declined prompt keeps versions")

		h.answer = true
		require.NoError(t, h.run(t, "remove", "all"))
		assert.NoDirExists(t, filepath.Join(h.env.DataDir, "1.3.17"))
		assert.NoDirExists(t, filepath.Join(h.env.DataDir, "1.4.0"))
		assert.Empty(t, h.global(t))
		assert.Contains(t, h.stdout.String(), "Removed 2 versions")
	})
}

func TestVersionFlag(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "--version"))
	assert.Contains(t, h.stdout.String(), Version)
}

func TestConfigErrors(t *testing.T) {
	h := newHarness(t, rel("1.4.0"))
	require.NoError(t, os.WriteFile(h.env.ConfigFile, []byte("zksvm = { data_dir = "), 0o600))

	err := h.run(t, "list")
	assert.ErrorContains(t, err, "load config")
	assert.NotContains(t, err.Error(), "stack traceback")
}

func TestConfigDataDir(t *testing.T) {
	h := newHarness(t, rel("1.4.0"))
	custom := filepath.Join(h.env.Root, "custom")
	t.Setenv("ZKSVM_DATA_DIR", "")
	require.NoError(t, os.WriteFile(h.env.ConfigFile, []byte(`zksvm = { data_dir = "`+filepath.ToSlash(custom)+`" }`), 0o600))

	require.NoError(t, h.run(t, "install", "1.4.0"))
	assert.FileExists(t, filepath.Join(custom, "1.4.0", "zksolc-1.4.0"))
}
