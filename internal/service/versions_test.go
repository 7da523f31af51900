package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/binary"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/release"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/store"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/testutil"
)

const testPlatform = platform.LinuxAmd64

type fixture struct {
	env      *testutil.Env
	server   *testutil.ReleaseServer
	store    *store.Store
	versions *Versions
}

// newFixture wires the service to a local release host and a temp data dir.
func newFixture(t *testing.T, releases ...testutil.Release) *fixture {
	t.Helper()
	env := testutil.SetupTestEnv(t)
	srv := testutil.NewReleaseServer(t)
	srv.Publish(t, testPlatform.String(), releases...)

	resolver := release.NewResolver(release.NewHTTPFetcher(5*time.Second),
		release.WithEndpoints(map[platform.Platform]string{testPlatform: srv.ListURL(testPlatform.String())}))
	locator := binary.NewLocator(map[platform.Platform]binary.Source{
		testPlatform: {Prefix: srv.Prefix(testPlatform.String()), Min: binary.VersionMin, Max: binary.VersionMax},
	}, srv.URL, binary.VersionMin)

	installer, err := binary.NewInstaller(binary.InstallerConfig{
		DataDir:    env.DataDir,
		Platform:   testPlatform,
		Catalogs:   resolver,
		Downloader: binary.NewDownloader(release.NewHTTPFetcher(5 * time.Second)),
		Locator:    locator,
	})
	require.NoError(t, err)

	s := store.New(env.DataDir)
	clock := &StepClock{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Step: 2 * time.Second}
	return &fixture{
		env:      env,
		server:   srv,
		store:    s,
		versions: NewVersions(resolver, installer, s, testPlatform, clock),
	}
}

func rel(version string) testutil.Release {
	return testutil.Release{Version: version, Artifact: "zksolc-v" + version, Content: []byte("zksolc " + version)}
}

func v(s string) semver.Version {
	return semver.MustParse(s)
}

func strs(versions []semver.Version) []string {
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.String())
	}
	return out
}

func TestVersions_Install(t *testing.T) {
	f := newFixture(t, rel("1.3.16"), rel("1.3.17"))

	result, err := f.versions.Install(context.Background(), v("1.3.17"))
	require.NoError(t, err)

	assert.Equal(t, "1.3.17", result.Version.String())
	assert.Equal(t, f.store.BinaryPath(v("1.3.17"), testPlatform), result.Path)
	assert.Equal(t, 2*time.Second, result.Duration)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, "zksolc 1.3.17", string(data))

	installed, err := f.versions.InstalledVersions()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.3.17"}, strs(installed))
}

func TestVersions_InstallUnknownVersion(t *testing.T) {
	f := newFixture(t, rel("1.3.16"))

	_, err := f.versions.Install(context.Background(), v("1.3.18"))

	var unknown *binary.UnknownVersionError
	require.ErrorAs(t, err, &unknown)
	assert.False(t, f.versions.IsInstalled(v("1.3.18")))
}

func TestVersions_CatalogQueries(t *testing.T) {
	f := newFixture(t, rel("1.4.0"), rel("1.3.16"), rel("1.3.17"))

	all, err := f.versions.AllVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1.3.16", "1.3.17", "1.4.0"}, strs(all))

	_, err = f.versions.Install(context.Background(), v("1.3.17"))
	require.NoError(t, err)

	available, err := f.versions.AvailableVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1.3.16", "1.4.0"}, strs(available))

	released, err := f.versions.IsReleased(context.Background(), v("1.4.0"))
	require.NoError(t, err)
	assert.True(t, released)

	released, err = f.versions.IsReleased(context.Background(), v("1.4.1"))
	require.NoError(t, err)
	assert.False(t, released)

	// every query refetches the list
	assert.Equal(t, 5, f.server.Requests("list.json"))
}

func TestVersions_GlobalPointer(t *testing.T) {
	f := newFixture(t, rel("1.3.16"), rel("1.3.17"))
	ctx := context.Background()

	current, err := f.versions.CurrentVersion()
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = f.versions.Install(ctx, v("1.3.16"))
	require.NoError(t, err)

	set, err := f.versions.EnsureGlobal(v("1.3.16"))
	require.NoError(t, err)
	assert.True(t, set, "first install becomes global")

	_, err = f.versions.Install(ctx, v("1.3.17"))
	require.NoError(t, err)

	set, err = f.versions.EnsureGlobal(v("1.3.17"))
	require.NoError(t, err)
	assert.False(t, set, "existing global is kept")

	require.NoError(t, f.versions.SetGlobalVersion(v("1.3.17")))
	current, err = f.versions.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.3.17", current.String())

	assert.Error(t, f.versions.SetGlobalVersion(v("1.4.0")), "not installed")

	require.NoError(t, f.versions.UnsetGlobalVersion())
	current, err = f.versions.CurrentVersion()
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestVersions_Uninstall(t *testing.T) {
	ctx := context.Background()

	t.Run("non global version keeps pointer", func(t *testing.T) {
		f := newFixture(t, rel("1.3.16"), rel("1.3.17"))
		for _, ver := range []string{"1.3.16", "1.3.17"} {
			_, err := f.versions.Install(ctx, v(ver))
			require.NoError(t, err)
		}
		require.NoError(t, f.store.SetGlobal(v("1.3.17")))

		result, err := f.versions.Uninstall(v("1.3.16"))
		require.NoError(t, err)
		assert.False(t, result.GlobalChanged)
		assert.Equal(t, "1.3.17", result.Global.String())
	})

	t.Run("global moves to highest remaining", func(t *testing.T) {
		f := newFixture(t, rel("1.3.13"), rel("1.3.16"), rel("1.4.0"))
		for _, ver := range []string{"1.3.13", "1.3.16", "1.4.0"} {
			_, err := f.versions.Install(ctx, v(ver))
			require.NoError(t, err)
		}
		require.NoError(t, f.store.SetGlobal(v("1.3.16")))

		result, err := f.versions.Uninstall(v("1.3.16"))
		require.NoError(t, err)
		assert.True(t, result.GlobalChanged)
		assert.Equal(t, "1.4.0", result.Global.String())

		current, err := f.versions.CurrentVersion()
		require.NoError(t, err)
		assert.Equal(t, "1.4.0", current.String())
	})

	t.Run("last version clears global", func(t *testing.T) {
		f := newFixture(t, rel("1.3.17"))
		_, err := f.versions.Install(ctx, v("1.3.17"))
		require.NoError(t, err)
		require.NoError(t, f.store.SetGlobal(v("1.3.17")))

		result, err := f.versions.Uninstall(v("1.3.17"))
		require.NoError(t, err)
		assert.True(t, result.GlobalChanged)
		assert.Nil(t, result.Global)

		current, err := f.versions.CurrentVersion()
		require.NoError(t, err)
		assert.Nil(t, current)
	})

	t.Run("absent version", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.versions.Uninstall(v("1.3.17"))
		require.NoError(t, err)
		assert.False(t, result.GlobalChanged)
	})
}

func TestVersions_RemoveAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rel("1.3.16"), rel("1.3.17"))
	for _, ver := range []string{"1.3.16", "1.3.17"} {
		_, err := f.versions.Install(ctx, v(ver))
		require.NoError(t, err)
	}
	require.NoError(t, f.store.SetGlobal(v("1.3.16")))

	result, err := f.versions.RemoveAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.3.16", "1.3.17"}, strs(result.Removed))
	assert.True(t, result.GlobalChanged)

	installed, err := f.versions.InstalledVersions()
	require.NoError(t, err)
	assert.Empty(t, installed)

	current, err := f.versions.CurrentVersion()
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestVersions_RemoveVersionLeavesPointer(t *testing.T) {
	f := newFixture(t, rel("1.3.17"))
	_, err := f.versions.Install(context.Background(), v("1.3.17"))
	require.NoError(t, err)
	require.NoError(t, f.store.SetGlobal(v("1.3.17")))

	require.NoError(t, f.versions.RemoveVersion(v("1.3.17")))

	current, err := f.versions.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.3.17", current.String())
}

// failingInstaller returns a fixed error.
type failingInstaller struct{ err error }

func (f failingInstaller) Install(ctx context.Context, v semver.Version) (string, error) {
	return "", f.err
}

func TestVersions_InstallPropagatesErrors(t *testing.T) {
	boom := errors.New("disk full")
	s := store.New(t.TempDir())
	svc := NewVersions(nil, failingInstaller{err: boom}, s, testPlatform, nil)

	_, err := svc.Install(context.Background(), v("1.3.17"))
	assert.Same(t, boom, err)
}

func TestSubtract(t *testing.T) {
	all := []semver.Version{v("1.3.13"), v("1.3.16"), v("1.3.17"), v("1.4.0")}
	exclude := []semver.Version{v("1.3.9"), v("1.3.16"), v("1.4.0"), v("1.4.1")}

	assert.Equal(t, []string{"1.3.13", "1.3.17"}, strs(subtract(all, exclude)))
	assert.Equal(t, strs(all), strs(subtract(all, nil)))
	assert.Empty(t, subtract(nil, exclude))
}

func TestStepClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &StepClock{Start: start, Step: time.Second}

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Second), c.Now())
	assert.Equal(t, start.Add(2*time.Second), c.Now())
}
