package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/binary"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/config"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/release"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/service"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/store"
)

// Confirmer asks a yes/no question.
type Confirmer func(question string) (bool, error)

// options carries the process-level dependencies of the commands so tests
// can swap them.
type options struct {
	stdout  io.Writer
	stderr  io.Writer
	confirm Confirmer
	spinner bool
	paths   func() config.Paths
	build   func(cfg *config.Config) (*service.Versions, error)
}

func defaultOptions() options {
	tty := isTerminal(os.Stdin) && isTerminal(os.Stdout)
	return options{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		confirm: ptermConfirm(tty),
		spinner: tty,
		paths:   config.DefaultPaths,
		build:   buildVersions,
	}
}

// buildVersions wires the production stack from cfg.
func buildVersions(cfg *config.Config) (*service.Versions, error) {
	p := platform.Identify()
	fetcher := release.NewHTTPFetcher(cfg.Timeout())
	resolver := release.NewResolver(fetcher, release.WithFallbackBase(cfg.FallbackBase))

	locator := binary.DefaultLocator()
	if cfg.FallbackBase != "" {
		locator = binary.NewLocator(binary.DefaultSources(), cfg.FallbackBase, binary.VersionMin)
	}

	verifier := binary.NewVerifier(nil)
	if cfg.Keyring != "" {
		keyring, err := binary.LoadKeyring(cfg.Keyring)
		if err != nil {
			return nil, fmt.Errorf("load keyring %s: %w", cfg.Keyring, err)
		}
		verifier = binary.NewVerifier(keyring)
	}

	installer, err := binary.NewInstaller(binary.InstallerConfig{
		DataDir:    cfg.DataDir,
		Platform:   p,
		Catalogs:   resolver,
		Downloader: binary.NewDownloader(fetcher),
		Locator:    locator,
		Verifier:   verifier,
	})
	if err != nil {
		return nil, err
	}

	return service.NewVersions(resolver, installer, store.New(cfg.DataDir), p, service.RealClock{}), nil
}

func ptermConfirm(interactive bool) Confirmer {
	return func(question string) (bool, error) {
		if !interactive {
			pterm.Warning.Println(MsgNonInteractive)
			return false, nil
		}
		return pterm.DefaultInteractiveConfirm.WithDefaultValue(true).Show(question)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// session is the state shared by a single command invocation.
type session struct {
	opts      options
	versions  *service.Versions
	assumeYes bool
}

func (s *session) ask(question string) (bool, error) {
	if s.assumeYes {
		return true, nil
	}
	return s.opts.confirm(question)
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.opts.stdout, format+"\n", args...)
}

// withSpinner runs fn behind a spinner on interactive terminals.
func (s *session) withSpinner(text string, fn func() error) error {
	if !s.opts.spinner {
		return fn()
	}

	spinner, err := pterm.DefaultSpinner.WithWriter(s.opts.stderr).WithRemoveWhenDone(true).Start(text)
	if err != nil {
		return fn()
	}
	err = fn()
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	return spinner.Stop()
}

func (s *session) context(cmdCtx context.Context) context.Context {
	if cmdCtx != nil {
		return cmdCtx
	}
	return context.Background()
}
