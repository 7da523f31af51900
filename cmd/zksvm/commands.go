package main

import (
	"encoding/json"
	"fmt"

	"github.com/blang/semver"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInstallCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "install <version>...",
		Short: MsgInstallShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			versions := make([]semver.Version, 0, len(args))
			for _, arg := range args {
				v, err := parseVersion(arg)
				if err != nil {
					return err
				}
				versions = append(versions, v)
			}

			for _, v := range versions {
				if err := s.install(cmd, v); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// install installs v, or offers to make it global when it is already present.
func (s *session) install(cmd *cobra.Command, v semver.Version) error {
	if s.versions.IsInstalled(v) {
		s.printf(MsgAlreadyInstalled, v)
		current, err := s.versions.CurrentVersion()
		if err != nil {
			return err
		}
		if current != nil && current.Equals(v) {
			return nil
		}
		ok, err := s.ask(fmt.Sprintf(MsgPromptSetGlobal, v))
		if err != nil || !ok {
			return err
		}
		if err := s.versions.SetGlobalVersion(v); err != nil {
			return err
		}
		s.printf(MsgGlobalSet, v)
		return nil
	}

	if err := s.download(cmd, v); err != nil {
		return err
	}

	set, err := s.versions.EnsureGlobal(v)
	if err != nil {
		return err
	}
	if set {
		s.printf(MsgGlobalSet, v)
	}
	return nil
}

func (s *session) download(cmd *cobra.Command, v semver.Version) error {
	return s.withSpinner(fmt.Sprintf(MsgInstalling, v), func() error {
		result, err := s.versions.Install(s.context(cmd.Context()), v)
		if err != nil {
			return err
		}
		s.printf(MsgInstalled, v, result.Path)
		return nil
	})
}

// listing is the structured form of `zksvm list`.
type listing struct {
	Platform  string   `json:"platform" yaml:"platform"`
	Current   string   `json:"current,omitempty" yaml:"current,omitempty"`
	Installed []string `json:"installed" yaml:"installed"`
	Available []string `json:"available" yaml:"available"`
}

func newListCmd(s *session) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unsupported output format %q", output)
			}

			installed, err := s.versions.InstalledVersions()
			if err != nil {
				return err
			}
			available, err := s.versions.AvailableVersions(s.context(cmd.Context()))
			if err != nil {
				return err
			}
			current, err := s.versions.CurrentVersion()
			if err != nil {
				return err
			}

			l := listing{
				Platform:  s.versions.Platform().String(),
				Installed: versionStrings(installed),
				Available: versionStrings(available),
			}
			if current != nil {
				l.Current = current.String()
			}

			switch output {
			case "json":
				enc := json.NewEncoder(s.opts.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(l)
			case "yaml":
				enc := yaml.NewEncoder(s.opts.stdout)
				defer enc.Close()
				return enc.Encode(l)
			}
			s.printListing(l)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", MsgFlagOutput)
	return cmd
}

func (s *session) printListing(l listing) {
	s.printf("%s", pterm.Bold.Sprint(MsgInstalledHeader))
	if len(l.Installed) == 0 {
		s.printf("  %s", MsgNothingInstalled)
	}
	for _, v := range l.Installed {
		if v == l.Current {
			s.printf("  %s%s", pterm.Green(v), MsgCurrentMarker)
			continue
		}
		s.printf("  %s", v)
	}

	s.printf("")
	s.printf("%s", pterm.Bold.Sprint(MsgAvailableHeader))
	for _, v := range l.Available {
		s.printf("  %s", v)
	}
}

func newUseCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "use <version>",
		Short: MsgUseShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVersion(args[0])
			if err != nil {
				return err
			}

			if !s.versions.IsInstalled(v) {
				released, err := s.versions.IsReleased(s.context(cmd.Context()), v)
				if err != nil {
					return err
				}
				if !released {
					return fmt.Errorf("unknown version %s", v)
				}
				ok, err := s.ask(fmt.Sprintf(MsgPromptInstall, v))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf(MsgNotInstalledWarning, v)
				}
				if err := s.download(cmd, v); err != nil {
					return err
				}
			}

			if err := s.versions.SetGlobalVersion(v); err != nil {
				return err
			}
			s.printf(MsgGlobalSet, v)
			return nil
		},
	}
}

func newRemoveCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <version|all>",
		Short: MsgRemoveShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "all" {
				return s.removeAll()
			}

			v, err := parseVersion(args[0])
			if err != nil {
				return err
			}
			if !s.versions.IsInstalled(v) {
				return fmt.Errorf(MsgNotInstalledWarning, v)
			}

			result, err := s.versions.Uninstall(v)
			if err != nil {
				return err
			}
			s.printf(MsgRemoved, v)
			s.reportGlobal(result.GlobalChanged, result.Global)
			return nil
		},
	}
}

func (s *session) removeAll() error {
	installed, err := s.versions.InstalledVersions()
	if err != nil {
		return err
	}
	if len(installed) == 0 {
		s.printf(MsgNothingToRemove)
		return nil
	}

	ok, err := s.ask(fmt.Sprintf(MsgPromptRemoveAll, len(installed)))
	if err != nil {
		return err
	}
	if !ok {
		s.printf(MsgAborted)
		return nil
	}

	result, err := s.versions.RemoveAll()
	if err != nil {
		return err
	}
	s.printf(MsgRemovedAll, len(result.Removed))
	s.reportGlobal(result.GlobalChanged, nil)
	return nil
}

func (s *session) reportGlobal(changed bool, global *semver.Version) {
	switch {
	case !changed:
	case global == nil:
		s.printf(MsgGlobalUnset)
	default:
		s.printf(MsgGlobalSet, global)
	}
}

func versionStrings(versions []semver.Version) []string {
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.String())
	}
	return out
}
