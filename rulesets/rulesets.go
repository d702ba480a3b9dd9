/* Copyright (c) 2023 Jason Ish
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions
 * are met:
 *
 * 1. Redistributions of source code must retain the above copyright
 *    notice, this list of conditions and the following disclaimer.
 * 2. Redistributions in binary form must reproduce the above copyright
 *    notice, this list of conditions and the following disclaimer in the
 *    documentation and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED ``AS IS'' AND ANY EXPRESS OR IMPLIED
 * WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
 * DISCLAIMED. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY DIRECT,
 * INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
 * (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
 * SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
 * HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT,
 * STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING
 * IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

// Package rulesets tracks which rule sources are enabled. The state
// is the filesystem: a source is enabled exactly when its marker file
// exists in the sources directory, and disabling renames the marker
// rather than deleting it so overrides survive a disable/enable round
// trip.
package rulesets

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/jasonish/rulebox/config"
	"github.com/jasonish/rulebox/core"
	"github.com/jasonish/rulebox/log"
	"github.com/jasonish/rulebox/paths"
	"github.com/jasonish/rulebox/sources"
)

const (
	markerSuffix   = ".yaml"
	disabledSuffix = ".yaml.disabled"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// SourceState is the enablement state of a source as derived from its
// marker file.
type SourceState int

const (
	Unknown SourceState = iota
	Enabled
	Disabled
)

func (s SourceState) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// EnabledSource is the contents of a marker file. Only Source is
// required, the rest override the index values for this source.
type EnabledSource struct {
	Source     string            `yaml:"source"`
	URL        string            `yaml:"url,omitempty"`
	Params     map[string]string `yaml:"params,omitempty"`
	HTTPHeader string            `yaml:"http-header,omitempty"`
	Checksum   bool              `yaml:"checksum,omitempty"`
}

// Store is the enablement state store. The filesystem marker scheme
// is one implementation; tests run it over an in-memory filesystem.
type Store interface {
	State(name string) (SourceState, error)
	IsEnabled(name string) (bool, error)
	ListEnabled() ([]string, error)
	Marker(name string) (*EnabledSource, error)
	Enable(name string, info *sources.SourceInfo) error
	Disable(name string) error
}

// MarkerStore implements Store with one marker file per enabled
// source under the sources directory.
type MarkerStore struct {
	Fs       afero.Fs
	Dir      string
	Settings config.Settings
}

func NewMarkerStore(fs afero.Fs, dir string, settings config.Settings) *MarkerStore {
	return &MarkerStore{
		Fs:       fs,
		Dir:      dir,
		Settings: settings,
	}
}

// SafeFilename flattens a source name to a marker filename stem,
// replacing path separators.
func SafeFilename(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}

func (s *MarkerStore) markerPath(name string) string {
	return filepath.Join(s.Dir, SafeFilename(name)+markerSuffix)
}

func (s *MarkerStore) disabledPath(name string) string {
	return filepath.Join(s.Dir, SafeFilename(name)+disabledSuffix)
}

func (s *MarkerStore) State(name string) (SourceState, error) {
	if enabled, err := afero.Exists(s.Fs, s.markerPath(name)); err != nil {
		return Unknown, &core.IOError{Op: "stat", Path: s.markerPath(name), Err: err}
	} else if enabled {
		return Enabled, nil
	}
	if disabled, err := afero.Exists(s.Fs, s.disabledPath(name)); err != nil {
		return Unknown, &core.IOError{Op: "stat", Path: s.disabledPath(name), Err: err}
	} else if disabled {
		return Disabled, nil
	}
	return Unknown, nil
}

func (s *MarkerStore) IsEnabled(name string) (bool, error) {
	state, err := s.State(name)
	if err != nil {
		return false, err
	}
	return state == Enabled, nil
}

// ListEnabled returns the names of all enabled sources in directory
// order. The source field inside each marker is authoritative, not
// the filename.
func (s *MarkerStore) ListEnabled() ([]string, error) {
	enabled := []string{}

	exists, err := afero.DirExists(s.Fs, s.Dir)
	if err != nil {
		return nil, &core.IOError{Op: "stat", Path: s.Dir, Err: err}
	}
	if !exists {
		return enabled, nil
	}

	infos, err := afero.ReadDir(s.Fs, s.Dir)
	if err != nil {
		return nil, &core.IOError{Op: "read directory", Path: s.Dir, Err: err}
	}

	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), markerSuffix) {
			continue
		}
		path := filepath.Join(s.Dir, info.Name())
		marker, err := s.readMarker(path)
		if err != nil {
			return nil, err
		}
		enabled = append(enabled, marker.Source)
	}

	return enabled, nil
}

// Marker returns the marker file for a source, enabled or disabled,
// or nil if the source has never been enabled.
func (s *MarkerStore) Marker(name string) (*EnabledSource, error) {
	for _, path := range []string{s.markerPath(name), s.disabledPath(name)} {
		exists, err := afero.Exists(s.Fs, path)
		if err != nil {
			return nil, &core.IOError{Op: "stat", Path: path, Err: err}
		}
		if exists {
			return s.readMarker(path)
		}
	}
	return nil, nil
}

func (s *MarkerStore) readMarker(path string) (*EnabledSource, error) {
	content, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		return nil, &core.IOError{Op: "read", Path: path, Err: err}
	}
	var marker EnabledSource
	if err := yaml.Unmarshal(content, &marker); err != nil {
		return nil, &core.IOError{Op: "parse", Path: path, Err: err}
	}
	if marker.Source == "" {
		return nil, &core.IOError{
			Op:   "parse",
			Path: path,
			Err:  fmt.Errorf("marker has no source field"),
		}
	}
	return &marker, nil
}

func (s *MarkerStore) writeMarker(path string, marker *EnabledSource) error {
	content, err := yaml.Marshal(marker)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(s.Fs, path, content, 0644); err != nil {
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Enable enables a source. A disabled marker is renamed back into
// place, preserving any overrides it holds, otherwise a fresh marker
// is written. Enabling a source whose descriptor carries an obsolete
// message is refused.
//
// As a named post-condition, enabling the first source also enables
// the default source unless that is what was just enabled. See
// bootstrapDefault.
func (s *MarkerStore) Enable(name string, info *sources.SourceInfo) error {
	if info != nil && info.Obsolete != "" {
		return &core.ConflictError{
			Source: name,
			Reason: fmt.Sprintf("obsolete: %s", info.Obsolete),
		}
	}

	if err := paths.EnsureDirExists(s.Fs, s.Dir); err != nil {
		return err
	}

	markerPath := s.markerPath(name)
	disabledPath := s.disabledPath(name)

	state, err := s.State(name)
	if err != nil {
		return err
	}

	switch state {
	case Enabled:
		fmt.Printf("%s: Ruleset %s is already enabled\n", yellow("Info"), cyan(name))
		return nil
	case Disabled:
		if err := s.Fs.Rename(disabledPath, markerPath); err != nil {
			return &core.IOError{Op: "rename", Path: disabledPath, Err: err}
		}
		fmt.Printf("Re-enabled previously disabled ruleset: %s\n", cyan(name))
	default:
		marker := EnabledSource{Source: name}
		if err := s.writeMarker(markerPath, &marker); err != nil {
			return err
		}
		fmt.Printf("Enabled ruleset: %s\n", cyan(name))
	}

	if info != nil {
		if vendor, _, found := strings.Cut(info.Vendor, "/"); found {
			fmt.Printf("  Vendor: %s\n", faint(vendor))
		} else if info.Vendor != "" {
			fmt.Printf("  Vendor: %s\n", faint(info.Vendor))
		}
		fmt.Printf("  Summary: %s\n", faint(info.Summary))
	}

	return s.bootstrapDefault(name)
}

// bootstrapDefault enables the default source when the source just
// enabled ended up being the only one and isn't itself the default.
// This gives a first-time user the base ruleset without asking.
func (s *MarkerStore) bootstrapDefault(justEnabled string) error {
	if !s.Settings.EnableBootstrap {
		return nil
	}
	defaultSource := s.Settings.DefaultSource
	if justEnabled == defaultSource {
		return nil
	}

	enabled, err := s.ListEnabled()
	if err != nil {
		return err
	}
	if len(enabled) != 1 {
		return nil
	}

	isEnabled, err := s.IsEnabled(defaultSource)
	if err != nil {
		return err
	}
	if isEnabled {
		return nil
	}

	fmt.Printf("\nEnabling default ruleset: %s\n", cyan(defaultSource))
	marker := EnabledSource{Source: defaultSource}
	return s.writeMarker(s.markerPath(defaultSource), &marker)
}

// Disable disables a source by renaming its marker. Nothing is ever
// deleted, so a later enable restores the marker as it was.
func (s *MarkerStore) Disable(name string) error {
	enabled, err := s.IsEnabled(name)
	if err != nil {
		return err
	}
	if !enabled {
		fmt.Printf("%s: Ruleset %s is not enabled\n", yellow("Info"), cyan(name))
		return nil
	}

	markerPath := s.markerPath(name)
	if err := s.Fs.Rename(markerPath, s.disabledPath(name)); err != nil {
		return &core.IOError{Op: "rename", Path: markerPath, Err: err}
	}

	fmt.Printf("Disabled ruleset: %s\n", cyan(name))
	return nil
}

// SelectableSources returns the source names that can be offered by
// the interactive picker: no required parameters, not obsolete, not
// deprecated. Sorted by name.
func SelectableSources(index *sources.Index) []string {
	names := []string{}
	for name, info := range index.Sources {
		if len(info.Parameters) > 0 || info.Obsolete != "" || info.Deprecated != "" {
			log.Debug("Source %s is not selectable", name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
