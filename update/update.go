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

// Package update drives a full rule update: refresh the source
// index, then for every enabled source download, extract and parse
// its archive, merge everything down to one rule per (gid, sid) and
// write the result out.
package update

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/jasonish/rulebox/archive"
	"github.com/jasonish/rulebox/config"
	"github.com/jasonish/rulebox/core"
	"github.com/jasonish/rulebox/fetch"
	"github.com/jasonish/rulebox/httputil"
	"github.com/jasonish/rulebox/log"
	"github.com/jasonish/rulebox/paths"
	"github.com/jasonish/rulebox/ruleparser"
	"github.com/jasonish/rulebox/rules"
	"github.com/jasonish/rulebox/rulesets"
	"github.com/jasonish/rulebox/sources"
)

var (
	cyan      = color.New(color.FgCyan).SprintFunc()
	green     = color.New(color.FgGreen).SprintFunc()
	greenBold = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
)

// Manager runs the update pipeline. Sources are processed one at a
// time, in listing order. The order matters: on merge, equal
// revisions keep the record from the earlier source.
type Manager struct {
	Fs       afero.Fs
	Paths    paths.Provider
	Settings config.Settings
	Index    *sources.IndexCache
	Store    rulesets.Store
	Fetcher  *fetch.Fetcher
}

// NewManager wires up a Manager with the standard collaborators over
// the given filesystem and directory layout.
func NewManager(fs afero.Fs, provider paths.Provider,
	client *httputil.HttpClient, settings config.Settings) *Manager {
	return &Manager{
		Fs:       fs,
		Paths:    provider,
		Settings: settings,
		Index:    sources.NewIndexCache(fs, provider.CacheDir(), client, settings),
		Store:    rulesets.NewMarkerStore(fs, provider.SourcesDir(), settings),
		Fetcher:  fetch.NewFetcher(fs, provider.CacheDir(), client, settings),
	}
}

// OutputPath returns the filename the merged rules are written to.
func (m *Manager) OutputPath() string {
	return filepath.Join(m.Paths.RulesDir(), m.Settings.OutputFilename)
}

// Run performs an update. Index refresh and enabled source listing
// failures abort the run; a failure while processing one source only
// loses that source's rules.
func (m *Manager) Run(force bool, quiet bool) error {
	if !quiet {
		fmt.Println(greenBold("Running Suricata rule update..."))
		fmt.Printf("\n%s\n", cyan("Updating sources..."))
	}
	if err := m.Index.Refresh(force, quiet); err != nil {
		return err
	}

	enabled, err := m.Store.ListEnabled()
	if err != nil {
		return err
	}
	if len(enabled) == 0 {
		// Transient fallback only: the default source is used for
		// this run but not persisted as enabled.
		fmt.Printf("%s: No sources configured, will use %s as fallback\n",
			yellow("Info"), cyan(m.Settings.DefaultSource))
		enabled = []string{m.Settings.DefaultSource}
	}

	index, err := m.Index.Read()
	if err != nil {
		return err
	}
	if index == nil {
		return &core.ConsistencyError{
			Expected: "sources index after refresh",
		}
	}

	merged := rules.NewRuleMap()
	for _, name := range enabled {
		if !quiet {
			fmt.Printf("\nProcessing source: %s\n", cyan(name))
		}

		info, ok := index.Sources[name]
		if !ok {
			log.Warning("Source %s not found in index", name)
			continue
		}

		sourceRules, err := m.processSource(name, &info, force, quiet)
		if err != nil {
			log.Error("Failed to process %s: %v", name, err)
			continue
		}

		if !quiet {
			fmt.Printf("  Loaded %s rules from %s\n",
				green(sourceRules.Len()), cyan(name))
		}
		merged.MergeAll(sourceRules)
	}

	if err := m.writeRules(merged); err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("\n%s: Wrote %s rules to %s\n",
			greenBold("Success"), green(merged.Len()), m.OutputPath())
	}

	return nil
}

// processSource downloads, extracts and parses one source's archive
// into a rule map. Within a source, later rule files overwrite
// earlier ones for the same key.
func (m *Manager) processSource(name string, info *sources.SourceInfo,
	force bool, quiet bool) (*rules.RuleMap, error) {

	marker, err := m.Store.Marker(name)
	if err != nil {
		return nil, err
	}
	var urlOverride, header string
	if marker != nil {
		urlOverride = marker.URL
		header = marker.HTTPHeader
	}

	url := m.Fetcher.URLFor(info, urlOverride)
	archivePath, err := m.Fetcher.Fetch(name, url, header, force, quiet)
	if err != nil {
		return nil, err
	}

	reader, err := archive.Open(archivePath)
	if err != nil {
		return nil, err
	}
	files, err := reader.Extract(m.Fs, archivePath)
	if err != nil {
		return nil, err
	}

	sourceRules := rules.NewRuleMap()
	for _, file := range files {
		if !isRuleFile(file.Name) {
			continue
		}
		parsed := ruleparser.Parse(file.Content)
		log.Debug("Parsed %d rules from %s", len(parsed), file.Name)
		for _, rule := range parsed {
			sourceRules.Put(rule)
		}
	}

	return sourceRules, nil
}

func isRuleFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".rules")
}

// writeRules writes the merged rules sorted by (gid, sid), one rule
// per line. Disabled rules survive the merge but are not written.
func (m *Manager) writeRules(merged *rules.RuleMap) error {
	if err := paths.EnsureDirExists(m.Fs, m.Paths.RulesDir()); err != nil {
		return err
	}

	outputPath := m.OutputPath()

	var output strings.Builder
	for _, rule := range merged.SortedRules() {
		if !rule.Enabled {
			continue
		}
		output.WriteString(rule.Raw)
		output.WriteString("\n")
	}

	if err := afero.WriteFile(m.Fs, outputPath, []byte(output.String()), 0644); err != nil {
		return &core.IOError{Op: "write", Path: outputPath, Err: err}
	}

	return nil
}
