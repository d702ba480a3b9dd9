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

// The rulebox enable-ruleset and disable-ruleset commands. Without a
// ruleset name on the command line an interactive picker is shown,
// terminal permitting.
package rulesets

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/jasonish/rulebox/config"
	"github.com/jasonish/rulebox/httputil"
	"github.com/jasonish/rulebox/log"
	"github.com/jasonish/rulebox/paths"
	"github.com/jasonish/rulebox/prompt"
	store "github.com/jasonish/rulebox/rulesets"
	"github.com/jasonish/rulebox/sources"
	"github.com/jasonish/rulebox/useragent"
)

var opts struct {
	Verbose bool
	User    bool
}

type app struct {
	settings config.Settings
	fs       afero.Fs
	paths    paths.Provider
	store    *store.MarkerStore
	index    *sources.IndexCache
}

func parseFlags(name string, args []string) []string {
	flagset := pflag.NewFlagSet(name, pflag.ExitOnError)
	flagset.BoolVarP(&opts.Verbose, "verbose", "v", false,
		"Enable debug logging")
	flagset.BoolVar(&opts.User, "user", false,
		"Use user directories instead of system directories")
	flagset.Parse(args)

	if opts.Verbose {
		log.SetLevel(log.DEBUG)
	}

	return flagset.Args()
}

func newApp() *app {
	userMode := opts.User || runtime.GOOS == "windows"

	settings, err := config.Load(userMode)
	if err != nil {
		log.Fatal(err)
	}

	fs := afero.NewOsFs()
	provider := paths.NewProvider(userMode)
	client := httputil.NewHttpClient(useragent.String())

	return &app{
		settings: settings,
		fs:       fs,
		paths:    provider,
		store:    store.NewMarkerStore(fs, provider.SourcesDir(), settings),
		index:    sources.NewIndexCache(fs, provider.CacheDir(), client, settings),
	}
}

func EnableMain(args []string) {
	rest := parseFlags("enable-ruleset", args)
	app := newApp()

	index, err := app.index.GetOrDownload()
	if err != nil {
		log.Fatal(err)
	}

	var name string
	if len(rest) > 0 {
		name = rest[0]
	} else {
		name = pickSelectable(index)
		if name == "" {
			return
		}
	}

	info, ok := index.Sources[name]
	if !ok {
		log.Fatal(fmt.Sprintf("Unknown ruleset: %s", name))
	}

	if err := app.store.Enable(name, &info); err != nil {
		log.Fatal(err)
	}
}

func DisableMain(args []string) {
	rest := parseFlags("disable-ruleset", args)
	app := newApp()

	var name string
	if len(rest) > 0 {
		name = rest[0]
	} else {
		name = pickEnabled(app.store)
		if name == "" {
			return
		}
	}

	if err := app.store.Disable(name); err != nil {
		log.Fatal(err)
	}
}

func requireTerminal() {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "error: a ruleset name is required")
		os.Exit(1)
	}
}

// pickSelectable prompts for one of the sources that can be enabled
// without extra configuration. Returns "" on cancel.
func pickSelectable(index *sources.Index) string {
	requireTerminal()

	names := store.SelectableSources(index)
	if len(names) == 0 {
		log.Warning("No sources available without parameters")
		return ""
	}

	items := make([]prompt.Item, 0, len(names))
	for _, name := range names {
		items = append(items, prompt.Item{
			Name:    name,
			Summary: index.Sources[name].Summary,
		})
	}

	name, ok, err := prompt.SelectSource("Select a ruleset to enable:", items)
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		return ""
	}
	return name
}

// pickEnabled prompts for one of the currently enabled sources.
// Returns "" on cancel or if nothing is enabled.
func pickEnabled(markers *store.MarkerStore) string {
	requireTerminal()

	enabled, err := markers.ListEnabled()
	if err != nil {
		log.Fatal(err)
	}
	if len(enabled) == 0 {
		log.Info("No rulesets are currently enabled")
		return ""
	}
	sort.Strings(enabled)

	items := make([]prompt.Item, 0, len(enabled))
	for _, name := range enabled {
		items = append(items, prompt.Item{Name: name})
	}

	name, ok, err := prompt.SelectSource("Select a ruleset to disable:", items)
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		return ""
	}
	return name
}
