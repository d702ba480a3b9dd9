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

package rulesets

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonish/rulebox/config"
	"github.com/jasonish/rulebox/core"
	"github.com/jasonish/rulebox/sources"
)

func testStore(t *testing.T) *MarkerStore {
	t.Helper()
	return NewMarkerStore(afero.NewMemMapFs(), "/sources", config.Default())
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "et-open", SafeFilename("et/open"))
	assert.Equal(t, "simple", SafeFilename("simple"))
	assert.Equal(t, "a-b-c", SafeFilename("a/b/c"))
}

func TestEnableDisable(t *testing.T) {
	store := testStore(t)

	enabled, err := store.IsEnabled("et/open")
	require.Nil(t, err)
	assert.False(t, enabled)

	require.Nil(t, store.Enable("et/open", nil))

	enabled, err = store.IsEnabled("et/open")
	require.Nil(t, err)
	assert.True(t, enabled)

	// The marker carries the source name, slashes intact.
	marker, err := store.Marker("et/open")
	require.Nil(t, err)
	require.NotNil(t, marker)
	assert.Equal(t, "et/open", marker.Source)

	// The filename has them flattened.
	exists, err := afero.Exists(store.Fs, "/sources/et-open.yaml")
	require.Nil(t, err)
	assert.True(t, exists)

	require.Nil(t, store.Disable("et/open"))

	enabled, err = store.IsEnabled("et/open")
	require.Nil(t, err)
	assert.False(t, enabled)

	state, err := store.State("et/open")
	require.Nil(t, err)
	assert.Equal(t, Disabled, state)

	// Disable renames, never deletes.
	exists, err = afero.Exists(store.Fs, "/sources/et-open.yaml.disabled")
	require.Nil(t, err)
	assert.True(t, exists)
}

func TestReenablePreservesOverrides(t *testing.T) {
	store := testStore(t)

	// An existing marker with overrides, as a user may have written
	// by hand.
	markerYaml := "source: et/pro\nurl: https://example/custom.tar.gz\nhttp-header: \"Authorization: Bearer xxx\"\n"
	require.Nil(t, afero.WriteFile(store.Fs, "/sources/et-pro.yaml",
		[]byte(markerYaml), 0644))

	require.Nil(t, store.Disable("et/pro"))
	require.Nil(t, store.Enable("et/pro", nil))

	marker, err := store.Marker("et/pro")
	require.Nil(t, err)
	require.NotNil(t, marker)
	assert.Equal(t, "et/pro", marker.Source)
	assert.Equal(t, "https://example/custom.tar.gz", marker.URL)
	assert.Equal(t, "Authorization: Bearer xxx", marker.HTTPHeader)
}

func TestEnableAlreadyEnabled(t *testing.T) {
	store := testStore(t)
	require.Nil(t, store.Enable("et/open", nil))
	require.Nil(t, store.Enable("et/open", nil))

	enabled, err := store.ListEnabled()
	require.Nil(t, err)
	assert.Equal(t, []string{"et/open"}, enabled)
}

func TestDisableNotEnabled(t *testing.T) {
	store := testStore(t)
	require.Nil(t, store.Disable("et/open"))

	state, err := store.State("et/open")
	require.Nil(t, err)
	assert.Equal(t, Unknown, state)
}

func TestEnableObsolete(t *testing.T) {
	store := testStore(t)
	info := sources.SourceInfo{
		Vendor:   "old",
		Summary:  "Old and gone",
		Obsolete: "no longer maintained",
	}

	err := store.Enable("old/gone", &info)
	var conflict *core.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "old/gone", conflict.Source)

	// No marker of any kind was created.
	state, err := store.State("old/gone")
	require.Nil(t, err)
	assert.Equal(t, Unknown, state)

	enabled, err := store.ListEnabled()
	require.Nil(t, err)
	assert.Empty(t, enabled)
}

func TestDefaultBootstrap(t *testing.T) {
	store := testStore(t)

	// Enabling a non-default source as the first source also enables
	// the default.
	require.Nil(t, store.Enable("oisf/trafficid", nil))

	enabled, err := store.ListEnabled()
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{"oisf/trafficid", "et/open"}, enabled)
}

func TestDefaultBootstrapNotForDefault(t *testing.T) {
	store := testStore(t)

	// The default source doesn't bootstrap itself twice.
	require.Nil(t, store.Enable("et/open", nil))

	enabled, err := store.ListEnabled()
	require.Nil(t, err)
	assert.Equal(t, []string{"et/open"}, enabled)
}

func TestDefaultBootstrapOnlyFirst(t *testing.T) {
	store := testStore(t)

	require.Nil(t, store.Enable("et/open", nil))
	require.Nil(t, store.Disable("et/open"))

	// Two non-default sources: only the first triggers the
	// bootstrap, and the re-enabled default stays put.
	require.Nil(t, store.Enable("one/a", nil))
	require.Nil(t, store.Enable("two/b", nil))

	enabled, err := store.ListEnabled()
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{"one/a", "two/b", "et/open"}, enabled)
}

func TestDefaultBootstrapDisabled(t *testing.T) {
	settings := config.Default()
	settings.EnableBootstrap = false
	store := NewMarkerStore(afero.NewMemMapFs(), "/sources", settings)

	require.Nil(t, store.Enable("oisf/trafficid", nil))

	enabled, err := store.ListEnabled()
	require.Nil(t, err)
	assert.Equal(t, []string{"oisf/trafficid"}, enabled)
}

func TestListEnabledBadMarker(t *testing.T) {
	store := testStore(t)
	require.Nil(t, afero.WriteFile(store.Fs, "/sources/bad.yaml",
		[]byte("%not yaml%"), 0644))

	_, err := store.ListEnabled()
	var ioError *core.IOError
	assert.ErrorAs(t, err, &ioError)
	assert.Equal(t, "/sources/bad.yaml", ioError.Path)
}

func TestListEnabledInternalNameAuthoritative(t *testing.T) {
	store := testStore(t)

	// The filename says one thing, the source field another. The
	// field wins.
	require.Nil(t, afero.WriteFile(store.Fs, "/sources/renamed.yaml",
		[]byte("source: et/open\n"), 0644))

	enabled, err := store.ListEnabled()
	require.Nil(t, err)
	assert.Equal(t, []string{"et/open"}, enabled)
}

func TestSelectableSources(t *testing.T) {
	catalog := &sources.Index{
		Version: 1,
		Sources: map[string]sources.SourceInfo{
			"b/normal": {Vendor: "b", Summary: "ok"},
			"a/normal": {Vendor: "a", Summary: "ok"},
			"c/params": {Vendor: "c", Summary: "needs token",
				Parameters: map[string]interface{}{"secret": "x"}},
			"d/obsolete":   {Vendor: "d", Summary: "gone", Obsolete: "gone"},
			"e/deprecated": {Vendor: "e", Summary: "old", Deprecated: "old"},
		},
	}

	assert.Equal(t, []string{"a/normal", "b/normal"}, SelectableSources(catalog))
}
