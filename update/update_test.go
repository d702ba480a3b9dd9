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

package update

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonish/rulebox/config"
	"github.com/jasonish/rulebox/httputil"
	"github.com/jasonish/rulebox/rulesets"
)

type testPaths struct{}

func (testPaths) SourcesDir() string { return "/sources" }
func (testPaths) CacheDir() string   { return "/cache" }
func (testPaths) RulesDir() string   { return "/rules" }

func tarGz(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)
	for name, content := range entries {
		require.Nil(t, tarWriter.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(content)),
		}))
		_, err := tarWriter.Write([]byte(content))
		require.Nil(t, err)
	}
	require.Nil(t, tarWriter.Close())
	require.Nil(t, gzipWriter.Close())
	return buf.Bytes()
}

// testServer serves a source index naming one source per archive in
// the archives map, plus the archives themselves.
func testServer(t *testing.T, archives map[string][]byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	index := "version: 1\nsources:\n"
	for name := range archives {
		slug := rulesets.SafeFilename(name)
		index += fmt.Sprintf("  %s:\n    vendor: %s\n    summary: %s\n", name, name, name)
		index += fmt.Sprintf("    url: URLBASE/%s.tar.gz\n", slug)
	}

	for name, content := range archives {
		payload := content
		mux.HandleFunc("/"+rulesets.SafeFilename(name)+".tar.gz",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write(payload)
			})
	}

	var server *httptest.Server
	mux.HandleFunc("/index.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.ReplaceAll(index, "URLBASE", server.URL)))
	})

	server = httptest.NewServer(mux)
	return server
}

func testManager(t *testing.T, serverURL string) *Manager {
	t.Helper()
	fs := afero.NewMemMapFs()
	settings := config.Default()
	settings.IndexURL = serverURL + "/index.yaml"
	return NewManager(fs, testPaths{}, httputil.NewHttpClient("test"), settings)
}

func readOutput(t *testing.T, m *Manager) string {
	t.Helper()
	content, err := afero.ReadFile(m.Fs, m.OutputPath())
	require.Nil(t, err)
	return string(content)
}

func TestRunFallbackSource(t *testing.T) {
	server := testServer(t, map[string][]byte{
		"et/open": tarGz(t, map[string]string{
			"rules/a.rules": `alert tcp any any -> any any (msg:"one"; sid:1; rev:1;)` + "\n",
		}),
	})
	defer server.Close()

	m := testManager(t, server.URL)
	require.Nil(t, m.Run(false, true))

	assert.Equal(t,
		"alert tcp any any -> any any (msg:\"one\"; sid:1; rev:1;)\n",
		readOutput(t, m))

	// The fallback is transient: et/open was not enabled.
	enabled, err := m.Store.ListEnabled()
	require.Nil(t, err)
	assert.Empty(t, enabled)
}

func TestRunMergesHighestRevision(t *testing.T) {
	server := testServer(t, map[string][]byte{
		"one/first": tarGz(t, map[string]string{
			"a.rules": `alert tcp any any -> any any (msg:"old"; sid:1000001; rev:2;)` + "\n",
		}),
		"two/second": tarGz(t, map[string]string{
			"b.rules": `alert tcp any any -> any any (msg:"new"; sid:1000001; rev:5;)` + "\n",
		}),
	})
	defer server.Close()

	m := testManager(t, server.URL)
	store := m.Store.(*rulesets.MarkerStore)
	settings := store.Settings
	settings.EnableBootstrap = false
	store.Settings = settings

	require.Nil(t, store.Enable("one/first", nil))
	require.Nil(t, store.Enable("two/second", nil))

	require.Nil(t, m.Run(false, true))

	output := readOutput(t, m)
	assert.Equal(t,
		"alert tcp any any -> any any (msg:\"new\"; sid:1000001; rev:5;)\n",
		output)
}

func TestRunDisabledRuleExcluded(t *testing.T) {
	server := testServer(t, map[string][]byte{
		"et/open": tarGz(t, map[string]string{
			"a.rules": `alert tcp any any -> any any (msg:"on"; sid:1; rev:1;)` + "\n" +
				`# alert tcp any any -> any any (msg:"off"; sid:2; rev:1;)` + "\n",
		}),
	})
	defer server.Close()

	m := testManager(t, server.URL)
	require.Nil(t, m.Run(false, true))

	output := readOutput(t, m)
	assert.Contains(t, output, "sid:1;")
	assert.NotContains(t, output, "sid:2;")
}

func TestRunSortedAndIdempotent(t *testing.T) {
	server := testServer(t, map[string][]byte{
		"et/open": tarGz(t, map[string]string{
			"a.rules": `alert tcp any any -> any any (msg:"c"; gid:1; sid:3000;)` + "\n" +
				`alert tcp any any -> any any (msg:"a"; sid:10;)` + "\n" +
				`alert tcp any any -> any any (msg:"d"; gid:129; sid:1;)` + "\n" +
				`alert tcp any any -> any any (msg:"b"; sid:200;)` + "\n",
		}),
	})
	defer server.Close()

	m := testManager(t, server.URL)
	require.Nil(t, m.Run(false, true))
	first := readOutput(t, m)

	lines := bytes.Split(bytes.TrimRight([]byte(first), "\n"), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[0]), "sid:10;")
	assert.Contains(t, string(lines[1]), "sid:200;")
	assert.Contains(t, string(lines[2]), "sid:3000;")
	assert.Contains(t, string(lines[3]), "gid:129; sid:1;")

	// A second run over the same inputs is byte for byte identical.
	require.Nil(t, m.Run(true, true))
	assert.Equal(t, first, readOutput(t, m))
}

func TestRunBadSourceIsSkipped(t *testing.T) {
	server := testServer(t, map[string][]byte{
		"good/source": tarGz(t, map[string]string{
			"a.rules": `alert tcp any any -> any any (msg:"good"; sid:1;)` + "\n",
		}),
		"bad/source": []byte("not a tarball"),
	})
	defer server.Close()

	m := testManager(t, server.URL)
	store := m.Store.(*rulesets.MarkerStore)
	settings := store.Settings
	settings.EnableBootstrap = false
	store.Settings = settings

	require.Nil(t, store.Enable("bad/source", nil))
	require.Nil(t, store.Enable("good/source", nil))

	// The corrupt archive loses its source but not the run.
	require.Nil(t, m.Run(false, true))
	assert.Contains(t, readOutput(t, m), "sid:1;")
}

func TestRunUnknownSourceIsSkipped(t *testing.T) {
	server := testServer(t, map[string][]byte{
		"et/open": tarGz(t, map[string]string{
			"a.rules": `alert tcp any any -> any any (msg:"x"; sid:1;)` + "\n",
		}),
	})
	defer server.Close()

	m := testManager(t, server.URL)
	store := m.Store.(*rulesets.MarkerStore)
	settings := store.Settings
	settings.EnableBootstrap = false
	store.Settings = settings

	require.Nil(t, store.Enable("not/in-index", nil))
	require.Nil(t, store.Enable("et/open", nil))

	require.Nil(t, m.Run(false, true))
	assert.Contains(t, readOutput(t, m), "sid:1;")
}

func TestRunMarkerUrlOverride(t *testing.T) {
	mirror := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write(tarGz(t, map[string]string{
				"a.rules": `alert tcp any any -> any any (msg:"mirror"; sid:42;)` + "\n",
			}))
		}))
	defer mirror.Close()

	server := testServer(t, map[string][]byte{
		"et/open": tarGz(t, map[string]string{
			"a.rules": `alert tcp any any -> any any (msg:"vendor"; sid:41;)` + "\n",
		}),
	})
	defer server.Close()

	m := testManager(t, server.URL)

	// Hand written marker with a URL override.
	marker := "source: et/open\nurl: " + mirror.URL + "/mirror.tar.gz\n"
	require.Nil(t, afero.WriteFile(m.Fs, "/sources/et-open.yaml",
		[]byte(marker), 0644))

	require.Nil(t, m.Run(false, true))

	output := readOutput(t, m)
	assert.Contains(t, output, "sid:42;")
	assert.NotContains(t, output, "sid:41;")
}

func TestRunSkipsNonRuleFiles(t *testing.T) {
	server := testServer(t, map[string][]byte{
		"et/open": tarGz(t, map[string]string{
			"a.rules":               `alert tcp any any -> any any (msg:"x"; sid:1;)` + "\n",
			"classification.config": `alert tcp any any -> any any (msg:"no"; sid:9;)` + "\n",
		}),
	})
	defer server.Close()

	m := testManager(t, server.URL)
	require.Nil(t, m.Run(false, true))

	output := readOutput(t, m)
	assert.Contains(t, output, "sid:1;")
	assert.NotContains(t, output, "sid:9;")
}
