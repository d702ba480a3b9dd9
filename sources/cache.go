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

package sources

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/jasonish/rulebox/config"
	"github.com/jasonish/rulebox/core"
	"github.com/jasonish/rulebox/httputil"
	"github.com/jasonish/rulebox/log"
	"github.com/jasonish/rulebox/paths"
)

const IndexFilename = "index.yaml"

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// IndexCache is the disk cached copy of the source index.
type IndexCache struct {
	Fs       afero.Fs
	CacheDir string
	Client   *httputil.HttpClient
	Settings config.Settings
}

func NewIndexCache(fs afero.Fs, cacheDir string,
	client *httputil.HttpClient, settings config.Settings) *IndexCache {
	return &IndexCache{
		Fs:       fs,
		CacheDir: cacheDir,
		Client:   client,
		Settings: settings,
	}
}

// Path returns the filename of the cached index.
func (c *IndexCache) Path() string {
	return filepath.Join(c.CacheDir, IndexFilename)
}

// URL returns the index URL to download from. The SOURCE_INDEX_URL
// environment variable overrides everything else.
func (c *IndexCache) URL() string {
	if url := os.Getenv("SOURCE_INDEX_URL"); url != "" {
		return url
	}
	if c.Settings.IndexURL != "" {
		return c.Settings.IndexURL
	}
	return config.DefaultIndexURL
}

// Read returns the locally cached index, or nil if there is no cache
// file yet. A cache file that exists but doesn't parse is an error.
func (c *IndexCache) Read() (*Index, error) {
	path := c.Path()

	exists, err := afero.Exists(c.Fs, path)
	if err != nil {
		return nil, &core.IOError{Op: "stat", Path: path, Err: err}
	}
	if !exists {
		return nil, nil
	}

	content, err := afero.ReadFile(c.Fs, path)
	if err != nil {
		return nil, &core.IOError{Op: "read", Path: path, Err: err}
	}

	var index Index
	if err := yaml.Unmarshal(content, &index); err != nil {
		return nil, &core.ParseError{Subject: path, Err: err}
	}

	return &index, nil
}

// FetchRemote downloads and parses the source index. The cache is not
// touched.
func (c *IndexCache) FetchRemote() (*Index, error) {
	url := c.URL()

	log.Debug("Fetching source index from %s", url)

	response, err := c.Client.Get(url)
	if err != nil {
		return nil, &core.NetworkError{URL: url, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		c.Client.DiscardResponse(response)
		return nil, &core.ProtocolError{
			URL:        url,
			Status:     response.Status,
			StatusCode: response.StatusCode,
		}
	}

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &core.NetworkError{URL: url, Err: err}
	}

	var index Index
	if err := yaml.Unmarshal(content, &index); err != nil {
		return nil, &core.ParseError{Subject: url, Err: err}
	}

	return &index, nil
}

func (c *IndexCache) save(index *Index) error {
	if err := paths.EnsureDirExists(c.Fs, c.CacheDir); err != nil {
		return err
	}

	content, err := yaml.Marshal(index)
	if err != nil {
		return err
	}

	path := c.Path()
	if err := afero.WriteFile(c.Fs, path, content, 0644); err != nil {
		return &core.IOError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// Refresh brings the cached index up to date. With a cache younger
// than the freshness window nothing is downloaded unless forced.
func (c *IndexCache) Refresh(force bool, quiet bool) error {
	if !force {
		if info, err := c.Fs.Stat(c.Path()); err == nil {
			age := time.Since(info.ModTime())
			if age < c.Settings.FreshnessWindow {
				if !quiet {
					fmt.Printf("  Using cached sources index (age: %s seconds)\n",
						faint(int(age.Seconds())))
				}
				return nil
			}
		}
	}

	previous, err := c.Read()
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("Downloading %s\n", cyan(c.URL()))
	}
	index, err := c.FetchRemote()
	if err != nil {
		return err
	}

	if err := c.save(index); err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("Saved %s\n", c.Path())
		c.report(previous, index)
	}

	return nil
}

// Update unconditionally downloads the index, saves it and reports
// what changed. This is the update-sources command.
func (c *IndexCache) Update() error {
	previous, err := c.Read()
	if err != nil {
		return err
	}

	fmt.Printf("Downloading %s\n", cyan(c.URL()))
	index, err := c.FetchRemote()
	if err != nil {
		return err
	}

	if err := c.save(index); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", c.Path())

	c.report(previous, index)

	return nil
}

// GetOrDownload returns the cached index, downloading one first if
// there is no cache at all.
func (c *IndexCache) GetOrDownload() (*Index, error) {
	index, err := c.Read()
	if err != nil {
		return nil, err
	}
	if index != nil {
		return index, nil
	}

	fmt.Println("No sources index found, downloading...")
	if err := c.Update(); err != nil {
		return nil, err
	}

	index, err = c.Read()
	if err != nil {
		return nil, err
	}
	if index == nil {
		return nil, &core.ConsistencyError{
			Expected: "sources index after download",
		}
	}

	return index, nil
}

func (c *IndexCache) report(old *Index, new *Index) {
	if old == nil {
		fmt.Println(green("Adding all sources"))
		return
	}

	diff := Compare(old, new)
	if diff.Empty() {
		fmt.Println(yellow("No change in sources"))
		return
	}

	for _, name := range diff.Added {
		fmt.Printf("Source %s was %s\n", cyan(name), green("added"))
	}
	for _, name := range diff.Removed {
		fmt.Printf("Source %s was %s\n", cyan(name), red("removed"))
	}
	for _, name := range diff.Changed {
		fmt.Printf("Source %s was %s\n", cyan(name), yellow("changed"))
	}
}
