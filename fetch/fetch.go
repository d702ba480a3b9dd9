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

// Package fetch downloads source archives into the cache directory.
// Cache files are named by a hash of the download URL so a changed
// URL is a cache miss, and reused while younger than the freshness
// window.
package fetch

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/jasonish/rulebox/config"
	"github.com/jasonish/rulebox/core"
	"github.com/jasonish/rulebox/httputil"
	"github.com/jasonish/rulebox/log"
	"github.com/jasonish/rulebox/paths"
	"github.com/jasonish/rulebox/sources"
)

const versionPlaceholder = "%(__version__)s"

var (
	green = color.New(color.FgGreen).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
)

// Fetcher is the archive download cache.
type Fetcher struct {
	Fs       afero.Fs
	CacheDir string
	Client   *httputil.HttpClient
	Settings config.Settings
}

func NewFetcher(fs afero.Fs, cacheDir string,
	client *httputil.HttpClient, settings config.Settings) *Fetcher {
	return &Fetcher{
		Fs:       fs,
		CacheDir: cacheDir,
		Client:   client,
		Settings: settings,
	}
}

// URLFor resolves the download URL for a source. A non-empty override
// from the enabled source marker wins over the index template. The
// only templating is the engine version placeholder.
func (f *Fetcher) URLFor(info *sources.SourceInfo, override string) string {
	template := info.URL
	if override != "" {
		template = override
	}
	return strings.ReplaceAll(template, versionPlaceholder, f.Settings.EngineVersion)
}

// CachePath returns the cache filename for a resolved URL.
func (f *Fetcher) CachePath(url string) string {
	hash := md5.Sum([]byte(url))
	return filepath.Join(f.CacheDir, fmt.Sprintf("%x.tar.gz", hash))
}

// Fetch returns the path of the cached archive for url, downloading
// it first unless a fresh enough copy is already cached. A non-empty
// header ("Name: value") is attached to the request.
func (f *Fetcher) Fetch(name string, url string, header string,
	force bool, quiet bool) (string, error) {

	cachePath := f.CachePath(url)

	cached, err := afero.Exists(f.Fs, cachePath)
	if err != nil {
		return "", &core.IOError{Op: "stat", Path: cachePath, Err: err}
	}

	if !force && cached {
		if info, err := f.Fs.Stat(cachePath); err == nil {
			age := time.Since(info.ModTime())
			if age < f.Settings.FreshnessWindow {
				if !quiet {
					fmt.Printf("  Using cached file (age: %s seconds)\n",
						faint(int(age.Seconds())))
				}
				return cachePath, nil
			}
		}
	}

	if err := paths.EnsureDirExists(f.Fs, f.CacheDir); err != nil {
		return "", err
	}

	if force && cached && !quiet {
		fmt.Println("  Forcing download (ignoring cache)")
	}
	if !quiet {
		fmt.Printf("  Downloading: %s\n", faint(url))
	}

	var headers []string
	if header != "" {
		headers = append(headers, header)
	}

	response, err := f.Client.Get(url, headers...)
	if err != nil {
		return "", &core.NetworkError{URL: url, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		f.Client.DiscardResponse(response)
		return "", &core.ProtocolError{
			URL:        url,
			Status:     response.Status,
			StatusCode: response.StatusCode,
		}
	}

	meter := newMeter(response.ContentLength, quiet)
	var body bytes.Buffer
	_, err = io.Copy(&body, io.TeeReader(response.Body, meter))
	meter.Finish()
	if err != nil {
		return "", &core.NetworkError{URL: url, Err: err}
	}

	if err := f.persist(cachePath, body.Bytes()); err != nil {
		return "", err
	}

	if !quiet {
		fmt.Printf("  Downloaded %s bytes\n", green(body.Len()))
	}
	log.Debug("Cached %s as %s", url, cachePath)

	return cachePath, nil
}

// persist writes the payload next to its final name and renames it
// into place so a failed download never leaves a truncated cache
// file.
func (f *Fetcher) persist(cachePath string, payload []byte) error {
	tmp, err := afero.TempFile(f.Fs, f.CacheDir, ".download-")
	if err != nil {
		return &core.IOError{Op: "create", Path: f.CacheDir, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		f.Fs.Remove(tmpName)
		return &core.IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		f.Fs.Remove(tmpName)
		return &core.IOError{Op: "write", Path: tmpName, Err: err}
	}

	if err := f.Fs.Rename(tmpName, cachePath); err != nil {
		f.Fs.Remove(tmpName)
		return &core.IOError{Op: "rename", Path: cachePath, Err: err}
	}

	return nil
}
