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

// Package paths decides where the sources, cache and rules directories
// live. System mode uses the standard Suricata locations, user mode the
// XDG ones, matching the layout used by suricata-update.
package paths

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/jasonish/rulebox/core"
	"github.com/jasonish/rulebox/log"
)

type Provider interface {
	SourcesDir() string
	CacheDir() string
	RulesDir() string
}

type SystemPaths struct{}

func (SystemPaths) SourcesDir() string {
	return "/var/lib/suricata/update/sources"
}

func (SystemPaths) CacheDir() string {
	return "/var/lib/suricata/update/cache"
}

func (SystemPaths) RulesDir() string {
	return "/var/lib/suricata/rules"
}

type UserPaths struct {
	dataDir  string
	cacheDir string
}

func NewUserPaths() (*UserPaths, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return &UserPaths{
		dataDir:  dataDir,
		cacheDir: cacheDir,
	}, nil
}

func (p *UserPaths) SourcesDir() string {
	return filepath.Join(p.dataDir, "suricata", "update", "sources")
}

func (p *UserPaths) CacheDir() string {
	return filepath.Join(p.cacheDir, "suricata", "update")
}

func (p *UserPaths) RulesDir() string {
	return filepath.Join(p.dataDir, "suricata", "rules")
}

// NewProvider returns user directories when asked for, falling back to
// the system directories if the home directory can't be resolved.
func NewProvider(userMode bool) Provider {
	if userMode {
		provider, err := NewUserPaths()
		if err != nil {
			log.Warning("Could not determine user directories, falling back to system paths: %v", err)
			return SystemPaths{}
		}
		return provider
	}
	return SystemPaths{}
}

// EnsureDirExists creates path and any missing parents.
func EnsureDirExists(fs afero.Fs, path string) error {
	exists, err := afero.DirExists(fs, path)
	if err == nil && exists {
		return nil
	}
	if err := fs.MkdirAll(path, 0755); err != nil {
		return &core.IOError{
			Op:   "create directory",
			Path: path,
			Err:  err,
		}
	}
	return nil
}
