/* Copyright (c) 2016-2023 Jason Ish
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

// Package config loads the runtime settings. Everything has a sane
// default; a config file is optional.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jasonish/rulebox/log"
)

const DefaultIndexURL = "https://www.openinfosecfoundation.org/rules/index.yaml"

// Settings is passed explicitly to everything that needs it. Nothing
// reads these values through package globals.
type Settings struct {
	// URL of the source index document.
	IndexURL string `mapstructure:"index-url"`

	// Maximum age of a cached index or archive before it is
	// re-downloaded on a non-forced run.
	FreshnessWindow time.Duration `mapstructure:"freshness-window"`

	// Source enabled alongside the first enabled non-default source.
	DefaultSource string `mapstructure:"default-source"`

	// Set false to turn off the default source bootstrap.
	EnableBootstrap bool `mapstructure:"enable-bootstrap"`

	// Filename of the merged rule file, written to the rules directory.
	OutputFilename string `mapstructure:"output-filename"`

	// Engine version substituted into download URL templates.
	EngineVersion string `mapstructure:"engine-version"`
}

func Default() Settings {
	return Settings{
		IndexURL:        DefaultIndexURL,
		FreshnessWindow: 900 * time.Second,
		DefaultSource:   "et/open",
		EnableBootstrap: true,
		OutputFilename:  "suricata.rules",
		EngineVersion:   "7.0.0",
	}
}

// Load reads settings from the optional config file and the
// environment. Keys map to RULEBOX_ environment variables with dashes
// replaced by underscores, for example RULEBOX_FRESHNESS_WINDOW. The
// index URL may additionally be overridden with SOURCE_INDEX_URL.
func Load(userMode bool) (Settings, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("index-url", defaults.IndexURL)
	v.SetDefault("freshness-window", defaults.FreshnessWindow)
	v.SetDefault("default-source", defaults.DefaultSource)
	v.SetDefault("enable-bootstrap", defaults.EnableBootstrap)
	v.SetDefault("output-filename", defaults.OutputFilename)
	v.SetDefault("engine-version", defaults.EngineVersion)

	v.SetEnvPrefix("RULEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("rulebox")
	v.SetConfigType("yaml")
	if userMode {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "rulebox"))
		}
	} else {
		v.AddConfigPath("/etc/rulebox")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, errors.Wrap(err, "failed to read config file")
		}
	} else {
		log.Debug("Using config file %s", v.ConfigFileUsed())
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, errors.Wrap(err, "failed to load settings")
	}

	if url := os.Getenv("SOURCE_INDEX_URL"); url != "" {
		settings.IndexURL = url
	}

	return settings, nil
}
