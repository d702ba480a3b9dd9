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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	settings := Default()
	assert.Equal(t, DefaultIndexURL, settings.IndexURL)
	assert.Equal(t, 900*time.Second, settings.FreshnessWindow)
	assert.Equal(t, "et/open", settings.DefaultSource)
	assert.True(t, settings.EnableBootstrap)
	assert.Equal(t, "suricata.rules", settings.OutputFilename)
	assert.Equal(t, "7.0.0", settings.EngineVersion)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	settings, err := Load(true)
	assert.Nil(t, err)
	assert.Equal(t, Default().IndexURL, settings.IndexURL)
	assert.Equal(t, Default().FreshnessWindow, settings.FreshnessWindow)
}

func TestSourceIndexURLOverride(t *testing.T) {
	t.Setenv("SOURCE_INDEX_URL", "https://example.org/custom-index.yaml")
	settings, err := Load(true)
	assert.Nil(t, err)
	assert.Equal(t, "https://example.org/custom-index.yaml", settings.IndexURL)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("RULEBOX_ENGINE_VERSION", "6.0.9")
	settings, err := Load(true)
	assert.Nil(t, err)
	assert.Equal(t, "6.0.9", settings.EngineVersion)
}
