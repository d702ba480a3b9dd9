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

// Package sources manages the index of known rule sources: the wire
// types, the local cache of the index and change detection between
// index versions.
package sources

import (
	"reflect"
)

// Index is the document listing all known rule sources. The wire
// format is YAML with a top level version and a map of source name to
// source descriptor.
type Index struct {
	Version int                   `yaml:"version"`
	Sources map[string]SourceInfo `yaml:"sources"`
}

// SourceInfo describes one rule source as published in the index.
// Immutable once fetched.
type SourceInfo struct {
	Vendor      string `yaml:"vendor"`
	Summary     string `yaml:"summary"`

	// Download URL template. May contain a %(__version__)s
	// placeholder for the engine version.
	URL string `yaml:"url"`

	Description string `yaml:"description,omitempty"`
	License     string `yaml:"license,omitempty"`
	Homepage    string `yaml:"homepage,omitempty"`
	MinVersion  string `yaml:"min-version,omitempty"`

	// True if the vendor publishes a checksum alongside the archive.
	ChecksumRequired bool `yaml:"checksum,omitempty"`

	// Extra configuration the source requires, such as an access
	// token. A source with parameters can't be selected from the
	// interactive picker.
	Parameters map[string]interface{} `yaml:"parameters,omitempty"`

	// Names of sources this one supersedes.
	Replaces []string `yaml:"replaces,omitempty"`

	// Advisory only. The source still works.
	Deprecated string `yaml:"deprecated,omitempty"`

	// A non-empty obsolete message blocks enabling the source.
	Obsolete string `yaml:"obsolete,omitempty"`
}

// Equal reports field-wise equality, the basis for change detection
// between index versions.
func (s *SourceInfo) Equal(other *SourceInfo) bool {
	return s.Vendor == other.Vendor &&
		s.Summary == other.Summary &&
		s.URL == other.URL &&
		s.Description == other.Description &&
		s.License == other.License &&
		s.Homepage == other.Homepage &&
		s.MinVersion == other.MinVersion &&
		s.ChecksumRequired == other.ChecksumRequired &&
		reflect.DeepEqual(s.Parameters, other.Parameters) &&
		reflect.DeepEqual(s.Replaces, other.Replaces) &&
		s.Deprecated == other.Deprecated &&
		s.Obsolete == other.Obsolete
}
