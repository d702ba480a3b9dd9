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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareNoPreviousIndex(t *testing.T) {
	new := &Index{
		Version: 1,
		Sources: map[string]SourceInfo{
			"et/open":    {Vendor: "proofpoint/et", Summary: "ET Open"},
			"oisf/trafficid": {Vendor: "oisf", Summary: "Traffic ID"},
		},
	}
	diff := Compare(nil, new)
	assert.Equal(t, []string{"et/open", "oisf/trafficid"}, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.Changed)
}

func TestCompare(t *testing.T) {
	old := &Index{
		Version: 1,
		Sources: map[string]SourceInfo{
			"et/open":  {Vendor: "proofpoint/et", Summary: "ET Open", URL: "https://example/a"},
			"old/gone": {Vendor: "old", Summary: "Going away"},
			"same/one": {Vendor: "same", Summary: "Unchanged"},
		},
	}
	new := &Index{
		Version: 1,
		Sources: map[string]SourceInfo{
			// URL changed.
			"et/open":  {Vendor: "proofpoint/et", Summary: "ET Open", URL: "https://example/b"},
			"same/one": {Vendor: "same", Summary: "Unchanged"},
			"new/one":  {Vendor: "new", Summary: "Brand new"},
		},
	}

	diff := Compare(old, new)
	assert.Equal(t, []string{"new/one"}, diff.Added)
	assert.Equal(t, []string{"old/gone"}, diff.Removed)
	assert.Equal(t, []string{"et/open"}, diff.Changed)
	assert.False(t, diff.Empty())
}

func TestCompareNoChanges(t *testing.T) {
	index := &Index{
		Version: 1,
		Sources: map[string]SourceInfo{
			"et/open": {Vendor: "proofpoint/et", Summary: "ET Open"},
		},
	}
	diff := Compare(index, index)
	assert.True(t, diff.Empty())
}

func TestSourceInfoEqual(t *testing.T) {
	a := SourceInfo{
		Vendor:  "proofpoint/et",
		Summary: "ET Open",
		URL:     "https://example/et.tar.gz",
		Parameters: map[string]interface{}{
			"secret-code": map[interface{}]interface{}{
				"prompt": "secret",
			},
		},
	}
	b := a
	assert.True(t, a.Equal(&b))

	b.Obsolete = "use something else"
	assert.False(t, a.Equal(&b))

	b = a
	b.Parameters = nil
	assert.False(t, a.Equal(&b))
}
