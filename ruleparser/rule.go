// The MIT License (MIT)
// Copyright (c) 2016-2023 Jason Ish
//
// Permission is hereby granted, free of charge, to any person
// obtaining a copy of this software and associated documentation
// files (the "Software"), to deal in the Software without
// restriction, including without limitation the rights to use, copy,
// modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN
// ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package ruleparser

// Rule is the identity of one rule line as needed for merging: the
// raw text plus the fields that key and version it. Rules are never
// persisted individually, only as lines of the merged output file.
type Rule struct {
	// The raw rule text, whitespace trimmed, with any leading comment
	// marker preserved.
	Raw string

	// False if the rule is commented out.
	Enabled bool

	// Signature ID. Always > 0 for an accepted rule.
	Sid uint64

	// Generator ID, 1 if not present in the rule.
	Gid uint64

	// Revision, 1 if not present in the rule.
	Rev uint64

	// The rule message, may be empty.
	Msg string
}
