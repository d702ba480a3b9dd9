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

import (
	"regexp"
	"strconv"
	"strings"
)

// A rule line is an optional comment marker, an action keyword, then
// anything up to a sid option. Commented out rules are parsed too, as
// they still claim their (gid, sid) identity in a merge.
var ruleRegex = regexp.MustCompile(`^(#?\s*)?(alert|drop|pass|reject)\s+.*?sid:\s*(\d+).*?;`)

var (
	sidRegex = regexp.MustCompile(`sid:\s*(\d+)`)
	gidRegex = regexp.MustCompile(`gid:\s*(\d+)`)
	revRegex = regexp.MustCompile(`rev:\s*(\d+)`)
	msgRegex = regexp.MustCompile(`msg:\s*"([^"]+)"`)
)

// ParseLine parses a single rule line, returning false for blank
// lines, plain comments and anything else that doesn't look like a
// rule.
//
// Field extraction is best effort: a missing or malformed gid, rev or
// msg falls back to its default rather than rejecting the line. Only
// a missing or zero sid rejects it.
func ParseLine(line string) (Rule, bool) {
	trimmed := strings.TrimSpace(line)

	if trimmed == "" {
		return Rule{}, false
	}
	if strings.HasPrefix(trimmed, "#") && !strings.Contains(trimmed, "sid:") {
		return Rule{}, false
	}
	if !ruleRegex.MatchString(trimmed) {
		return Rule{}, false
	}

	rule := Rule{
		Raw:     trimmed,
		Enabled: !strings.HasPrefix(trimmed, "#"),
		Sid:     matchUint(sidRegex, trimmed, 0),
		Gid:     matchUint(gidRegex, trimmed, 1),
		Rev:     matchUint(revRegex, trimmed, 1),
		Msg:     matchString(msgRegex, trimmed),
	}
	if rule.Sid == 0 {
		return Rule{}, false
	}

	return rule, true
}

// Parse extracts all rules from the body of a rule file. The decode
// is lossy, invalid UTF-8 sequences are replaced rather than being an
// error. Lines that don't parse are skipped.
func Parse(data []byte) []Rule {
	rules := make([]Rule, 0)
	content := strings.ToValidUTF8(string(data), "�")
	for _, line := range strings.Split(content, "\n") {
		if rule, ok := ParseLine(line); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

func matchUint(pattern *regexp.Regexp, buf string, missing uint64) uint64 {
	match := pattern.FindStringSubmatch(buf)
	if match == nil {
		return missing
	}
	value, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		return missing
	}
	return value
}

func matchString(pattern *regexp.Regexp, buf string) string {
	match := pattern.FindStringSubmatch(buf)
	if match == nil {
		return ""
	}
	return match[1]
}
