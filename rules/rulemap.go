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

// Package rules holds the map that rules from all sources are merged
// into before being written out.
package rules

import (
	"sort"

	"github.com/jasonish/rulebox/ruleparser"
)

// Key is the identity of a rule across sources.
type Key struct {
	Gid uint64
	Sid uint64
}

type RuleMap struct {
	rules map[Key]ruleparser.Rule
}

func NewRuleMap() *RuleMap {
	return &RuleMap{
		rules: make(map[Key]ruleparser.Rule),
	}
}

// Put inserts a rule, replacing any rule already held under the same
// key. Used within a single source, where a later file simply wins.
func (m *RuleMap) Put(rule ruleparser.Rule) {
	m.rules[Key{Gid: rule.Gid, Sid: rule.Sid}] = rule
}

// Merge inserts a rule from another source, replacing an existing
// rule only if the incoming revision is strictly greater. On equal
// revisions the rule already in the map is kept, so with sources
// processed in order, the earlier source wins.
func (m *RuleMap) Merge(rule ruleparser.Rule) {
	key := Key{Gid: rule.Gid, Sid: rule.Sid}
	if existing, ok := m.rules[key]; ok && existing.Rev >= rule.Rev {
		return
	}
	m.rules[key] = rule
}

// MergeAll folds every rule of other into this map under the Merge
// policy.
func (m *RuleMap) MergeAll(other *RuleMap) {
	for _, rule := range other.rules {
		m.Merge(rule)
	}
}

// SortedRules returns the rules ordered ascending by (gid, sid).
func (m *RuleMap) SortedRules() []ruleparser.Rule {
	keys := make([]Key, 0, len(m.rules))
	for key := range m.rules {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Gid != keys[j].Gid {
			return keys[i].Gid < keys[j].Gid
		}
		return keys[i].Sid < keys[j].Sid
	})
	rules := make([]ruleparser.Rule, 0, len(keys))
	for _, key := range keys {
		rules = append(rules, m.rules[key])
	}
	return rules
}

func (m *RuleMap) Len() int {
	return len(m.rules)
}
