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

package prompt

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

var testItems = []Item{
	{Name: "et/open", Summary: "ET Open"},
	{Name: "oisf/trafficid", Summary: "Traffic ID"},
	{Name: "ptresearch/attackdetection", Summary: "Attack Detection"},
}

func keyPress(m model, k string) model {
	var msg tea.KeyMsg
	switch k {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(model)
}

func TestNavigation(t *testing.T) {
	m := newModel("Select a ruleset to enable:", testItems)
	assert.Equal(t, 0, m.cursor)

	m = keyPress(m, "down")
	assert.Equal(t, 1, m.cursor)

	m = keyPress(m, "j")
	assert.Equal(t, 2, m.cursor)

	// No wrap at the bottom.
	m = keyPress(m, "down")
	assert.Equal(t, 2, m.cursor)

	m = keyPress(m, "up")
	m = keyPress(m, "k")
	assert.Equal(t, 0, m.cursor)

	// No wrap at the top.
	m = keyPress(m, "up")
	assert.Equal(t, 0, m.cursor)
}

func TestSelect(t *testing.T) {
	m := newModel("Select a ruleset to enable:", testItems)
	m = keyPress(m, "down")
	m = keyPress(m, "enter")
	assert.Equal(t, "oisf/trafficid", m.choice)
	assert.False(t, m.canceled)
}

func TestCancel(t *testing.T) {
	m := newModel("Select a ruleset to enable:", testItems)
	m = keyPress(m, "esc")
	assert.True(t, m.canceled)
	assert.Equal(t, "", m.choice)

	m = newModel("Select a ruleset to enable:", testItems)
	m = keyPress(m, "q")
	assert.True(t, m.canceled)
}

func TestView(t *testing.T) {
	m := newModel("Select a ruleset to enable:", testItems)
	view := m.View()
	assert.Contains(t, view, "Select a ruleset to enable:")
	assert.Contains(t, view, "et/open")
	assert.Contains(t, view, "Traffic ID")
}

func TestSelectSourceEmpty(t *testing.T) {
	name, ok, err := SelectSource("title", nil)
	assert.Nil(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", name)
}
