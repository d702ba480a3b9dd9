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

package fetch

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// meter renders download progress while being written through with
// io.TeeReader. With a known content length it draws a byte counter,
// otherwise an indeterminate spinner. Nothing is drawn when quiet or
// when stdout is not a terminal.
type meter struct {
	total   int64
	read    int64
	active  bool
	spinner *spinner.Spinner
}

func newMeter(total int64, quiet bool) *meter {
	m := &meter{
		total: total,
	}
	if quiet || !isatty.IsTerminal(os.Stdout.Fd()) {
		return m
	}
	m.active = true
	if total <= 0 {
		m.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		m.spinner.Suffix = " downloading..."
		m.spinner.Start()
	}
	return m
}

func (m *meter) Write(p []byte) (int, error) {
	m.read += int64(len(p))
	if m.active && m.spinner == nil {
		percent := m.read * 100 / m.total
		fmt.Printf("\r  Downloaded %d of %d bytes (%d%%)", m.read, m.total, percent)
	}
	return len(p), nil
}

func (m *meter) Finish() {
	if !m.active {
		return
	}
	if m.spinner != nil {
		m.spinner.Stop()
		return
	}
	// Clear the counter line.
	fmt.Printf("\r\x1b[2K")
}
