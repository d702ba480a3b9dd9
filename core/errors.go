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

package core

import (
	"fmt"
	"os"
)

// NetworkError is a transport level failure reaching a remote host.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError is a non-success HTTP response from a remote host.
type ProtocolError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: HTTP %s", e.URL, e.Status)
}

// ParseError is a structurally invalid catalog, marker file or other
// document. Subject names the file or URL that failed to parse.
type ParseError struct {
	Subject string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Subject, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CorruptArchiveError is an archive container that could not be read.
type CorruptArchiveError struct {
	Path string
	Err  error
}

func (e *CorruptArchiveError) Error() string {
	return fmt.Sprintf("corrupt archive %s: %v", e.Path, e.Err)
}

func (e *CorruptArchiveError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError is an archive in a container format we don't
// know how to read.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported archive format: %s", e.Path)
}

// ConflictError is a source state change that cannot be applied, such
// as enabling a source marked obsolete.
type ConflictError struct {
	Source string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

// IOError is a failed filesystem operation. The offending path is
// always named so the operator knows where to look.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.PermissionDenied() {
		return fmt.Sprintf("failed to %s %s: permission denied", e.Op, e.Path)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// PermissionDenied reports whether the underlying failure was a
// permission error, which wants a different operator response than a
// transient failure.
func (e *IOError) PermissionDenied() bool {
	return os.IsPermission(e.Err)
}

// ConsistencyError is state that should exist after a successful prior
// step but doesn't.
type ConsistencyError struct {
	Expected string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent state: %s", e.Expected)
}
