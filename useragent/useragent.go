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

// Package useragent builds the client identity string sent with
// outbound HTTP requests.
package useragent

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/jasonish/rulebox/core"
)

// String returns a user agent of the form:
//
//	Rulebox/0.1.0 (OS: Linux; CPU: amd64; Dist: Ubuntu/22.04)
func String() string {
	return fmt.Sprintf("Rulebox/%s (OS: %s; CPU: %s; Dist: %s)",
		core.BuildVersion, osName(), runtime.GOARCH, dist())
}

func osName() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "windows":
		return "Windows"
	default:
		return runtime.GOOS
	}
}

func dist() string {
	if runtime.GOOS == "windows" {
		return "Windows"
	}

	if content, err := os.ReadFile("/etc/os-release"); err == nil {
		if name := osReleaseField(string(content), "NAME"); name != "" {
			if version := osReleaseField(string(content), "VERSION_ID"); version != "" {
				return name + "/" + version
			}
			if build := osReleaseField(string(content), "BUILD_ID"); build != "" {
				return name + "/" + build
			}
			return name
		}
	}

	if content, err := os.ReadFile("/etc/redhat-release"); err == nil {
		return strings.TrimSpace(string(content))
	}
	if content, err := os.ReadFile("/etc/debian_version"); err == nil {
		return "Debian/" + strings.TrimSpace(string(content))
	}

	return ""
}

func osReleaseField(content string, field string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, field+"=") {
			value := strings.TrimPrefix(line, field+"=")
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}
