/* Copyright (c) 2016-2023 Jason Ish
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

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/mattn/go-isatty"
)

type LogLevel int

const (
	ERROR LogLevel = iota
	WARNING
	INFO
	DEBUG
)

var logLevel LogLevel = INFO

// Color is disabled when stderr is not a terminal.
var colorize = isatty.IsTerminal(os.Stderr.Fd())

const (
	GREEN   = "\x1b[32m"
	BLUE    = "\x1b[34m"
	RED     = "\x1b[31m"
	REDB    = "\x1b[1;31m"
	YELLOW  = "\x1b[33m"
	YELLOWB = "\x1b[1;33m"
	RESET   = "\x1b[0m"
)

func paint(color string, v interface{}) string {
	if !colorize {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%s%v%s", color, v, RESET)
}

func Green(v interface{}) string {
	return paint(GREEN, v)
}

func Blue(v interface{}) string {
	return paint(BLUE, v)
}

func Yellow(v interface{}) string {
	return paint(YELLOW, v)
}

func Red(v interface{}) string {
	return paint(RED, v)
}

func Timestamp() string {
	now := time.Now()
	return now.Format("2006-01-02 15:04:05")
}

func SetLevel(level LogLevel) {
	logLevel = level
}

func GetLevel() LogLevel {
	return logLevel
}

func doLog(calldepth int, level LogLevel, format string, v ...interface{}) {

	if level > logLevel {
		return
	}

	_, filename, line, _ := runtime.Caller(calldepth)

	var tag string
	switch level {
	case ERROR:
		tag = Red("Error")
	case WARNING:
		tag = paint(YELLOWB, "Warning")
	case INFO:
		tag = Blue("Info")
	case DEBUG:
		tag = Yellow("Debug")
	}

	message := fmt.Sprintf(format, v...)
	if level == ERROR {
		message = Red(message)
	}

	fmt.Fprintf(os.Stderr, "%s (%s:%s) <%s> -- %s\n",
		Green(Timestamp()),
		Blue(filepath.Base(filename)),
		Green(line),
		tag,
		message)
}

func Error(format string, v ...interface{}) {
	doLog(2, ERROR, format, v...)
}

func Warning(format string, v ...interface{}) {
	doLog(2, WARNING, format, v...)
}

func Info(format string, v ...interface{}) {
	doLog(2, INFO, format, v...)
}

func Debug(format string, v ...interface{}) {
	doLog(2, DEBUG, format, v...)
}

// Promote to info...
func Println(v ...interface{}) {
	doLog(2, INFO, "%s", fmt.Sprint(v...))
}

// To be compatible with standard logging, promote to info.
func Printf(format string, v ...interface{}) {
	doLog(2, INFO, format, v...)
}

func Fatal(v ...interface{}) {
	doLog(2, ERROR, "%s", fmt.Sprint(v...))
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	doLog(2, ERROR, format, v...)
	os.Exit(1)
}
