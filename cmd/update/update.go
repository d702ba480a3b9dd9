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

// The rulebox update command: run the full rule update pipeline.
package update

import (
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/jasonish/rulebox/config"
	"github.com/jasonish/rulebox/httputil"
	"github.com/jasonish/rulebox/log"
	"github.com/jasonish/rulebox/paths"
	ruleupdate "github.com/jasonish/rulebox/update"
	"github.com/jasonish/rulebox/useragent"
)

var opts struct {
	Force   bool
	Quiet   bool
	Verbose bool
	User    bool
}

func Main(args []string) {

	flagset := pflag.NewFlagSet("update", pflag.ExitOnError)
	flagset.BoolVarP(&opts.Force, "force", "f", false,
		"Force download even if cache is recent")
	flagset.BoolVarP(&opts.Quiet, "quiet", "q", false,
		"Only output warnings and errors")
	flagset.BoolVarP(&opts.Verbose, "verbose", "v", false,
		"Enable debug logging")
	flagset.BoolVar(&opts.User, "user", false,
		"Use user directories instead of system directories")
	flagset.Parse(args)

	if opts.Verbose {
		log.SetLevel(log.DEBUG)
	}

	// No system directories on Windows.
	userMode := opts.User || runtime.GOOS == "windows"

	settings, err := config.Load(userMode)
	if err != nil {
		log.Fatal(err)
	}

	manager := ruleupdate.NewManager(afero.NewOsFs(),
		paths.NewProvider(userMode),
		httputil.NewHttpClient(useragent.String()),
		settings)

	if err := manager.Run(opts.Force, opts.Quiet); err != nil {
		log.Fatal(err)
	}
}
