/*
	blessed-tools
	Copyright (c) 2023 The BLESSED Authors.  All right reserved.

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package remotebuild implements the command line of the remote build client.
package remotebuild

import (
	"errors"
	"os"
	"time"

	"github.com/arduino/go-paths-helper"
	"github.com/blessed-stack/blessed-tools/cli/common"
	"github.com/blessed-stack/blessed-tools/cli/feedback"
	"github.com/blessed-stack/blessed-tools/cli/globals"
	"github.com/blessed-stack/blessed-tools/remotebuild"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewCommand creates the remote-build root command
func NewCommand() *cobra.Command {
	var globalFlags common.GlobalFlags
	var timeout time.Duration

	command := &cobra.Command{
		Use:     "remote-build SERVER FILE",
		Short:   "Uploads an archive to a remote build server.",
		Long:    "Posts FILE as the multipart field \"code\" to SERVER and reports the build result. The exit code is the build status.",
		Example: "  " + os.Args[0] + " https://build.example.com/build app.tar.gz",
		Args:    checkArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return globalFlags.PreRun(globals.RemoteBuildInfo)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			globalFlags.PostRun()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], paths.New(args[1]), timeout)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	globalFlags.AddToCommand(command)
	command.Flags().DurationVar(&timeout, "timeout", remotebuild.DefaultTimeout, "Maximum duration of the whole request")
	return command
}

func checkArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 2 {
		return nil
	}
	feedback.Errorf("Invalid number of arguments")
	feedback.Errorf("Usage: %s SERVER /path/to/file.tar.gz", os.Args[0])
	return feedback.NewExitError(feedback.ErrGeneric, nil)
}

func run(cmd *cobra.Command, server string, file *paths.Path, timeout time.Duration) error {
	client := remotebuild.New(&remotebuild.Config{
		Timeout:   timeout,
		UserAgent: globals.RemoteBuildInfo.UserAgent(),
		Logger:    logrus.StandardLogger(),
	})
	res, err := client.Upload(cmd.Context(), server, file)
	var httpErr *remotebuild.HTTPError
	if errors.As(err, &httpErr) {
		feedback.PrintResult(&serverError{httpErr})
		return feedback.NewExitError(feedback.ErrGeneric, nil)
	}
	if err != nil {
		return feedback.NewExitError(feedback.ErrGeneric, err)
	}

	feedback.PrintResult(&buildResult{res})
	if res.Failed() {
		return feedback.NewExitError(feedback.ExitCode(res.Status), nil)
	}
	return nil
}

// buildResult prints the server message on stdout on success, on stderr
// when the build failed.
type buildResult struct {
	*remotebuild.Result
}

func (r *buildResult) String() string {
	if r.Failed() {
		return ""
	}
	return r.Message
}

func (r *buildResult) ErrorString() string {
	if r.Failed() {
		return r.Message
	}
	return ""
}

func (r *buildResult) Data() interface{} {
	return r.Result
}

// serverError prints the raw body of a non-200 answer on stderr
type serverError struct {
	err *remotebuild.HTTPError
}

func (r *serverError) String() string {
	return ""
}

func (r *serverError) ErrorString() string {
	return string(r.err.Body)
}

func (r *serverError) Data() interface{} {
	return struct {
		StatusCode int    `json:"status_code" yaml:"status_code"`
		Body       string `json:"body" yaml:"body"`
	}{r.err.StatusCode, string(r.err.Body)}
}
