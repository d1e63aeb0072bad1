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

// Package common holds the flags and the setup shared by every command line
// tool: logging and output format.
package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blessed-stack/blessed-tools/cli/feedback"
	"github.com/blessed-stack/blessed-tools/version"
	"github.com/mattn/go-colorable"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// GlobalFlags are the persistent flags of every root command
type GlobalFlags struct {
	OutputFormat string
	Verbose      bool
	LogFile      string
	LogFormat    string
	LogLevel     string

	logFile io.Closer
}

// AddToCommand adds the global flags as persistent flags of cmd
func (f *GlobalFlags) AddToCommand(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.OutputFormat, "format", "text", fmt.Sprintf("The output format, can be {%s}.", strings.Join(feedback.FormatNames(), "|")))
	cmd.PersistentFlags().StringVar(&f.LogFile, "log-file", "", "Path to the file where logs will be written")
	cmd.PersistentFlags().StringVar(&f.LogFormat, "log-format", "", "The output format for the logs, can be {text|json}.")
	cmd.PersistentFlags().StringVar(&f.LogLevel, "log-level", "info", "Messages with this level and above will be logged. Valid levels are: trace, debug, info, warn, error, fatal, panic")
	cmd.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false, "Print the logs on the standard output.")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return feedback.NewExitError(feedback.ErrBadArgument, err)
	})
}

// Convert the string passed to the `--log-level` option to the corresponding
// logrus formal level.
func toLogLevel(s string) (t logrus.Level, found bool) {
	t, found = map[string]logrus.Level{
		"trace": logrus.TraceLevel,
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}[s]

	return
}

// PreRun configures logrus and the feedback output format from the global
// flags. It is meant to be called from the root PersistentPreRunE.
func (f *GlobalFlags) PreRun(info *version.Info) error {
	// Prepare logging
	if f.Verbose {
		// if we print on stdout, do it in full colors
		logrus.SetOutput(colorable.NewColorableStdout())
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors: true,
		})
	} else {
		logrus.SetOutput(io.Discard)
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	// Normalize the format strings
	logFormat := strings.ToLower(f.LogFormat)
	if logFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else if logFormat != "" && logFormat != "text" {
		return feedback.NewExitError(feedback.ErrBadArgument, fmt.Errorf("invalid option for --log-format: %s", f.LogFormat))
	}

	if f.LogFile != "" {
		file, err := os.OpenFile(f.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return feedback.NewExitError(feedback.ErrBadArgument, fmt.Errorf("unable to open file for logging: %s", err))
		}
		f.logFile = file

		// Use a hook so we don't get color codes in the log file
		if logFormat == "json" {
			logrus.AddHook(lfshook.NewHook(file, &logrus.JSONFormatter{}))
		} else {
			logrus.AddHook(lfshook.NewHook(file, &logrus.TextFormatter{}))
		}
	}

	// Configure logging filter
	lvl, found := toLogLevel(f.LogLevel)
	if !found {
		return feedback.NewExitError(feedback.ErrBadArgument, fmt.Errorf("invalid option for --log-level: %s", f.LogLevel))
	}
	logrus.SetLevel(lvl)

	//
	// Prepare the Feedback system
	//

	// check the right output format was passed
	format, found := feedback.ParseOutputFormat(strings.ToLower(f.OutputFormat))
	if !found {
		return feedback.NewExitError(feedback.ErrBadArgument, fmt.Errorf("invalid output format: %s, valid formats are: %s", f.OutputFormat, strings.Join(feedback.FormatNames(), ", ")))
	}
	// use the output format to configure the Feedback
	feedback.SetFormat(format)

	logrus.Info(info)
	return nil
}

// PostRun releases what PreRun opened
func (f *GlobalFlags) PostRun() {
	if f.logFile == nil {
		return
	}
	logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	f.logFile.Close()
	f.logFile = nil
}

// WithExitCode makes argument validation errors exit with ErrBadArgument
func WithExitCode(args cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := args(cmd, a); err != nil {
			return feedback.NewExitError(feedback.ErrBadArgument, err)
		}
		return nil
	}
}

// ChangedFlags lists the names of the flags explicitly set on the command line
func ChangedFlags(flags *pflag.FlagSet) []string {
	changed := []string{}
	flags.Visit(func(f *pflag.Flag) {
		changed = append(changed, f.Name)
	})
	return changed
}
