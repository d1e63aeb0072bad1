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

// Package jlink runs the SEGGER J-Link Commander against a command file.
package jlink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/arduino/arduino-cli/executils"
	"github.com/arduino/go-paths-helper"
	"github.com/sirupsen/logrus"
)

const (
	executableName = "JLinkExe"
	libraryPathEnv = "LD_LIBRARY_PATH"
)

var (
	// ErrExecutableNotFound is returned when JLinkExe is missing from the install directory
	ErrExecutableNotFound = errors.New("JLinkExe not found")
	// ErrStart is returned when JLinkExe could not be started at all
	ErrStart = errors.New("failed to run JLinkExe")
)

// ExecResult is the outcome of a single JLinkExe run.
type ExecResult struct {
	Args     []string `json:"args" yaml:"args"`
	ExitCode int      `json:"exit_code" yaml:"exit_code"`
	Output   string   `json:"output" yaml:"output"`
}

// Success reports whether JLinkExe exited with status 0
func (r *ExecResult) Success() bool {
	return r.ExitCode == 0
}

// Config locates the J-Link installation.
type Config struct {
	// InstallDir is the J-Link software directory, containing JLinkExe and
	// the shared libraries it is linked against.
	InstallDir *paths.Path
	Logger     *logrus.Logger
}

// Tool runs JLinkExe from a J-Link installation.
type Tool struct {
	installDir *paths.Path
	executable *paths.Path
	logger     *logrus.Logger
}

// New checks that JLinkExe is present in the install directory.
func New(config *Config) (*Tool, error) {
	executable := config.InstallDir.Join(executableName)
	if runtime.GOOS == "windows" {
		executable = config.InstallDir.Join(executableName + ".exe")
	}
	if !executable.Exist() {
		return nil, fmt.Errorf("%w in %s", ErrExecutableNotFound, config.InstallDir)
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Tool{
		installDir: config.InstallDir,
		executable: executable,
		logger:     logger,
	}, nil
}

// Path returns the JLinkExe executable path
func (t *Tool) Path() *paths.Path {
	return t.executable
}

// Run executes JLinkExe with the given command file and captures stdout and
// stderr together. A non-zero exit status is reported in the result, not as an
// error: only a failure to start the process is an error.
func (t *Tool) Run(ctx context.Context, script *paths.Path) (*ExecResult, error) {
	env := []string{t.libraryPath()}
	proc, err := executils.NewProcessFromPath(env, t.executable, script.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStart, err)
	}
	output := new(bytes.Buffer)
	proc.RedirectStdoutTo(output)
	proc.RedirectStderrTo(output)

	logger := t.logger.WithFields(logrus.Fields{
		"executable": t.executable.String(),
		"script":     script.String(),
	})
	logger.Debug("running JLinkExe")

	res := &ExecResult{Args: []string{t.executable.String(), script.String()}}
	err = proc.RunWithinContext(ctx)
	res.Output = output.String()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %v", ErrStart, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	logger.WithField("exitCode", res.ExitCode).Debug("JLinkExe finished")
	return res, nil
}

// libraryPath prepends the install directory to the dynamic library search
// path of the child process. The current process environment is left untouched.
func (t *Tool) libraryPath() string {
	value := t.installDir.String()
	if current := os.Getenv(libraryPathEnv); current != "" {
		value += string(os.PathListSeparator) + current
	}
	return libraryPathEnv + "=" + value
}
