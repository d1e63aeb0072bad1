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

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . Runner,ProgramFetcher

// Package flasher erases and programs the device through J-Link command files.
package flasher

import (
	"context"
	"errors"
	"fmt"

	"github.com/arduino/go-paths-helper"
	"github.com/blessed-stack/blessed-tools/download"
	"github.com/blessed-stack/blessed-tools/programmers/jlink"
	"github.com/blessed-stack/blessed-tools/script"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidConfig = errors.New("invalid flasher configuration")
	ErrNoBuildDir    = errors.New("build directory is required to flash")
	ErrNoProgram     = errors.New("no program to flash")
	ErrDownload      = errors.New("cannot download program")
	ErrTool          = errors.New("J-Link run failed")
)

// Command is either Erase or Flash
type Command interface {
	command() string
}

// Erase wipes the whole device flash.
type Erase struct{}

func (Erase) command() string { return "erase" }

// Flash writes Program at the configured load address. Program is a local
// path or an http(s) URL, Checksum (ALGO:HEX) is optional.
type Flash struct {
	Program  string
	Checksum string
}

func (Flash) command() string { return "flash" }

// Runner executes a J-Link command file, *jlink.Tool in production.
type Runner interface {
	Run(ctx context.Context, script *paths.Path) (*jlink.ExecResult, error)
}

// ProgramFetcher retrieves a program given by URL into dir.
type ProgramFetcher interface {
	Fetch(programURL string, dir *paths.Path) (*paths.Path, error)
}

// HTTPFetcher downloads programs over http(s)
type HTTPFetcher struct{}

// Fetch downloads programURL into dir and returns the local copy.
func (HTTPFetcher) Fetch(programURL string, dir *paths.Path) (*paths.Path, error) {
	return download.DownloadProgram(programURL, dir)
}

// Config of a Controller. Scripts and Runner are required.
type Config struct {
	// BuildDir receives the rendered scripts and downloaded programs. Flash
	// fails with ErrNoBuildDir without it, erase falls back to a temp dir.
	BuildDir *paths.Path
	Scripts  *script.Loader
	Runner   Runner
	Fetcher  ProgramFetcher
	// Address is substituted into {addr}
	Address uint32
	// PropagateExitCode reports the J-Link exit code as the result status
	// instead of always succeeding.
	PropagateExitCode bool
	Logger            *logrus.Logger
}

// Controller renders the J-Link command file for a Command and runs it.
type Controller struct {
	buildDir          *paths.Path
	scripts           *script.Loader
	runner            Runner
	fetcher           ProgramFetcher
	address           uint32
	propagateExitCode bool
	logger            *logrus.Logger
}

// New returns a Controller, ErrInvalidConfig when Scripts or Runner is missing.
func New(config *Config) (*Controller, error) {
	if config.Scripts == nil || config.Runner == nil {
		return nil, fmt.Errorf("%w: scripts and runner are required", ErrInvalidConfig)
	}
	fetcher := config.Fetcher
	if fetcher == nil {
		fetcher = HTTPFetcher{}
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{
		buildDir:          config.BuildDir,
		scripts:           config.Scripts,
		runner:            config.Runner,
		fetcher:           fetcher,
		address:           config.Address,
		propagateExitCode: config.PropagateExitCode,
		logger:            logger,
	}, nil
}

// Result of one erase or flash run
type Result struct {
	Command string            `json:"command" yaml:"command"`
	Script  string            `json:"script" yaml:"script"`
	Program string            `json:"program,omitempty" yaml:"program,omitempty"`
	Tool    *jlink.ExecResult `json:"tool" yaml:"tool"`
	// Status is the exit status the command reports
	Status int `json:"status" yaml:"status"`
}

// String returns the captured J-Link output
func (r *Result) String() string {
	if r.Tool == nil {
		return ""
	}
	return r.Tool.Output
}

func (r *Result) Data() interface{} {
	return r
}

// Run executes cmd with exactly one J-Link invocation.
func (c *Controller) Run(ctx context.Context, cmd Command) (*Result, error) {
	logger := c.logger.WithField("command", cmd.command())
	res := &Result{Command: cmd.command()}

	var scriptPath *paths.Path
	switch cmd := cmd.(type) {
	case Erase:
		p, cleanup, err := c.eraseScript()
		if err != nil {
			return nil, err
		}
		defer cleanup()
		scriptPath = p
	case Flash:
		program, err := c.prepareProgram(cmd)
		if err != nil {
			return nil, err
		}
		res.Program = program
		p, err := c.flashScript(program)
		if err != nil {
			return nil, err
		}
		scriptPath = p
	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
	res.Script = scriptPath.String()

	logger.WithField("script", res.Script).Info("running J-Link")
	toolRes, err := c.runner.Run(ctx, scriptPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTool, err)
	}
	res.Tool = toolRes
	if c.propagateExitCode {
		res.Status = toolRes.ExitCode
	}
	if toolRes.ExitCode != 0 {
		logger.Warnf("JLinkExe exited with status %d", toolRes.ExitCode)
	}
	return res, nil
}

// eraseScript runs erase.jlink in place. The built-in template has no file
// of its own and is written to the build directory, or to a temporary one.
func (c *Controller) eraseScript() (*paths.Path, func(), error) {
	tmpl, err := c.scripts.Load(script.Erase)
	if err != nil {
		return nil, nil, err
	}
	if tmpl.Path() != nil {
		return tmpl.Path(), func() {}, nil
	}
	dir := c.buildDir
	cleanup := func() {}
	if dir == nil {
		tmp, err := paths.MkTempDir("", "segger-")
		if err != nil {
			return nil, nil, err
		}
		dir = tmp
		cleanup = func() { tmp.RemoveAll() }
	}
	p, err := tmpl.WriteTo(dir, nil)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}

func (c *Controller) prepareProgram(cmd Flash) (string, error) {
	if cmd.Program == "" {
		return "", ErrNoProgram
	}
	if c.buildDir == nil {
		return "", ErrNoBuildDir
	}
	if cmd.Checksum != "" {
		if err := download.ValidateChecksum(cmd.Checksum); err != nil {
			return "", err
		}
	}

	program := cmd.Program
	programPath := paths.New(program)
	if download.IsURL(program) {
		p, err := c.fetcher.Fetch(program, c.buildDir)
		if err != nil {
			return "", fmt.Errorf("%w %s: %v", ErrDownload, program, err)
		}
		programPath = p
		program = p.String()
	}
	if cmd.Checksum != "" {
		if err := download.VerifyFileChecksum(cmd.Checksum, programPath); err != nil {
			return "", err
		}
		c.logger.WithField("program", program).Debug("checksum verified")
	}
	return program, nil
}

func (c *Controller) flashScript(program string) (*paths.Path, error) {
	tmpl, err := c.scripts.Load(script.Flash)
	if err != nil {
		return nil, err
	}
	return tmpl.WriteTo(c.buildDir, map[string]string{
		"program": program,
		"addr":    FormatAddress(c.address),
	})
}

// FormatAddress renders a load address the way loadbin expects it, as
// hexadecimal digits without prefix.
func FormatAddress(addr uint32) string {
	return fmt.Sprintf("%X", addr)
}
