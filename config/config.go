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

// Package config resolves the flash controller settings from the environment
// and the command line, once, before any work is done.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/arduino/go-paths-helper"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// BuildPathEnv is the scratch directory receiving the rendered scripts
	BuildPathEnv = "BUILD_PATH"
	// JLinkPathEnv is the J-Link software installation directory
	JLinkPathEnv = "JLINK_PATH"

	keyBuildPath = "build_path"
	keyJLinkPath = "jlink_path"
	keyScriptDir = "script_dir"
)

// Flag names overriding the environment
const (
	BuildPathFlag = "build-path"
	JLinkPathFlag = "jlink-path"
	ScriptDirFlag = "script-dir"
)

var (
	ErrMissing       = errors.New("is not set")
	ErrNotADirectory = errors.New("is not a directory")
)

// Error reports an invalid setting.
type Error struct {
	Setting string
	Value   string
	Err     error
}

func (e *Error) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("configuration error: %s %s", e.Setting, e.Err)
	}
	return fmt.Sprintf("configuration error: %s=%s %s", e.Setting, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Flasher holds the resolved flash controller settings
type Flasher struct {
	BuildPath *paths.Path
	JLinkPath *paths.Path
	// ScriptDir is where erase.jlink and flash.jlink are looked up
	ScriptDir *paths.Path
}

// New returns a viper instance reading BUILD_PATH and JLINK_PATH from the
// environment.
func New() *viper.Viper {
	v := viper.New()
	// BindEnv only fails when called without a key
	_ = v.BindEnv(keyBuildPath, BuildPathEnv)
	_ = v.BindEnv(keyJLinkPath, JLinkPathEnv)
	return v
}

// BindFlags makes the command line flags take precedence over the environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range map[string]string{
		keyBuildPath: BuildPathFlag,
		keyJLinkPath: JLinkPathFlag,
		keyScriptDir: ScriptDirFlag,
	} {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

// LoadFlasher validates the settings. Both BUILD_PATH and JLINK_PATH are
// mandatory, the build directory is created if missing.
func LoadFlasher(v *viper.Viper) (*Flasher, error) {
	cfg := &Flasher{}

	jlinkPath, err := existingDir(JLinkPathEnv, v.GetString(keyJLinkPath))
	if err != nil {
		return nil, err
	}
	cfg.JLinkPath = jlinkPath

	buildPath := v.GetString(keyBuildPath)
	if buildPath == "" {
		return nil, &Error{Setting: BuildPathEnv, Err: ErrMissing}
	}
	cfg.BuildPath = paths.New(buildPath)
	if cfg.BuildPath.Exist() && cfg.BuildPath.IsNotDir() {
		return nil, &Error{Setting: BuildPathEnv, Value: buildPath, Err: ErrNotADirectory}
	}
	if err := cfg.BuildPath.MkdirAll(); err != nil {
		return nil, &Error{Setting: BuildPathEnv, Value: buildPath, Err: err}
	}

	if scriptDir := v.GetString(keyScriptDir); scriptDir != "" {
		cfg.ScriptDir, err = existingDir("--"+ScriptDirFlag, scriptDir)
		if err != nil {
			return nil, err
		}
	} else if exe, err := os.Executable(); err == nil {
		// the templates ship next to the executable
		cfg.ScriptDir = paths.New(exe).Parent()
	}
	return cfg, nil
}

func existingDir(setting, value string) (*paths.Path, error) {
	if value == "" {
		return nil, &Error{Setting: setting, Err: ErrMissing}
	}
	dir := paths.New(value)
	isDir, err := dir.IsDirCheck()
	if err != nil {
		return nil, &Error{Setting: setting, Value: value, Err: err}
	}
	if !isDir {
		return nil, &Error{Setting: setting, Value: value, Err: ErrNotADirectory}
	}
	return dir, nil
}
