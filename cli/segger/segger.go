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

// Package segger implements the command line of the J-Link flash controller.
package segger

import (
	"errors"
	"os"

	"github.com/blessed-stack/blessed-tools/cli/arguments"
	"github.com/blessed-stack/blessed-tools/cli/common"
	"github.com/blessed-stack/blessed-tools/cli/feedback"
	"github.com/blessed-stack/blessed-tools/cli/globals"
	"github.com/blessed-stack/blessed-tools/cli/version"
	"github.com/blessed-stack/blessed-tools/config"
	"github.com/blessed-stack/blessed-tools/flasher"
	"github.com/blessed-stack/blessed-tools/programmers/jlink"
	"github.com/blessed-stack/blessed-tools/script"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewCommand creates the segger root command
func NewCommand() *cobra.Command {
	var globalFlags common.GlobalFlags
	var flasherFlags arguments.Flags

	seggerCli := &cobra.Command{
		Use:     "segger",
		Short:   "Erases and flashes an nRF51822 through a SEGGER J-Link.",
		Long:    "segger runs JLinkExe with the erase.jlink or flash.jlink command file to erase or program the device flash.",
		Example: "  " + os.Args[0] + " <command> [flags...]",
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return globalFlags.PreRun(globals.SeggerInfo)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			globalFlags.PostRun()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	globalFlags.AddToCommand(seggerCli)
	flasherFlags.AddToCommand(seggerCli)

	seggerCli.AddCommand(NewEraseCommand(&flasherFlags))
	seggerCli.AddCommand(NewFlashCommand(&flasherFlags))
	seggerCli.AddCommand(version.NewCommand(globals.SeggerInfo))
	return seggerCli
}

// run resolves the configuration and performs the single J-Link run of the
// command. The returned error carries the process exit code.
func run(cmd *cobra.Command, flags *arguments.Flags, command flasher.Command) error {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return feedback.NewExitError(feedback.ErrGeneric, err)
	}
	cfg, err := config.LoadFlasher(v)
	if err != nil {
		return feedback.NewExitError(feedback.ErrCoreConfig, err)
	}
	logrus.WithFields(logrus.Fields{
		"jlinkPath": cfg.JLinkPath,
		"buildPath": cfg.BuildPath,
		"scriptDir": cfg.ScriptDir,
		"flags":     common.ChangedFlags(cmd.Flags()),
	}).Debug("configuration loaded")

	tool, err := jlink.New(&jlink.Config{InstallDir: cfg.JLinkPath, Logger: logrus.StandardLogger()})
	if err != nil {
		return feedback.NewExitError(feedback.ErrCoreConfig, err)
	}
	controller, err := flasher.New(&flasher.Config{
		BuildDir:          cfg.BuildPath,
		Scripts:           script.NewLoader(cfg.ScriptDir, true),
		Runner:            tool,
		Address:           flags.Address,
		PropagateExitCode: flags.PropagateExitCode,
		Logger:            logrus.StandardLogger(),
	})
	if err != nil {
		return feedback.NewExitError(feedback.ErrGeneric, err)
	}

	res, err := controller.Run(cmd.Context(), command)
	if errors.Is(err, flasher.ErrDownload) {
		return feedback.NewExitError(feedback.ErrNetwork, err)
	}
	if err != nil {
		return feedback.NewExitError(feedback.ErrGeneric, err)
	}
	feedback.PrintResult(res)
	if res.Status != 0 {
		return feedback.NewExitError(feedback.ExitCode(res.Status), nil)
	}
	return nil
}
