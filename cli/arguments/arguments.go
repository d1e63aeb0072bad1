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

package arguments

import (
	"github.com/blessed-stack/blessed-tools/config"
	"github.com/spf13/cobra"
)

// Flags contains the flash controller flags.
// This is useful so all flags used by commands that need
// this information are consistent with each other.
type Flags struct {
	Address           uint32
	PropagateExitCode bool
}

// AddToCommand adds the flash controller flags as persistent flags of cmd.
// The directory flags are only registered here, their values are read
// through the config package together with the environment.
func (f *Flags) AddToCommand(cmd *cobra.Command) {
	cmd.PersistentFlags().String(config.BuildPathFlag, "", "Scratch directory for rendered scripts and downloaded programs, overrides "+config.BuildPathEnv)
	cmd.PersistentFlags().String(config.JLinkPathFlag, "", "J-Link software directory containing JLinkExe, overrides "+config.JLinkPathEnv)
	cmd.PersistentFlags().String(config.ScriptDirFlag, "", "Directory containing erase.jlink and flash.jlink (default: the executable directory, then the built-in scripts)")
	cmd.PersistentFlags().Uint32Var(&f.Address, "address", 0, "Load address substituted in flash.jlink, e.g.: 0x18000")
	cmd.PersistentFlags().BoolVar(&f.PropagateExitCode, "propagate-exit-code", false, "Exit with the JLinkExe exit code instead of always succeeding")
}
