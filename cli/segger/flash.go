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

package segger

import (
	"os"

	"github.com/blessed-stack/blessed-tools/cli/arguments"
	"github.com/blessed-stack/blessed-tools/cli/common"
	"github.com/blessed-stack/blessed-tools/flasher"
	"github.com/spf13/cobra"
)

// NewFlashCommand creates a new `flash` command
func NewFlashCommand(flags *arguments.Flags) *cobra.Command {
	var checksum string
	command := &cobra.Command{
		Use:   "flash <program>",
		Short: "Flashes a program to the device.",
		Long:  "Renders flash.jlink with the program path and load address into the build directory and runs JLinkExe with it. The program can be a local file or an http(s) URL.",
		Example: "" +
			"  " + os.Args[0] + " flash build/app.bin\n" +
			"  " + os.Args[0] + " flash --address 0x18000 build/app.bin\n" +
			"  " + os.Args[0] + " flash --checksum SHA-256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824 https://example.com/app.bin\n",
		Args: common.WithExitCode(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, flasher.Flash{Program: args[0], Checksum: checksum})
		},
	}
	command.Flags().StringVar(&checksum, "checksum", "", "Expected program checksum, e.g.: SHA-256:<hex>, SHA-1:<hex>, MD5:<hex>")
	return command
}
