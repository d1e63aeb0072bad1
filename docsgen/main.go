/*
	Source: https://github.com/arduino/tooling-project-assets/blob/main/workflow-templates/assets/cobra/docsgen/main.go

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

// Package main generates Markdown documentation for the segger and
// remote-build command lines, one sub folder each.
package main

import (
	"os"

	"github.com/arduino/go-paths-helper"
	"github.com/blessed-stack/blessed-tools/cli/remotebuild"
	"github.com/blessed-stack/blessed-tools/cli/segger"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func main() {
	if len(os.Args) < 2 {
		print("error: Please provide the output folder argument")
		os.Exit(1)
	}
	outputDir := paths.New(os.Args[1])

	for name, cli := range map[string]*cobra.Command{
		"segger":       segger.NewCommand(),
		"remote-build": remotebuild.NewCommand(),
	} {
		dir := outputDir.Join(name)
		if err := dir.MkdirAll(); err != nil { // Create the output folder if it doesn't already exist
			panic(err)
		}
		cli.DisableAutoGenTag = true // Disable addition of auto-generated date stamp
		if err := doc.GenMarkdownTree(cli, dir.String()); err != nil {
			panic(err)
		}
	}
}
