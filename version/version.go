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

package version

import (
	"fmt"

	semver "go.bug.st/relaxed-semver"
)

// Set via LDFLAGS
var (
	defaultVersionString = "0.0.0-git"
	versionString        = ""
	commit               = ""
	date                 = ""
)

// Info contains info regarding the version of one of the tools
type Info struct {
	Application   string `json:"Application" yaml:"application"`
	VersionString string `json:"VersionString" yaml:"version"`
	Commit        string `json:"Commit" yaml:"commit"`
	Date          string `json:"Date" yaml:"date"`
}

// NewInfo returns the version info of the named application
func NewInfo(application string) *Info {
	v := versionString
	if v == "" {
		v = defaultVersionString
	}
	return &Info{
		Application:   application,
		VersionString: v,
		Commit:        commit,
		Date:          date,
	}
}

func (i *Info) String() string {
	return fmt.Sprintf("%s Version: %s Commit: %s Date: %s", i.Application, i.VersionString, i.Commit, i.Date)
}

// Data implements feedback.Result interface
func (i *Info) Data() interface{} {
	return i
}

// Version returns the version string parsed as a relaxed semantic version
func (i *Info) Version() *semver.RelaxedVersion {
	return semver.ParseRelaxed(i.VersionString)
}

// UserAgent is the value sent in the User-Agent header of HTTP requests
func (i *Info) UserAgent() string {
	return fmt.Sprintf("%s/%s", i.Application, i.Version())
}
