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

package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// ExitCode to be used for Fatal.
type ExitCode int

const (
	// Success (0 is the no-error return code in Unix)
	Success ExitCode = iota

	// ErrGeneric Generic error (1 is the reserved "catchall" code in Unix)
	ErrGeneric

	_ // (2 Is reserved in Unix)

	// ErrNoConfigFile is returned when a required file is not found (3)
	ErrNoConfigFile

	_ // (4 was ErrBadCall and has been removed)

	// ErrNetwork is returned when a network error occurs (5)
	ErrNetwork

	// ErrCoreConfig represents an error in the tool configuration, for example a
	// required environment variable is not set or points to a missing directory. (6)
	ErrCoreConfig

	// ErrBadArgument is returned when the arguments are not valid (7)
	ErrBadArgument
)

// OutputFormat is an output format
type OutputFormat int

const (
	// Text is the plain text format, suitable for interactive terminals
	Text OutputFormat = iota
	// JSON format
	JSON
	// YAML format
	YAML
)

var formats = map[string]OutputFormat{
	"json": JSON,
	"text": Text,
	"yaml": YAML,
}

func (f OutputFormat) String() string {
	for res, format := range formats {
		if format == f {
			return res
		}
	}
	panic("unknown output format")
}

// ParseOutputFormat parses a string and returns the corresponding OutputFormat.
// The boolean returned is true if the string was a valid OutputFormat.
func ParseOutputFormat(in string) (OutputFormat, bool) {
	format, found := formats[in]
	return format, found
}

// FormatNames returns the accepted output format names, sorted.
func FormatNames() []string {
	names := maps.Keys(formats)
	slices.Sort(names)
	return names
}

var (
	format OutputFormat = Text
	stdOut io.Writer    = os.Stdout
	stdErr io.Writer    = os.Stderr
	osExit              = os.Exit
)

// Result is anything more complex than a sentence that needs to be printed
// for the user.
type Result interface {
	fmt.Stringer
	Data() interface{}
}

// ErrorResult is a result embedding also an error. In case of textual output
// the error will be printed on stderr.
type ErrorResult interface {
	Result
	ErrorString() string
}

// SetFormat can be used to change the output format at runtime
func SetFormat(f OutputFormat) {
	format = f
}

// GetFormat returns the output format currently set
func GetFormat() OutputFormat {
	return format
}

// SetOutputStreams replaces the writers used for stdout and stderr.
func SetOutputStreams(out, err io.Writer) {
	stdOut = out
	stdErr = err
}

// OutputStreams returns the writers currently used for stdout and stderr.
func OutputStreams() (io.Writer, io.Writer) {
	return stdOut, stdErr
}

// Errorf writes a formatted message on stderr.
func Errorf(msg string, args ...interface{}) {
	fmt.Fprintf(stdErr, msg+"\n", args...)
}

// ExitError is returned by commands to tell main which exit code to use.
// A nil Err means the outcome has already been reported to the user.
type ExitError struct {
	Code ExitCode
	Err  error
}

// NewExitError wraps err so that the process exits with code.
func NewExitError(code ExitCode, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exit terminates the process according to the error returned by a command.
func Exit(err error) {
	if err == nil {
		osExit(int(Success))
		return
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		FatalError(err, ErrGeneric)
		return
	}
	if exitErr.Err == nil {
		osExit(int(exitErr.Code))
		return
	}
	FatalError(exitErr.Err, exitErr.Code)
}

// FatalError outputs the error and exits with status exitCode.
func FatalError(err error, exitCode ExitCode) {
	Fatal(err.Error(), exitCode)
}

// Fatal outputs the errorMsg and exits with status exitCode.
func Fatal(errorMsg string, exitCode ExitCode) {
	if format == Text {
		fmt.Fprintln(stdErr, errorMsg)
		osExit(int(exitCode))
		return
	}

	type FatalError struct {
		Error string `json:"error" yaml:"error"`
	}
	res := &FatalError{
		Error: errorMsg,
	}
	d, err := marshal(res)
	if err != nil {
		panic(err)
	}
	fmt.Fprintln(stdOut, string(d))
	osExit(int(exitCode))
}

// PrintResult is a convenient wrapper to provide feedback for complex data,
// where the contents can't be just serialized to JSON but requires more
// structure.
func PrintResult(res Result) {
	var data string
	var dataErr string
	switch format {
	case JSON, YAML:
		d, err := marshal(res.Data())
		if err != nil {
			Fatal(fmt.Sprintf("Error during %s encoding of the output: %v", format, err), ErrGeneric)
			return
		}
		data = string(d)
	case Text:
		data = res.String()
		if resErr, ok := res.(ErrorResult); ok {
			dataErr = resErr.ErrorString()
		}
	default:
		panic("unknown output format")
	}
	if data != "" {
		fmt.Fprintln(stdOut, data)
	}
	if dataErr != "" {
		fmt.Fprintln(stdErr, dataErr)
	}
}

func marshal(v interface{}) ([]byte, error) {
	switch format {
	case JSON:
		return json.MarshalIndent(v, "", "  ")
	case YAML:
		d, err := yaml.Marshal(v)
		if err != nil {
			return nil, err
		}
		// yaml.Marshal always terminates the document with a newline
		if len(d) > 0 && d[len(d)-1] == '\n' {
			d = d[:len(d)-1]
		}
		return d, nil
	}
	panic("unknown output format")
}
