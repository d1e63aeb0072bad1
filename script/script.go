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

// Package script loads J-Link command file templates and renders their
// {placeholder} fields.
package script

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/arduino/go-paths-helper"
)

// Name of a command file template
type Name string

const (
	// Erase wipes the whole flash, it has no placeholders
	Erase Name = "erase.jlink"
	// Flash loads {program} at {addr}
	Flash Name = "flash.jlink"
)

var (
	ErrNotFound = errors.New("script template not found")
	ErrFormat   = errors.New("invalid script template")
)

//go:embed templates/*.jlink
var builtin embed.FS

// Template is the unrendered content of a command file.
type Template struct {
	name Name
	path *paths.Path
	text string
}

// Name returns the template file name
func (t *Template) Name() Name {
	return t.name
}

// Path returns the file the template was read from, nil for the templates
// built into the binary.
func (t *Template) Path() *paths.Path {
	return t.path
}

// Text returns the raw template content
func (t *Template) Text() string {
	return t.text
}

// Render substitutes values into the template placeholders.
func (t *Template) Render(values map[string]string) (string, error) {
	res, err := Format(t.text, values)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", t.name, err)
	}
	return res, nil
}

// WriteTo renders the template and writes it in dir under the template name,
// replacing any previous file. It returns the path of the written file.
func (t *Template) WriteTo(dir *paths.Path, values map[string]string) (*paths.Path, error) {
	content, err := t.Render(values)
	if err != nil {
		return nil, err
	}
	if err := dir.MkdirAll(); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	target := dir.Join(string(t.name))
	if err := target.WriteFile([]byte(content)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", target, err)
	}
	return target, nil
}

// Loader finds templates in a directory, optionally falling back on the
// built-in nRF51822 templates.
type Loader struct {
	dir      *paths.Path
	fallback bool
}

// NewLoader creates a Loader reading from dir. dir may be nil, in which case
// only the built-in templates are available if fallback is set.
func NewLoader(dir *paths.Path, fallback bool) *Loader {
	return &Loader{dir: dir, fallback: fallback}
}

// Load reads the named template.
func (l *Loader) Load(name Name) (*Template, error) {
	if l.dir != nil {
		p := l.dir.Join(string(name))
		if p.Exist() {
			data, err := p.ReadFile()
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", p, err)
			}
			return &Template{name: name, path: p, text: string(data)}, nil
		}
	}
	if !l.fallback {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, name, l.dir)
	}
	data, err := builtin.ReadFile("templates/" + string(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &Template{name: name, text: string(data)}, nil
}

// Format replaces every {key} in text with values[key]. Doubled braces
// ({{ and }}) stand for a literal brace. Only bare names are accepted, a
// conversion or format spec such as {program!r} or {addr:>8} is an error.
func Format(text string, values map[string]string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated placeholder at offset %d", ErrFormat, i)
			}
			key := text[i+1 : i+1+end]
			if strings.ContainsAny(key, ":!") {
				return "", fmt.Errorf("%w: unsupported conversion or format spec in {%s}", ErrFormat, key)
			}
			value, ok := values[key]
			if !ok {
				return "", fmt.Errorf("%w: unknown placeholder {%s}", ErrFormat, key)
			}
			b.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d", ErrFormat, i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
