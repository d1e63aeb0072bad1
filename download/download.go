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

package download

import (
	"bytes"
	"crypto"
	_ "crypto/md5"
	_ "crypto/sha1"
	_ "crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/arduino/go-paths-helper"
	"github.com/sirupsen/logrus"
	"go.bug.st/downloader/v2"
)

var ErrChecksumMismatch = errors.New("file hash differs from expected checksum")

// IsURL reports whether program refers to a remote artifact rather than a
// local file.
func IsURL(program string) bool {
	u, err := url.Parse(program)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DownloadProgram fetches the program at programURL into dir, keeping the
// remote file name, and returns the local path.
func DownloadProgram(programURL string, dir *paths.Path) (*paths.Path, error) {
	u, err := url.Parse(programURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL %s: %s", programURL, err)
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = "program.bin"
	}
	programPath := dir.Join(name)
	if err := dir.MkdirAll(); err != nil {
		return nil, err
	}
	// downloader resumes partial files, start from an empty one
	if err := programPath.WriteFile(nil); err != nil {
		return nil, err
	}
	logrus.Debugf("downloading %s to %s", programURL, programPath)
	d, err := downloader.Download(programPath.String(), u.String())
	if err != nil {
		logrus.Error(err)
		programPath.Remove()
		return nil, err
	}
	if err := Download(d); err != nil {
		logrus.Error(err)
		programPath.Remove()
		return nil, err
	}
	return programPath, nil
}

// Download will take a downloader.Downloader as parameter. It will Download the file specified in the downloader
func Download(d *downloader.Downloader) error {
	if d == nil {
		// This signal means that the file is already downloaded
		return nil
	}
	if err := d.Run(); err != nil {
		return fmt.Errorf("failed to download file from %s : %s", d.URL, err)
	}
	// The URL is not reachable for some reason
	if d.Resp.StatusCode >= 400 && d.Resp.StatusCode <= 599 {
		return errors.New(d.Resp.Status)
	}
	return nil
}

// VerifyFileChecksum checks filePath against a checksum in the ALGO:HEX form,
// e.g. SHA-256:2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae
func VerifyFileChecksum(checksum string, filePath *paths.Path) error {
	algo, digest, err := parseChecksum(checksum)
	if err != nil {
		return err
	}

	file, err := filePath.Open()
	if err != nil {
		return fmt.Errorf("opening file: %s", err)
	}
	defer file.Close()
	if _, err := io.Copy(algo, file); err != nil {
		return fmt.Errorf("computing hash: %s", err)
	}
	if !bytes.Equal(algo.Sum(nil), digest) {
		return fmt.Errorf("%w: %s", ErrChecksumMismatch, filePath)
	}
	return nil
}

// ValidateChecksum checks the syntax of a checksum without hashing anything.
func ValidateChecksum(checksum string) error {
	_, _, err := parseChecksum(checksum)
	return err
}

func parseChecksum(checksum string) (hash.Hash, []byte, error) {
	split := strings.SplitN(checksum, ":", 2)
	if len(split) != 2 {
		return nil, nil, fmt.Errorf("invalid checksum format: %s", checksum)
	}
	digest, err := hex.DecodeString(split[1])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid hash '%s': %s", split[1], err)
	}

	// names based on: https://docs.oracle.com/javase/8/docs/technotes/guides/security/StandardNames.html#MessageDigest
	var algo hash.Hash
	switch split[0] {
	case "SHA-256":
		algo = crypto.SHA256.New()
	case "SHA-1":
		algo = crypto.SHA1.New()
	case "MD5":
		algo = crypto.MD5.New()
	default:
		return nil, nil, fmt.Errorf("unsupported hash algorithm: %s", split[0])
	}
	return algo, digest, nil
}
