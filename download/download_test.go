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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arduino/go-paths-helper"
	"github.com/stretchr/testify/require"
)

const helloSHA256 = "SHA-256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestIsURL(t *testing.T) {
	require.True(t, IsURL("http://build.local/out/app.bin"))
	require.True(t, IsURL("https://build.local/out/app.bin"))
	require.False(t, IsURL("/tmp/app.bin"))
	require.False(t, IsURL("app.bin"))
	require.False(t, IsURL("file:///tmp/app.bin"))
	require.False(t, IsURL("http:///app.bin"))
}

func TestDownloadProgram(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/out/app.bin" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	dir := paths.New(t.TempDir()).Join("build")
	// a stale file with the same name must not be resumed
	require.NoError(t, dir.MkdirAll())
	require.NoError(t, dir.Join("app.bin").WriteFile([]byte("stale content from a previous run")))

	programPath, err := DownloadProgram(server.URL+"/out/app.bin", dir)
	require.NoError(t, err)
	require.Equal(t, dir.Join("app.bin").String(), programPath.String())
	data, err := programPath.ReadFile()
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
	require.NoError(t, VerifyFileChecksum(helloSHA256, programPath))

	_, err = DownloadProgram(server.URL+"/out/missing.bin", dir)
	require.Error(t, err)
	require.False(t, dir.Join("missing.bin").Exist())
}

func TestVerifyFileChecksum(t *testing.T) {
	file := paths.New(t.TempDir()).Join("app.bin")
	require.NoError(t, file.WriteFile([]byte("hello")))

	tests := map[string]struct {
		checksum    string
		expectedErr error
		wantErr     bool
	}{
		"sha-256 matches": {checksum: helloSHA256},
		"md5 matches":     {checksum: "MD5:5d41402abc4b2a76b9719d911017c592"},
		"sha-1 matches":   {checksum: "SHA-1:aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		"mismatch": {
			checksum:    "SHA-256:0000000000000000000000000000000000000000000000000000000000000000",
			expectedErr: ErrChecksumMismatch,
			wantErr:     true,
		},
		"missing algorithm":     {checksum: "2cf24dba", wantErr: true},
		"unsupported algorithm": {checksum: "CRC32:3610a686", wantErr: true},
		"invalid hex":           {checksum: "SHA-256:zz", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := VerifyFileChecksum(tc.checksum, file)
			if !tc.wantErr {
				require.NoError(t, err)
				require.NoError(t, ValidateChecksum(tc.checksum))
				return
			}
			require.Error(t, err)
			if tc.expectedErr != nil {
				require.True(t, errors.Is(err, tc.expectedErr))
			}
		})
	}
}
