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

package flasher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arduino/go-paths-helper"
	"github.com/blessed-stack/blessed-tools/download"
	"github.com/blessed-stack/blessed-tools/flasher/mocks"
	"github.com/blessed-stack/blessed-tools/programmers/jlink"
	"github.com/blessed-stack/blessed-tools/script"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const helloSHA256 = "SHA-256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

// readScript returns a Run stub recording the content of the script it is given
func readScript(t *testing.T, content *string, exitCode int) func(context.Context, *paths.Path) (*jlink.ExecResult, error) {
	return func(_ context.Context, p *paths.Path) (*jlink.ExecResult, error) {
		data, err := p.ReadFile()
		require.NoError(t, err)
		*content = string(data)
		return &jlink.ExecResult{Args: []string{"JLinkExe", p.String()}, ExitCode: exitCode, Output: "J-Link output\n"}, nil
	}
}

func TestFlash(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	tests := map[string]struct {
		cmd            Flash
		address        uint32
		propagate      bool
		prepare        func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string)
		expectedScript string
		expectedStatus int
		expectedErr    error
	}{
		"program path and default address are substituted": {
			cmd: Flash{Program: "/work/app.bin"},
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				runner.EXPECT().Run(gomock.Any(), build.Join("flash.jlink")).Times(1).DoAndReturn(readScript(t, content, 0))
			},
			expectedScript: "loadbin /work/app.bin 0\n",
		},
		"tool failure is not propagated by default": {
			cmd: Flash{Program: "/work/app.bin"},
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(readScript(t, content, 1))
			},
			expectedScript: "loadbin /work/app.bin 0\n",
		},
		"tool failure is propagated on request": {
			cmd:       Flash{Program: "/work/app.bin"},
			propagate: true,
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(readScript(t, content, 4))
			},
			expectedScript: "loadbin /work/app.bin 0\n",
			expectedStatus: 4,
		},
		"custom address is rendered in hex": {
			cmd:     Flash{Program: "/work/app.bin"},
			address: 0x18000,
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(readScript(t, content, 0))
			},
			expectedScript: "loadbin /work/app.bin 18000\n",
		},
		"remote program is fetched and verified": {
			cmd: Flash{Program: "https://build.local/out/app.bin", Checksum: helloSHA256},
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				local := build.Join("app.bin")
				require.NoError(t, local.WriteFile([]byte("hello")))
				gomock.InOrder(
					fetcher.EXPECT().Fetch("https://build.local/out/app.bin", build).Times(1).Return(local, nil),
					runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(readScript(t, content, 0)),
				)
			},
			expectedScript: "loadbin %BUILD%/app.bin 0\n",
		},
		"checksum mismatch prevents the tool call": {
			cmd: Flash{Program: "https://build.local/out/app.bin", Checksum: "MD5:00000000000000000000000000000000"},
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				local := build.Join("app.bin")
				require.NoError(t, local.WriteFile([]byte("hello")))
				fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Times(1).Return(local, nil)
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(0)
			},
			expectedErr: download.ErrChecksumMismatch,
		},
		"invalid checksum fails before downloading": {
			cmd: Flash{Program: "https://build.local/out/app.bin", Checksum: "CRC32:3610a686"},
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Times(0)
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(0)
			},
			expectedErr: errors.New("unsupported hash algorithm: CRC32"),
		},
		"download failure": {
			cmd: Flash{Program: "https://build.local/out/app.bin"},
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Times(1).Return(nil, errors.New("404 Not Found"))
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(0)
			},
			expectedErr: ErrDownload,
		},
		"tool cannot start": {
			cmd: Flash{Program: "/work/app.bin"},
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(1).Return(nil, jlink.ErrStart)
			},
			expectedErr: ErrTool,
		},
		"empty program": {
			cmd: Flash{},
			prepare: func(t *testing.T, build *paths.Path, runner *mocks.MockRunner, fetcher *mocks.MockProgramFetcher, content *string) {
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(0)
			},
			expectedErr: ErrNoProgram,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			runner := mocks.NewMockRunner(ctrl)
			fetcher := mocks.NewMockProgramFetcher(ctrl)
			build := paths.New(t.TempDir())
			var content string
			tc.prepare(t, build, runner, fetcher, &content)

			controller, err := New(&Config{
				BuildDir:          build,
				Scripts:           script.NewLoader(nil, true),
				Runner:            runner,
				Fetcher:           fetcher,
				Address:           tc.address,
				PropagateExitCode: tc.propagate,
				Logger:            logger,
			})
			require.NoError(t, err)

			res, err := controller.Run(context.Background(), tc.cmd)
			if tc.expectedErr != nil {
				require.Error(t, err)
				if errors.Is(err, tc.expectedErr) {
					return
				}
				require.Contains(t, err.Error(), tc.expectedErr.Error())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatus, res.Status)
			require.Equal(t, "flash", res.Command)
			require.Equal(t, build.Join("flash.jlink").String(), res.Script)
			require.Equal(t, "J-Link output\n", res.String())

			require.Contains(t, content, strings.ReplaceAll(tc.expectedScript, "%BUILD%", build.String()))
			require.Contains(t, content, "device nrf51822")
			require.NotContains(t, content, "{program}")
		})
	}
}

func TestFlashRequiresBuildDir(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	runner := mocks.NewMockRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(0)

	controller, err := New(&Config{Scripts: script.NewLoader(nil, true), Runner: runner})
	require.NoError(t, err)
	_, err = controller.Run(context.Background(), Flash{Program: "/work/app.bin"})
	require.True(t, errors.Is(err, ErrNoBuildDir))
}

func TestErase(t *testing.T) {
	t.Run("script from directory is used in place", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		scripts := paths.New(t.TempDir())
		eraseScript := scripts.Join("erase.jlink")
		require.NoError(t, eraseScript.WriteFile([]byte("erase\nq\n")))

		runner := mocks.NewMockRunner(ctrl)
		runner.EXPECT().Run(gomock.Any(), eraseScript).Times(1).
			Return(&jlink.ExecResult{ExitCode: 3, Output: "Cannot connect to target.\n"}, nil)

		controller, err := New(&Config{Scripts: script.NewLoader(scripts, false), Runner: runner})
		require.NoError(t, err)
		res, err := controller.Run(context.Background(), Erase{})
		require.NoError(t, err)
		require.Equal(t, 0, res.Status)
		require.Equal(t, "erase", res.Command)
		require.Equal(t, eraseScript.String(), res.Script)
		require.Equal(t, "Cannot connect to target.\n", res.String())
		require.Equal(t, 3, res.Tool.ExitCode)
	})

	t.Run("built-in script without build directory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		var content string
		var used *paths.Path
		runner := mocks.NewMockRunner(ctrl)
		runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(1).
			DoAndReturn(func(ctx context.Context, p *paths.Path) (*jlink.ExecResult, error) {
				used = p
				return readScript(t, &content, 0)(ctx, p)
			})

		controller, err := New(&Config{Scripts: script.NewLoader(nil, true), Runner: runner, PropagateExitCode: true})
		require.NoError(t, err)
		res, err := controller.Run(context.Background(), Erase{})
		require.NoError(t, err)
		require.Equal(t, 0, res.Status)
		require.Contains(t, content, "w4 4001e504 2")
		require.False(t, used.Exist(), "temporary script is removed")
	})

	t.Run("missing script", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		runner := mocks.NewMockRunner(ctrl)
		runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(0)

		controller, err := New(&Config{Scripts: script.NewLoader(paths.New(t.TempDir()), false), Runner: runner})
		require.NoError(t, err)
		_, err = controller.Run(context.Background(), Erase{})
		require.True(t, errors.Is(err, script.ErrNotFound))
	})
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New(&Config{Scripts: script.NewLoader(nil, true)})
	require.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestFormatAddress(t *testing.T) {
	require.Equal(t, "0", FormatAddress(0))
	require.Equal(t, "18000", FormatAddress(0x18000))
	require.Equal(t, "FFFFFFFF", FormatAddress(0xFFFFFFFF))
}
