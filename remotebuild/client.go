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

// Package remotebuild uploads source archives to a remote build server.
package remotebuild

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/arduino/go-paths-helper"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds the whole request, upload and response included
const DefaultTimeout = 60 * time.Second

// FormField is the multipart field carrying the archive
const FormField = "code"

var (
	ErrReadFile        = errors.New("cannot read file")
	ErrInvalidResponse = errors.New("invalid response from build server")
)

// HTTPError is returned when the server answers with a status other than 200.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("build server responded with status %d", e.StatusCode)
}

// Result is the build outcome reported by the server.
type Result struct {
	Status  int    `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// Failed reports whether the server flagged the build as failed
func (r *Result) Failed() bool {
	return r.Status != 0
}

// Config of a Client, the zero value is usable.
type Config struct {
	HTTPClient *http.Client
	// Timeout defaults to DefaultTimeout, it is ignored when HTTPClient
	// already sets one.
	Timeout   time.Duration
	UserAgent string
	Logger    *logrus.Logger
}

// Client talks to a remote build server.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *logrus.Logger
}

// New returns a Client, applying DefaultTimeout and the standard logger when
// they are not configured.
func New(config *Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c := *httpClient
		c.Timeout = timeout
		httpClient = &c
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  config.UserAgent,
		logger:     logger,
	}
}

// Upload posts file to serverURL as a multipart form and decodes the build
// result. A non-200 answer is returned as *HTTPError.
func (c *Client) Upload(ctx context.Context, serverURL string, file *paths.Path) (*Result, error) {
	content, err := file.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFile, err)
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(FormField, file.Base())
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	logger := c.logger.WithFields(logrus.Fields{
		"server": serverURL,
		"file":   file.String(),
		"size":   len(content),
	})
	logger.Debug("uploading archive")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	logger.WithField("statusCode", resp.StatusCode).Debug("build server answered")
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: respBody}
	}
	return parseResult(respBody)
}

func parseResult(data []byte) (*Result, error) {
	var raw struct {
		Status  json.RawMessage `json:"status"`
		Message *string         `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if raw.Status == nil || raw.Message == nil {
		return nil, fmt.Errorf("%w: missing status or message in %q", ErrInvalidResponse, data)
	}
	status, err := parseStatus(raw.Status)
	if err != nil {
		return nil, err
	}
	return &Result{Status: status, Message: *raw.Message}, nil
}

// parseStatus accepts an integer status or a boolean, true meaning failure.
func parseStatus(raw json.RawMessage) (int, error) {
	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		if flag {
			return 1, nil
		}
		return 0, nil
	}
	var status int
	if err := json.Unmarshal(raw, &status); err != nil {
		return 0, fmt.Errorf("%w: status %s is neither an integer nor a boolean", ErrInvalidResponse, raw)
	}
	return status, nil
}
