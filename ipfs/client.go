// Copyright 2025 Agrilink Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the HTTP API of an IPFS node (Kubo or a
// compatible pinning gateway). All endpoints use POST per the
// Kubo RPC convention.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
}

// ClientConfig holds the IPFS client configuration.
type ClientConfig struct {
	Logger *slog.Logger
	// Endpoint is the base URL of the IPFS HTTP API, e.g.
	// http://localhost:5001
	Endpoint string
	Timeout  time.Duration
}

// NewClient creates an IPFS API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		logger: cfg.Logger.With("component", "ipfs"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimSuffix(cfg.Endpoint, "/"),
	}
}

// AddResponse is the response from /api/v0/add.
type AddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// AddJSON serializes v to JSON and adds it to IPFS, returning
// the resulting CID.
func (c *Client) AddJSON(
	ctx context.Context,
	v any,
) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf(
			"marshal IPFS payload: %w",
			err,
		)
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "metadata.json")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(payload); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/v0/add?cid-version=1",
		&body,
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("IPFS add: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError("add", resp)
	}
	var addResp AddResponse
	if err := json.NewDecoder(resp.Body).Decode(&addResp); err != nil {
		return "", fmt.Errorf(
			"decode IPFS add response: %w",
			err,
		)
	}
	c.logger.Debug(
		"added content to IPFS",
		"cid", addResp.Hash,
		"size", addResp.Size,
	)
	return addResp.Hash, nil
}

// Pin pins the given CID so the IPFS node retains it.
func (c *Client) Pin(ctx context.Context, cid string) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/v0/pin/add?arg="+url.QueryEscape(cid),
		nil,
	)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("IPFS pin: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("pin", resp)
	}
	// Drain so the connection can be reused
	//nolint:errcheck
	io.Copy(io.Discard, resp.Body)
	c.logger.Debug("pinned content", "cid", cid)
	return nil
}

// CatJSON fetches the content behind cid and unmarshals it
// into out.
func (c *Client) CatJSON(
	ctx context.Context,
	cid string,
	out any,
) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/v0/cat?arg="+url.QueryEscape(cid),
		nil,
	)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("IPFS cat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("cat", resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf(
			"decode IPFS content %s: %w",
			cid,
			err,
		)
	}
	return nil
}

func apiError(op string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf(
		"IPFS %s failed: status %d: %s",
		op,
		resp.StatusCode,
		strings.TrimSpace(string(msg)),
	)
}
