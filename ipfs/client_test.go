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

package ipfs_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilink-io/sarson/ipfs"
)

const testCID = "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy"

func newTestClient(handler http.Handler) (*ipfs.Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := ipfs.NewClient(ipfs.ClientConfig{
		Endpoint: srv.URL,
	})
	return client, srv
}

func TestAddJSON(t *testing.T) {
	var gotPayload []byte
	client, srv := newTestClient(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v0/add", r.URL.Path)
			require.Equal(
				t,
				"1",
				r.URL.Query().Get("cid-version"),
			)
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "metadata.json", header.Filename)
			gotPayload, err = io.ReadAll(file)
			require.NoError(t, err)
			//nolint:errcheck
			json.NewEncoder(w).Encode(ipfs.AddResponse{
				Name: header.Filename,
				Hash: testCID,
				Size: "123",
			})
		},
	))
	defer srv.Close()

	cid, err := client.AddJSON(t.Context(), map[string]any{
		"batch_hash": "abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, testCID, cid)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(gotPayload, &doc))
	assert.Equal(t, "abc123", doc["batch_hash"])
}

func TestAddJSONServerError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(
				w,
				"node is offline",
				http.StatusInternalServerError,
			)
		},
	))
	defer srv.Close()

	_, err := client.AddJSON(t.Context(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "node is offline")
}

func TestAddJSONUnserializable(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatalf("unexpected request to IPFS API")
		},
	))
	defer srv.Close()

	_, err := client.AddJSON(t.Context(), make(chan int))
	require.Error(t, err)
}

func TestPin(t *testing.T) {
	var gotArg string
	client, srv := newTestClient(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v0/pin/add", r.URL.Path)
			gotArg = r.URL.Query().Get("arg")
			//nolint:errcheck
			w.Write([]byte(`{"Pins":["` + testCID + `"]}`))
		},
	))
	defer srv.Close()

	require.NoError(t, client.Pin(t.Context(), testCID))
	assert.Equal(t, testCID, gotArg)
}

func TestPinError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unknown CID", http.StatusBadRequest)
		},
	))
	defer srv.Close()

	err := client.Pin(t.Context(), testCID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestCatJSON(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v0/cat", r.URL.Path)
			require.Equal(
				t,
				testCID,
				r.URL.Query().Get("arg"),
			)
			//nolint:errcheck
			w.Write([]byte(`{"farmer_did":"did:farmer:x"}`))
		},
	))
	defer srv.Close()

	var doc map[string]string
	require.NoError(
		t,
		client.CatJSON(t.Context(), testCID, &doc),
	)
	assert.Equal(t, "did:farmer:x", doc["farmer_did"])
}

func TestCatJSONInvalidBody(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			//nolint:errcheck
			w.Write([]byte("not json"))
		},
	))
	defer srv.Close()

	var doc map[string]string
	err := client.CatJSON(t.Context(), testCID, &doc)
	require.Error(t, err)
}

func TestEndpointTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v0/pin/add", r.URL.Path)
			//nolint:errcheck
			w.Write([]byte(`{}`))
		},
	))
	defer srv.Close()

	client := ipfs.NewClient(ipfs.ClientConfig{
		Endpoint: srv.URL + "/",
	})
	require.NoError(t, client.Pin(t.Context(), testCID))
}
