package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"LiquiMind/internal/model"
)

// IPFSStore talks to a Kubo node over its HTTP RPC API.
type IPFSStore struct {
	APIURL string
	Client *http.Client
}

// NewIPFSStore creates a store for the node at apiURL, e.g. http://127.0.0.1:5001.
func NewIPFSStore(apiURL string) *IPFSStore {
	return &IPFSStore{
		APIURL: strings.TrimRight(apiURL, "/"),
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *IPFSStore) Name() string { return "ipfs" }

type ipfsAddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Put adds data with CIDv1 so the id is a pure function of the bytes.
func (s *IPFSStore) Put(ctx context.Context, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "metadata.json")
	if err != nil {
		return "", fmt.Errorf("ipfs add: build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("ipfs add: build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("ipfs add: build form: %w", err)
	}

	endpoint := s.APIURL + "/api/v0/add?cid-version=1&pin=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ipfs add: %w", model.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: ipfs add: status %d, body: %s", model.ErrCollaboratorUnavailable, resp.StatusCode, string(respBody))
	}
	var out ipfsAddResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ipfs add: decode: %w", err)
	}
	if out.Hash == "" {
		return "", fmt.Errorf("ipfs add: empty hash in response")
	}
	return out.Hash, nil
}

func (s *IPFSStore) Get(ctx context.Context, id string) ([]byte, error) {
	endpoint := s.APIURL + "/api/v0/cat?arg=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ipfs cat: %w", model.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ipfs cat: status %d, body: %s", model.ErrCollaboratorUnavailable, resp.StatusCode, string(respBody))
	}
	return io.ReadAll(resp.Body)
}
