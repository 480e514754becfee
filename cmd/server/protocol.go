// Package main provides a TCP fingerprinting server for sqlfp.
package main

import (
	"encoding/json"
	"strings"

	"github.com/nickyhof/sqlfp/catalog"
)

// Request asks for one statement to be fingerprinted. Empty Dialect and
// Placeholder use the server defaults.
type Request struct {
	SQL         string `json:"sql"`
	Dialect     string `json:"dialect,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Record      bool   `json:"record,omitempty"`
}

// Response is written as one JSON line per request.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Kind    string          `json:"kind,omitempty"` // error kind: "configuration", "syntax", "empty"
	Type    string          `json:"type,omitempty"` // "fingerprint", "auth", "entry", "entries" or "history"
	Result  json.RawMessage `json:"result,omitempty"`
}

// FingerprintResponse is the result of a fingerprint request.
type FingerprintResponse struct {
	Original   string         `json:"original"`
	Normalized string         `json:"normalized"`
	Hash       string         `json:"hash"`
	Params     []string       `json:"params"`
	Entry      *catalog.Entry `json:"entry,omitempty"`
	TimeMs     float64        `json:"time_ms"`
}

// AuthResponse contains authentication results.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity,omitempty"`
	ExpiresIn     int    `json:"expires_in,omitempty"` // seconds
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest reads a line as a JSON request when it looks like an object
// and as bare SQL otherwise.
func DecodeRequest(line string) (Request, error) {
	if !strings.HasPrefix(line, "{") {
		return Request{SQL: line}, nil
	}
	var req Request
	err := json.Unmarshal([]byte(line), &req)
	return req, err
}
