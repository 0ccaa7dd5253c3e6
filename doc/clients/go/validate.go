// sample implementation, do not build or test
//go:build ignore

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type ValidateRequest struct {
	Key       string `json:"key,omitempty"`
	HWID      string `json:"hwid,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type ValidateResponse struct {
	Valid     bool      `json:"valid"`
	ExpiresAt time.Time `json:"expires_at"`
	Error     string    `json:"error"`
}

// ValidateKey checks a key against the HWID it was activated on.
func ValidateKey(baseURL, key, hwid string) (*ValidateResponse, error) {
	return validate(baseURL, ValidateRequest{Key: key, HWID: hwid})
}

// ValidateSession checks a session token minted during activation.
// Session validation skips the HWID check.
func ValidateSession(baseURL, sessionID string) (*ValidateResponse, error) {
	return validate(baseURL, ValidateRequest{SessionID: sessionID})
}

func validate(baseURL string, reqBody ValidateRequest) (*ValidateResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", baseURL+"/api/v1/validate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	// The server answers invalid licenses with 403 and a reason string,
	// which is still a well-formed verdict for the caller.
	var result ValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusForbidden {
		return nil, fmt.Errorf("validation failed: %s", resp.Status)
	}

	return &result, nil
}
