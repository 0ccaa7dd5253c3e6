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

type ActivateRequest struct {
	Key  string `json:"key"`
	HWID string `json:"hwid"`
}

type ActivateResponse struct {
	ExpiresAt   time.Time `json:"expires_at"`
	LicenseDays int       `json:"license_days"`
	SessionID   string    `json:"session_id"`
}

func ActivateKey(baseURL, key, hwid string) (*ActivateResponse, error) {
	reqBody := ActivateRequest{
		Key:  key,
		HWID: hwid,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", baseURL+"/api/v1/activate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error != "" {
			return nil, fmt.Errorf("activation failed: %s", failure.Error)
		}
		return nil, fmt.Errorf("activation failed: %s", resp.Status)
	}

	var result ActivateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}
