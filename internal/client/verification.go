package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"origination-engine/internal/domain/kyc"
)

// VerificationClient calls the external document verification service. The
// service answers with the document's current verification state; the caller
// decides what that state means for the KYC gate.
type VerificationClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ kyc.VerificationClient = (*VerificationClient)(nil)

func NewVerificationClient(baseURL string, timeout time.Duration, logger *slog.Logger) *VerificationClient {
	return &VerificationClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "VerificationClient"),
	}
}

type verificationResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (c *VerificationClient) CheckDocument(ctx context.Context, documentID int64) (kyc.DocumentStatus, string, error) {
	if c.baseURL == "" {
		return "", "", fmt.Errorf("verification service base URL is not configured")
	}

	url := fmt.Sprintf("%s/v1/documents/%d/verification", c.baseURL, documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create verification request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to call verification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.WarnContext(ctx, "Verification service returned error status", "status_code", resp.StatusCode, "document_id", documentID)
		return "", "", fmt.Errorf("verification service returned status %d", resp.StatusCode)
	}

	var payload verificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", fmt.Errorf("failed to decode verification response: %w", err)
	}

	switch kyc.DocumentStatus(payload.Status) {
	case kyc.DocumentPending, kyc.DocumentVerified, kyc.DocumentRejected:
		return kyc.DocumentStatus(payload.Status), payload.Reason, nil
	}
	return "", "", fmt.Errorf("verification service returned unknown status %q", payload.Status)
}
