package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"origination-engine/internal/domain/application"
)

// RiskScoreClient calls the external risk scoring service with the
// application's amount and the borrower's credit score.
type RiskScoreClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ application.RiskScorer = (*RiskScoreClient)(nil)

func NewRiskScoreClient(baseURL string, timeout time.Duration, logger *slog.Logger) *RiskScoreClient {
	return &RiskScoreClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "RiskScoreClient"),
	}
}

type riskScoreRequest struct {
	ApplicationID int64  `json:"applicationId"`
	Amount        string `json:"amount"`
	CreditScore   int    `json:"creditScore"`
}

type riskScoreResponse struct {
	Score int      `json:"score"`
	Level string   `json:"level"`
	Flags []string `json:"flags"`
}

func (c *RiskScoreClient) Score(ctx context.Context, applicationID int64, amount decimal.Decimal, creditScore int) (application.RiskAssessment, error) {
	if c.baseURL == "" {
		return application.RiskAssessment{}, fmt.Errorf("risk scoring service base URL is not configured")
	}

	body, err := json.Marshal(riskScoreRequest{
		ApplicationID: applicationID,
		Amount:        amount.StringFixed(2),
		CreditScore:   creditScore,
	})
	if err != nil {
		return application.RiskAssessment{}, fmt.Errorf("failed to marshal risk score request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/assessments", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return application.RiskAssessment{}, fmt.Errorf("failed to create risk score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return application.RiskAssessment{}, fmt.Errorf("failed to call risk scoring service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.WarnContext(ctx, "Risk scoring service returned error status", "status_code", resp.StatusCode, "application_id", applicationID)
		return application.RiskAssessment{}, fmt.Errorf("risk scoring service returned status %d", resp.StatusCode)
	}

	var payload riskScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return application.RiskAssessment{}, fmt.Errorf("failed to decode risk score response: %w", err)
	}

	assessment := application.RiskAssessment{
		Score: payload.Score,
		Level: application.RiskLevel(payload.Level),
		Flags: payload.Flags,
	}
	if err := assessment.Validate(); err != nil {
		return application.RiskAssessment{}, fmt.Errorf("risk scoring service returned invalid assessment: %w", err)
	}
	return assessment, nil
}
