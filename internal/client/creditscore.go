package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"origination-engine/internal/domain/application"
)

const creditScoreKeyPrefix = "creditscore:profile:"

// CreditScoreClient fetches borrower credit scores from the external bureau
// proxy, with a Redis read-through cache in front. A cache outage degrades to
// a direct bureau call.
type CreditScoreClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	ttl        time.Duration
	logger     *slog.Logger
}

var _ application.CreditScoreProvider = (*CreditScoreClient)(nil)

func NewCreditScoreClient(baseURL string, timeout time.Duration, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *CreditScoreClient {
	return &CreditScoreClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		ttl:        ttl,
		logger:     logger.With("component", "CreditScoreClient"),
	}
}

type creditScoreResponse struct {
	Score int `json:"score"`
}

func (c *CreditScoreClient) CreditScore(ctx context.Context, borrowerID int64) (int, error) {
	key := creditScoreKeyPrefix + strconv.FormatInt(borrowerID, 10)

	if c.cache != nil {
		cached, err := c.cache.Get(ctx, key).Result()
		if err == nil {
			if score, convErr := strconv.Atoi(cached); convErr == nil {
				return score, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Credit score cache read failed, falling through to bureau", "borrower_id", borrowerID, "error", err)
		}
	}

	score, err := c.fetchScore(ctx, borrowerID)
	if err != nil {
		return 0, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, strconv.Itoa(score), c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "Failed to cache credit score", "borrower_id", borrowerID, "error", err)
		}
	}
	return score, nil
}

func (c *CreditScoreClient) fetchScore(ctx context.Context, borrowerID int64) (int, error) {
	if c.baseURL == "" {
		return 0, fmt.Errorf("credit score service base URL is not configured")
	}

	url := fmt.Sprintf("%s/v1/borrowers/%d/credit-score", c.baseURL, borrowerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create credit score request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call credit score service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.WarnContext(ctx, "Credit score service returned error status", "status_code", resp.StatusCode, "borrower_id", borrowerID)
		return 0, fmt.Errorf("credit score service returned status %d", resp.StatusCode)
	}

	var payload creditScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode credit score response: %w", err)
	}
	return payload.Score, nil
}
