// Package usage tracks per-request token consumption and the dollars it
// costs, priced from the synced model catalog.
package usage

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
)

// providerDefaults price unknown models per million tokens, keyed by
// provider. Used only when the catalog has no record for the model.
var providerDefaults = map[string][2]float64{
	"openai":    {1.0, 2.0},
	"anthropic": {3.0, 15.0},
	"google":    {1.0, 2.0},
	"ollama":    {0, 0},
}

// unknownProviderDefault prices models whose provider we have no table for.
var unknownProviderDefault = [2]float64{0.5, 1.0}

const tokensPerMillion = 1_000_000

// Summary aggregates tracked usage over a window.
type Summary struct {
	Days      int                        `json:"days"`
	TotalCost float64                    `json:"total_cost"`
	ByService map[string]model.ModelUsage `json:"by_service"`
}

type Service struct {
	logger *zap.Logger
	repo   store.Repository
}

func NewService(logger *zap.Logger, repo store.Repository) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
	}
}

// Track records one request's usage and returns the computed cost.
func (s *Service) Track(ctx context.Context, serviceName, modelString string, inputTokens, outputTokens int) (float64, error) {
	cost := s.cost(ctx, modelString, inputTokens, outputTokens)

	err := s.repo.Usage().Record(ctx, model.UsageRecord{
		ServiceName:  serviceName,
		ModelString:  modelString,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
	})
	if err != nil {
		return 0, err
	}
	return cost, nil
}

// cost prices a request from the catalog record's per-token prices, falling
// back to per-provider defaults for models we have never synced.
func (s *Service) cost(ctx context.Context, modelString string, inputTokens, outputTokens int) float64 {
	record, err := s.repo.Models().GetByString(ctx, modelString)
	if err != nil {
		s.logger.Warn("Failed to look up model for pricing",
			zap.String("model", modelString),
			zap.Error(err))
	}
	if record != nil {
		return float64(inputTokens)*record.InputCost + float64(outputTokens)*record.OutputCost
	}

	provider, _, _ := strings.Cut(modelString, ":")
	perMillion, ok := providerDefaults[provider]
	if !ok {
		perMillion = unknownProviderDefault
	}
	return float64(inputTokens)/tokensPerMillion*perMillion[0] +
		float64(outputTokens)/tokensPerMillion*perMillion[1]
}

// DailyCosts returns per-day totals for the last N days.
func (s *Service) DailyCosts(ctx context.Context, days int) ([]model.DailyCost, error) {
	return s.repo.Usage().DailyCosts(ctx, days)
}

// Summary aggregates usage by service over the last N days.
func (s *Service) Summary(ctx context.Context, days int) (Summary, error) {
	byService, err := s.repo.Usage().SummaryByService(ctx, days)
	if err != nil {
		return Summary{}, err
	}
	total, err := s.repo.Usage().TotalCost(ctx, days)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Days: days, TotalCost: total, ByService: byService}, nil
}

// EstimateMonthly projects a 30-day cost from the last basedOnDays of
// actual spend.
func (s *Service) EstimateMonthly(ctx context.Context, basedOnDays int) (float64, error) {
	if basedOnDays <= 0 {
		basedOnDays = 7
	}
	total, err := s.repo.Usage().TotalCost(ctx, basedOnDays)
	if err != nil {
		return 0, err
	}
	daysInMonth := 30.0
	return total / float64(basedOnDays) * daysInMonth, nil
}

// TopModels returns the most expensive models by total tracked cost.
func (s *Service) TopModels(ctx context.Context, limit int) ([]model.ModelUsage, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.Usage().TopModels(ctx, limit)
}
