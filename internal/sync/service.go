// Package sync orchestrates catalog ingestion: fetch, convert, bulk upsert
// and staleness deactivation, per source.
package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/catalog"
	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
)

type Service struct {
	logger *zap.Logger
	repo   store.Repository
	source catalog.Source
}

func NewService(logger *zap.Logger, repo store.Repository, source catalog.Source) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
		source: source,
	}
}

// SyncFromRemote runs one pass against the remote aggregator: fetch,
// convert, bulk upsert, then deactivate every openrouter-sourced row the
// pass did not touch. Upstream and persistence failures come back as
// error-status reports, never as Go errors.
func (s *Service) SyncFromRemote(ctx context.Context, forceRefresh bool) Report {
	start := time.Now().UTC()
	s.logger.Info("Starting remote model sync", zap.Bool("force_refresh", forceRefresh))

	byProvider, err := s.source.FetchRemote(ctx, forceRefresh)
	if err != nil {
		s.logger.Error("Remote catalog fetch failed", zap.Error(err))
		return errorReport(start, fmt.Errorf("catalog fetch failed: %w", err))
	}

	records := catalog.ConvertAll(byProvider)

	synced, err := s.repo.Models().BulkUpsert(ctx, records, model.SourceOpenRouter)
	if err != nil {
		s.logger.Error("Model bulk upsert failed", zap.Error(err))
		return errorReport(start, fmt.Errorf("database sync failed: %w", err))
	}

	deactivated, err := s.repo.Models().DeactivateStale(ctx, model.SourceOpenRouter, start)
	if err != nil {
		s.logger.Error("Stale model deactivation failed", zap.Error(err))
		report := errorReport(start, fmt.Errorf("stale deactivation failed: %w", err))
		report.ModelsSynced = synced
		return report
	}

	duration := time.Since(start).Seconds()
	s.logger.Info("Remote sync completed",
		zap.Int("models_synced", synced),
		zap.Int("models_deactivated", deactivated),
		zap.Float64("duration_seconds", duration))

	return Report{
		Status:              StatusSuccess,
		ModelsSynced:        synced,
		ModelsDeactivated:   deactivated,
		TotalProviders:      len(byProvider),
		SyncDurationSeconds: duration,
		SyncTime:            start,
		ForcedRefresh:       forceRefresh,
	}
}

// SyncLocal upserts the fixed local model set. Local models never go stale,
// so there is no deactivation sweep.
func (s *Service) SyncLocal(ctx context.Context) Report {
	start := time.Now().UTC()
	s.logger.Info("Syncing local models")

	records := make([]model.ModelRecord, 0, len(catalog.LocalCatalog()))
	for _, raw := range catalog.LocalCatalog() {
		records = append(records, catalog.Convert(raw))
	}

	synced, err := s.repo.Models().BulkUpsert(ctx, records, model.SourceLocal)
	if err != nil {
		s.logger.Error("Local model sync failed", zap.Error(err))
		return errorReport(start, fmt.Errorf("local sync failed: %w", err))
	}

	s.logger.Info("Local model sync completed", zap.Int("models_synced", synced))
	return Report{
		Status:              StatusSuccess,
		ModelsSynced:        synced,
		SyncDurationSeconds: time.Since(start).Seconds(),
		SyncTime:            start,
	}
}

// FullSync runs the remote and local passes concurrently and merges their
// reports. A failure in either branch degrades the combined status to
// partial; it never cancels the sibling.
func (s *Service) FullSync(ctx context.Context, forceRefresh bool) FullReport {
	start := time.Now().UTC()
	s.logger.Info("Starting full model sync")

	remoteCh := make(chan Report, 1)
	localCh := make(chan Report, 1)

	go func() {
		remoteCh <- s.guarded(start, func() Report { return s.SyncFromRemote(ctx, forceRefresh) })
	}()
	go func() {
		localCh <- s.guarded(start, func() Report { return s.SyncLocal(ctx) })
	}()

	remote := <-remoteCh
	local := <-localCh

	status := StatusSuccess
	if remote.Status != StatusSuccess || local.Status != StatusSuccess {
		status = StatusPartial
	}

	combined := FullReport{
		Status:              status,
		TotalModelsSynced:   remote.ModelsSynced + local.ModelsSynced,
		ModelsDeactivated:   remote.ModelsDeactivated,
		RemoteResult:        remote,
		LocalResult:         local,
		SyncDurationSeconds: time.Since(start).Seconds(),
		SyncTime:            start,
	}

	if combined.Status == StatusSuccess {
		s.logger.Info("Full sync completed",
			zap.Int("total_models_synced", combined.TotalModelsSynced),
			zap.Int("models_deactivated", combined.ModelsDeactivated))
	} else {
		s.logger.Warn("Full sync completed with errors",
			zap.Int("total_models_synced", combined.TotalModelsSynced),
			zap.String("remote_status", remote.Status),
			zap.String("local_status", local.Status))
	}

	return combined
}

// guarded converts a panicking sub-sync into an error report so one branch
// can never take down its sibling.
func (s *Service) guarded(start time.Time, fn func() Report) (report Report) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sync pass panicked", zap.Any("panic", r))
			report = errorReport(start, fmt.Errorf("sync pass panicked: %v", r))
		}
	}()
	return fn()
}

// Status summarizes the persisted catalog. An empty database yields zeros,
// not an error.
func (s *Service) Status(ctx context.Context) (Status, error) {
	stats, err := s.repo.Models().ProviderStatistics(ctx)
	if err != nil {
		return Status{}, err
	}

	all, err := s.repo.Models().GetAll(ctx, false)
	if err != nil {
		return Status{}, err
	}

	active := 0
	for _, m := range all {
		if m.IsActive {
			active++
		}
	}

	return Status{
		TotalModels:    len(all),
		ActiveModels:   active,
		InactiveModels: len(all) - active,
		Providers:      stats,
		LastCheck:      time.Now().UTC(),
	}, nil
}

// ShouldSync reports whether any provider's data is older than maxAge, or
// whether there is no data at all. Errors count as "needs sync".
func (s *Service) ShouldSync(ctx context.Context, maxAge time.Duration) bool {
	stats, err := s.repo.Models().ProviderStatistics(ctx)
	if err != nil {
		s.logger.Error("Failed to check sync staleness", zap.Error(err))
		return true
	}

	if len(stats) == 0 {
		return true
	}

	cutoff := time.Now().UTC().Add(-maxAge)
	for _, providerStats := range stats {
		if !providerStats.LastSync.Valid {
			return true
		}
		if providerStats.LastSync.Time.Before(cutoff) {
			return true
		}
	}
	return false
}

// DeactivateModel flips a model inactive; false when unknown.
func (s *Service) DeactivateModel(ctx context.Context, modelString string) bool {
	return s.setActive(ctx, modelString, false)
}

// ReactivateModel flips a model active; false when unknown.
func (s *Service) ReactivateModel(ctx context.Context, modelString string) bool {
	return s.setActive(ctx, modelString, true)
}

func (s *Service) setActive(ctx context.Context, modelString string, active bool) bool {
	ok, err := s.repo.Models().SetActive(ctx, modelString, active)
	if err != nil {
		s.logger.Error("Failed to set model active state",
			zap.String("model", modelString),
			zap.Bool("active", active),
			zap.Error(err))
		return false
	}
	if !ok {
		s.logger.Warn("Model not found", zap.String("model", modelString))
	}
	return ok
}

// AddManualModel registers a hand-entered model under the manual source.
func (s *Service) AddManualModel(ctx context.Context, raw catalog.RawModel) bool {
	record := catalog.Convert(raw)
	record.Source = model.SourceManual

	if err := s.repo.Models().Upsert(ctx, record); err != nil {
		s.logger.Error("Failed to add manual model",
			zap.String("model", record.ModelString),
			zap.Error(err))
		return false
	}

	s.logger.Info("Manually added model", zap.String("model", record.ModelString))
	return true
}

// AvailableForProviders returns active models restricted to the given
// providers (those with usable credentials).
func (s *Service) AvailableForProviders(ctx context.Context, providers []string) ([]model.ModelRecord, error) {
	return s.repo.Models().GetForProviders(ctx, providers)
}
