// Package registry manages the catalog of services and agents consuming
// models, and keeps it converged with observed model configuration.
package registry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
)

// Reconciliation outcome statuses.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusClean       = "clean"
	StatusIssuesFound = "issues_found"
)

// deprecatedUseWindow is how recently a deprecated service must have been
// used to count as a validation issue.
const deprecatedUseWindow = 7 * 24 * time.Hour

// Registration is the input for registering or updating a service.
type Registration struct {
	ServiceName         string
	DisplayName         string
	Description         string
	Icon                string
	Category            string
	ServiceType         string
	ModelType           string
	Location            string
	SupportsTemperature bool
	SupportsMaxTokens   bool
	DefaultModel        string
	CostProfile         string
	OwnerTeam           string
	ContactEmail        string
	DocumentationURL    string
}

// ReconcileReport is the outcome of one registry reconciliation pass.
type ReconcileReport struct {
	Status             string    `json:"status"`
	Error              string    `json:"error,omitempty"`
	ServicesDiscovered int       `json:"services_discovered"`
	ServicesRegistered int       `json:"services_registered"`
	SyncTime           time.Time `json:"sync_time"`
}

// DeprecatedUsage flags a deprecated service with recent traffic.
type DeprecatedUsage struct {
	ServiceName string    `json:"service_name"`
	DisplayName string    `json:"display_name"`
	LastUsed    time.Time `json:"last_used"`
	Replacement string    `json:"replacement,omitempty"`
}

// ValidationReport is the read-only registry audit result.
type ValidationReport struct {
	Status               string                      `json:"status"`
	Issues               []string                    `json:"issues"`
	Warnings             []string                    `json:"warnings"`
	UnregisteredServices []model.UnregisteredService `json:"unregistered_services"`
	OrphanedEntries      []model.ServiceEntry        `json:"orphaned_entries"`
	DeprecatedStillUsed  []DeprecatedUsage           `json:"deprecated_still_used"`
	ValidationTime       time.Time                   `json:"validation_time"`
}

// Statistics summarizes the registry's composition.
type Statistics struct {
	TotalServices         int            `json:"total_services"`
	ActiveServices        int            `json:"active_services"`
	DeprecatedServices    int            `json:"deprecated_services"`
	Agents                int            `json:"agents"`
	BackendServices       int            `json:"backend_services"`
	UnregisteredServices  int            `json:"unregistered_services"`
	OrphanedEntries       int            `json:"orphaned_registry_entries"`
	ServicesByTeam        map[string]int `json:"services_by_team"`
	ServicesByCostProfile map[string]int `json:"services_by_cost_profile"`
	LastCheck             time.Time      `json:"last_check"`
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

// Register upserts a service entry and returns the stored row.
func (s *Service) Register(ctx context.Context, reg Registration) (*model.ServiceEntry, error) {
	if reg.CostProfile == "" {
		reg.CostProfile = "medium"
	}
	if reg.Location == "" {
		reg.Location = "main_server"
	}

	entry := model.ServiceEntry{
		ServiceName:         reg.ServiceName,
		DisplayName:         reg.DisplayName,
		Description:         reg.Description,
		Icon:                reg.Icon,
		Category:            reg.Category,
		ServiceType:         reg.ServiceType,
		ModelType:           reg.ModelType,
		Location:            reg.Location,
		SupportsTemperature: reg.SupportsTemperature,
		SupportsMaxTokens:   reg.SupportsMaxTokens,
		DefaultModel:        reg.DefaultModel,
		CostProfile:         reg.CostProfile,
		OwnerTeam:           reg.OwnerTeam,
		ContactEmail:        reg.ContactEmail,
		DocumentationURL:    reg.DocumentationURL,
	}

	if _, err := s.repo.Services().Register(ctx, entry); err != nil {
		s.logger.Error("Failed to register service",
			zap.String("service", reg.ServiceName),
			zap.Error(err))
		return nil, err
	}

	return s.repo.Services().GetByName(ctx, reg.ServiceName)
}

// Get returns nil when the service is unknown.
func (s *Service) Get(ctx context.Context, serviceName string) (*model.ServiceEntry, error) {
	return s.repo.Services().GetByName(ctx, serviceName)
}

// GetAll lists services, optionally restricted to one category.
func (s *Service) GetAll(ctx context.Context, activeOnly bool, category string) ([]model.ServiceEntry, error) {
	if category != "" {
		return s.repo.Services().GetByCategory(ctx, category, activeOnly)
	}
	return s.repo.Services().GetAll(ctx, activeOnly)
}

func (s *Service) Agents(ctx context.Context, activeOnly bool) ([]model.ServiceEntry, error) {
	return s.repo.Services().GetByCategory(ctx, model.CategoryAgent, activeOnly)
}

func (s *Service) BackendServices(ctx context.Context, activeOnly bool) ([]model.ServiceEntry, error) {
	return s.repo.Services().GetByCategory(ctx, model.CategoryService, activeOnly)
}

// Deprecate soft-deprecates a service; false when unknown.
func (s *Service) Deprecate(ctx context.Context, serviceName, reason, replacement string) bool {
	ok, err := s.repo.Services().Deprecate(ctx, serviceName, reason, replacement)
	if err != nil {
		s.logger.Error("Failed to deprecate service",
			zap.String("service", serviceName),
			zap.Error(err))
		return false
	}
	if ok {
		s.logger.Info("Deprecated service",
			zap.String("service", serviceName),
			zap.String("reason", reason))
	} else {
		s.logger.Warn("Service not found for deprecation", zap.String("service", serviceName))
	}
	return ok
}

// UpdateDefaultModel keeps the registry's cached default_model aligned with
// a changed model configuration. Best-effort: failures are logged, never
// returned to the configuration write that triggered this.
func (s *Service) UpdateDefaultModel(ctx context.Context, serviceName, modelString string) bool {
	ok, err := s.repo.Services().UpdateMetadata(ctx, serviceName, map[string]any{
		"default_model": modelString,
	})
	if err != nil {
		s.logger.Warn("Failed to update default model in registry",
			zap.String("service", serviceName),
			zap.Error(err))
		return false
	}
	return ok
}

// TouchLastUsed stamps usage on a service. Failures are only logged; usage
// tracking must never fail a request.
func (s *Service) TouchLastUsed(ctx context.Context, serviceName string) {
	if err := s.repo.Services().TouchLastUsed(ctx, serviceName); err != nil {
		s.logger.Warn("Failed to update last_used",
			zap.String("service", serviceName),
			zap.Error(err))
	}
}

// SyncWithModelConfigs is the self-healing pass: every service with a model
// configuration but no registry entry is classified from its name and
// registered. One failed registration is logged and skipped, not fatal to
// the batch.
func (s *Service) SyncWithModelConfigs(ctx context.Context) ReconcileReport {
	now := time.Now().UTC()

	unregistered, err := s.repo.Services().GetUnregistered(ctx)
	if err != nil {
		s.logger.Error("Failed to discover unregistered services", zap.Error(err))
		return ReconcileReport{Status: StatusError, Error: err.Error(), SyncTime: now}
	}

	registered := 0
	for _, svc := range unregistered {
		class := Classify(svc.ServiceName, svc.ModelString)

		reg := Registration{
			ServiceName:         svc.ServiceName,
			DisplayName:         displayName(svc.ServiceName),
			Description:         "Auto-discovered using " + svc.ModelString,
			Icon:                class.Icon,
			Category:            class.Category,
			ServiceType:         class.ServiceType,
			ModelType:           class.ModelType,
			Location:            class.Location,
			SupportsTemperature: class.SupportsTemperature,
			SupportsMaxTokens:   class.SupportsMaxTokens,
			DefaultModel:        svc.ModelString,
			CostProfile:         "medium",
			OwnerTeam:           "auto-discovered",
		}

		if _, err := s.Register(ctx, reg); err != nil {
			s.logger.Error("Failed to auto-register service",
				zap.String("service", svc.ServiceName),
				zap.Error(err))
			continue
		}
		registered++
	}

	s.logger.Info("Registry reconciliation completed",
		zap.Int("services_discovered", len(unregistered)),
		zap.Int("services_registered", registered))

	return ReconcileReport{
		Status:             StatusSuccess,
		ServicesDiscovered: len(unregistered),
		ServicesRegistered: registered,
		SyncTime:           now,
	}
}

// ValidateCompleteness audits registry drift without mutating anything.
func (s *Service) ValidateCompleteness(ctx context.Context) ValidationReport {
	now := time.Now().UTC()
	report := ValidationReport{
		Status:         StatusClean,
		Issues:         []string{},
		Warnings:       []string{},
		ValidationTime: now,
	}

	unregistered, err := s.repo.Services().GetUnregistered(ctx)
	if err != nil {
		return ValidationReport{Status: StatusError, Issues: []string{err.Error()}, ValidationTime: now}
	}
	report.UnregisteredServices = unregistered

	orphaned, err := s.repo.Services().GetOrphaned(ctx)
	if err != nil {
		return ValidationReport{Status: StatusError, Issues: []string{err.Error()}, ValidationTime: now}
	}
	report.OrphanedEntries = orphaned

	all, err := s.repo.Services().GetAll(ctx, false)
	if err != nil {
		return ValidationReport{Status: StatusError, Issues: []string{err.Error()}, ValidationTime: now}
	}

	cutoff := now.Add(-deprecatedUseWindow)
	for _, entry := range all {
		if entry.IsDeprecated && entry.LastUsed.Valid && entry.LastUsed.Time.After(cutoff) {
			report.DeprecatedStillUsed = append(report.DeprecatedStillUsed, DeprecatedUsage{
				ServiceName: entry.ServiceName,
				DisplayName: entry.DisplayName,
				LastUsed:    entry.LastUsed.Time,
				Replacement: entry.ReplacementService.String,
			})
		}
	}

	if n := len(unregistered); n > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d services have model configs but no registry entries", n))
	}
	if n := len(orphaned); n > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d registry entries have no model configurations", n))
	}
	if n := len(report.DeprecatedStillUsed); n > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d deprecated services still being used", n))
	}

	if len(report.Issues) > 0 || len(report.Warnings) > 0 {
		report.Status = StatusIssuesFound
	}
	return report
}

// Statistics summarizes counts by category, team and cost profile, plus
// drift indicators.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	all, err := s.repo.Services().GetAll(ctx, false)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		TotalServices:         len(all),
		ServicesByTeam:        make(map[string]int),
		ServicesByCostProfile: make(map[string]int),
		LastCheck:             time.Now().UTC(),
	}

	for _, entry := range all {
		if entry.IsDeprecated {
			stats.DeprecatedServices++
			continue
		}
		if !entry.IsActive {
			continue
		}
		stats.ActiveServices++
		switch entry.Category {
		case model.CategoryAgent:
			stats.Agents++
		case model.CategoryService:
			stats.BackendServices++
		}

		team := entry.OwnerTeam
		if team == "" {
			team = "unassigned"
		}
		stats.ServicesByTeam[team]++

		profile := entry.CostProfile
		if profile == "" {
			profile = "unknown"
		}
		stats.ServicesByCostProfile[profile]++
	}

	if unregistered, err := s.repo.Services().GetUnregistered(ctx); err == nil {
		stats.UnregisteredServices = len(unregistered)
	}
	if orphaned, err := s.repo.Services().GetOrphaned(ctx); err == nil {
		stats.OrphanedEntries = len(orphaned)
	}

	return stats, nil
}
