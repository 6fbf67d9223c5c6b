package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calder-labs/provider-hub/internal/store/model"
)

type serviceRepo struct {
	db DB
}

const serviceOrder = ` ORDER BY category, service_type, display_name`

func (r *serviceRepo) GetAll(ctx context.Context, activeOnly bool) ([]model.ServiceEntry, error) {
	query := `SELECT * FROM service_registry`
	if activeOnly {
		query += ` WHERE is_active = 1 AND is_deprecated = 0`
	}
	var entries []model.ServiceEntry
	err := r.db.SelectContext(ctx, &entries, query+serviceOrder)
	return entries, err
}

func (r *serviceRepo) GetByName(ctx context.Context, serviceName string) (*model.ServiceEntry, error) {
	var entry model.ServiceEntry
	err := r.db.GetContext(ctx, &entry, `SELECT * FROM service_registry WHERE service_name = ?`, serviceName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *serviceRepo) Register(ctx context.Context, entry model.ServiceEntry) (string, error) {
	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.IsActive = true
	entry.FirstSeen = sql.NullTime{Time: now, Valid: true}
	entry.CreatedAt = now
	entry.UpdatedAt = now

	// Upsert by service_name; first_seen and created_at stick to the
	// original row on conflict.
	query := `
	INSERT INTO service_registry (
		id, service_name, display_name, description, icon,
		category, service_type, model_type, location,
		supports_temperature, supports_max_tokens,
		default_model, cost_profile, owner_team, contact_email, documentation_url,
		is_active, is_deprecated, first_seen, created_at, updated_at
	) VALUES (
		:id, :service_name, :display_name, :description, :icon,
		:category, :service_type, :model_type, :location,
		:supports_temperature, :supports_max_tokens,
		:default_model, :cost_profile, :owner_team, :contact_email, :documentation_url,
		:is_active, :is_deprecated, :first_seen, :created_at, :updated_at
	)
	ON CONFLICT(service_name) DO UPDATE SET
		display_name = excluded.display_name,
		description = excluded.description,
		icon = excluded.icon,
		category = excluded.category,
		service_type = excluded.service_type,
		model_type = excluded.model_type,
		location = excluded.location,
		supports_temperature = excluded.supports_temperature,
		supports_max_tokens = excluded.supports_max_tokens,
		default_model = excluded.default_model,
		cost_profile = excluded.cost_profile,
		owner_team = excluded.owner_team,
		contact_email = excluded.contact_email,
		documentation_url = excluded.documentation_url,
		is_active = 1,
		updated_at = excluded.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return "", err
	}

	// The stored id differs from the generated one when the row existed.
	var id string
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM service_registry WHERE service_name = ?`, entry.ServiceName); err != nil {
		return "", err
	}
	return id, nil
}

// metadataColumns is the set of columns UpdateMetadata may patch.
var metadataColumns = map[string]bool{
	"display_name":      true,
	"description":       true,
	"icon":              true,
	"location":          true,
	"default_model":     true,
	"cost_profile":      true,
	"owner_team":        true,
	"contact_email":     true,
	"documentation_url": true,
	"is_active":         true,
}

func (r *serviceRepo) UpdateMetadata(ctx context.Context, serviceName string, patch map[string]any) (bool, error) {
	if len(patch) == 0 {
		return false, nil
	}

	sets := make([]string, 0, len(patch)+1)
	args := make([]interface{}, 0, len(patch)+2)
	for col, val := range patch {
		if !metadataColumns[col] {
			return false, fmt.Errorf("column %q is not patchable", col)
		}
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), serviceName)

	query := `UPDATE service_registry SET ` + strings.Join(sets, ", ") + ` WHERE service_name = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *serviceRepo) Deprecate(ctx context.Context, serviceName, reason, replacement string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE service_registry
		SET is_deprecated = 1,
		    deprecation_reason = ?,
		    replacement_service = ?,
		    updated_at = ?
		WHERE service_name = ?`,
		reason, nullString(replacement), time.Now().UTC(), serviceName)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *serviceRepo) GetByCategory(ctx context.Context, category string, activeOnly bool) ([]model.ServiceEntry, error) {
	query := `SELECT * FROM service_registry WHERE category = ?`
	if activeOnly {
		query += ` AND is_active = 1 AND is_deprecated = 0`
	}
	var entries []model.ServiceEntry
	err := r.db.SelectContext(ctx, &entries, query+` ORDER BY service_type, display_name`, category)
	return entries, err
}

func (r *serviceRepo) GetUnregistered(ctx context.Context) ([]model.UnregisteredService, error) {
	var rows []model.UnregisteredService
	err := r.db.SelectContext(ctx, &rows, `
		SELECT mc.service_name, mc.model_string
		FROM model_configs mc
		LEFT JOIN service_registry sr ON sr.service_name = mc.service_name
		WHERE sr.service_name IS NULL
		ORDER BY mc.service_name`)
	return rows, err
}

func (r *serviceRepo) GetOrphaned(ctx context.Context) ([]model.ServiceEntry, error) {
	var entries []model.ServiceEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT sr.*
		FROM service_registry sr
		LEFT JOIN model_configs mc ON mc.service_name = sr.service_name
		WHERE mc.service_name IS NULL AND sr.is_active = 1
		ORDER BY sr.service_name`)
	return entries, err
}

func (r *serviceRepo) TouchLastUsed(ctx context.Context, serviceName string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE service_registry SET last_used = ?, updated_at = ? WHERE service_name = ?`,
		now, now, serviceName)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
