package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calder-labs/provider-hub/internal/store/model"
)

type configRepo struct {
	db DB
}

func (r *configRepo) Get(ctx context.Context, serviceName string) (*model.ModelConfig, error) {
	var cfg model.ModelConfig
	err := r.db.GetContext(ctx, &cfg, `SELECT * FROM model_configs WHERE service_name = ?`, serviceName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *configRepo) GetAll(ctx context.Context) ([]model.ModelConfig, error) {
	var cfgs []model.ModelConfig
	err := r.db.SelectContext(ctx, &cfgs, `SELECT * FROM model_configs ORDER BY service_name`)
	return cfgs, err
}

func (r *configRepo) Save(ctx context.Context, cfg model.ModelConfig) (*model.ModelConfig, error) {
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	query := `
	INSERT INTO model_configs (service_name, model_string, temperature, max_tokens, created_at, updated_at)
	VALUES (:service_name, :model_string, :temperature, :max_tokens, :created_at, :updated_at)
	ON CONFLICT(service_name) DO UPDATE SET
		model_string = excluded.model_string,
		temperature = excluded.temperature,
		max_tokens = excluded.max_tokens,
		updated_at = excluded.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return nil, err
	}
	return r.Get(ctx, cfg.ServiceName)
}

func (r *configRepo) Delete(ctx context.Context, serviceName string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM model_configs WHERE service_name = ?`, serviceName)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

type credentialRepo struct {
	db DB
}

func (r *credentialRepo) Get(ctx context.Context, provider string) (*model.ProviderCredential, error) {
	var cred model.ProviderCredential
	err := r.db.GetContext(ctx, &cred, `SELECT * FROM provider_credentials WHERE provider = ?`, provider)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) Save(ctx context.Context, cred model.ProviderCredential) error {
	now := time.Now().UTC()
	cred.IsActive = true
	cred.CreatedAt = now
	cred.UpdatedAt = now

	query := `
	INSERT INTO provider_credentials (provider, sealed_key, key_hint, base_url, is_active, created_at, updated_at)
	VALUES (:provider, :sealed_key, :key_hint, :base_url, :is_active, :created_at, :updated_at)
	ON CONFLICT(provider) DO UPDATE SET
		sealed_key = excluded.sealed_key,
		key_hint = excluded.key_hint,
		base_url = excluded.base_url,
		is_active = 1,
		updated_at = excluded.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, cred)
	return err
}

func (r *credentialRepo) Deactivate(ctx context.Context, provider string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE provider_credentials SET is_active = 0, updated_at = ? WHERE provider = ?`,
		time.Now().UTC(), provider)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *credentialRepo) ActiveProviders(ctx context.Context) ([]string, error) {
	var providers []string
	err := r.db.SelectContext(ctx, &providers, `
		SELECT provider FROM provider_credentials WHERE is_active = 1 ORDER BY provider`)
	return providers, err
}

type usageRepo struct {
	db DB
}

func (r *usageRepo) Record(ctx context.Context, rec model.UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query := `
	INSERT INTO usage_records (id, service_name, model_string, input_tokens, output_tokens, cost, created_at)
	VALUES (:id, :service_name, :model_string, :input_tokens, :output_tokens, :cost, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, rec)
	return err
}

func (r *usageRepo) DailyCosts(ctx context.Context, days int) ([]model.DailyCost, error) {
	var costs []model.DailyCost
	// SQLite date offset format is '-7 days'
	err := r.db.SelectContext(ctx, &costs, `
		SELECT
			DATE(created_at) AS date,
			COUNT(*) AS total_requests,
			SUM(input_tokens + output_tokens) AS total_tokens,
			SUM(cost) AS total_cost
		FROM usage_records
		WHERE created_at >= DATE('now', ?)
		GROUP BY date
		ORDER BY date DESC`,
		fmt.Sprintf("-%d days", days))
	return costs, err
}

func (r *usageRepo) SummaryByService(ctx context.Context, days int) (map[string]model.ModelUsage, error) {
	var rows []struct {
		ServiceName string `db:"service_name"`
		model.ModelUsage
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT
			service_name,
			model_string,
			COUNT(*) AS total_requests,
			SUM(input_tokens + output_tokens) AS total_tokens,
			SUM(cost) AS total_cost
		FROM usage_records
		WHERE created_at >= DATE('now', ?)
		GROUP BY service_name, model_string
		ORDER BY total_cost DESC`,
		fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, err
	}

	summary := make(map[string]model.ModelUsage, len(rows))
	for _, row := range rows {
		agg := summary[row.ServiceName]
		agg.ModelString = row.ModelString
		agg.TotalRequests += row.TotalRequests
		agg.TotalTokens += row.TotalTokens
		agg.TotalCost += row.TotalCost
		summary[row.ServiceName] = agg
	}
	return summary, nil
}

func (r *usageRepo) TopModels(ctx context.Context, limit int) ([]model.ModelUsage, error) {
	var usage []model.ModelUsage
	err := r.db.SelectContext(ctx, &usage, `
		SELECT
			model_string,
			COUNT(*) AS total_requests,
			SUM(input_tokens + output_tokens) AS total_tokens,
			SUM(cost) AS total_cost
		FROM usage_records
		GROUP BY model_string
		ORDER BY total_cost DESC
		LIMIT ?`, limit)
	return usage, err
}

func (r *usageRepo) TotalCost(ctx context.Context, days int) (float64, error) {
	var total sql.NullFloat64
	err := r.db.GetContext(ctx, &total, `
		SELECT SUM(cost) FROM usage_records WHERE created_at >= DATE('now', ?)`,
		fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}
