package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
)

// bulkChunkSize bounds the number of rows per multi-row insert so the
// statement stays under sqlite's bind-variable limit.
const bulkChunkSize = 500

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	// Create a repository instance that uses the transaction
	txRepo := &SqliteRepository{
		db:       r.db, // Keep the original DB handle
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Models() store.ModelRepository {
	return &modelRepo{db: r.executor}
}

func (r *SqliteRepository) Services() store.ServiceRepository {
	return &serviceRepo{db: r.executor}
}

func (r *SqliteRepository) Configs() store.ConfigRepository {
	return &configRepo{db: r.executor}
}

func (r *SqliteRepository) Credentials() store.CredentialRepository {
	return &credentialRepo{db: r.executor}
}

func (r *SqliteRepository) Usage() store.UsageRepository {
	return &usageRepo{db: r.executor}
}

type modelRepo struct {
	db DB
}

const modelUpsertQuery = `
	INSERT INTO model_records (
		provider, model_id, model_string, display_name, description,
		context_length, input_cost, output_cost,
		supports_vision, supports_tools, supports_reasoning,
		is_embedding, is_free, cost_tier, source, is_active,
		last_updated, created_at
	) VALUES (
		:provider, :model_id, :model_string, :display_name, :description,
		:context_length, :input_cost, :output_cost,
		:supports_vision, :supports_tools, :supports_reasoning,
		:is_embedding, :is_free, :cost_tier, :source, :is_active,
		:last_updated, :created_at
	)
	ON CONFLICT(provider, model_id) DO UPDATE SET
		model_string = excluded.model_string,
		display_name = excluded.display_name,
		description = excluded.description,
		context_length = excluded.context_length,
		input_cost = excluded.input_cost,
		output_cost = excluded.output_cost,
		supports_vision = excluded.supports_vision,
		supports_tools = excluded.supports_tools,
		supports_reasoning = excluded.supports_reasoning,
		is_embedding = excluded.is_embedding,
		is_free = excluded.is_free,
		cost_tier = excluded.cost_tier,
		source = excluded.source,
		is_active = 1,
		last_updated = excluded.last_updated`

func (r *modelRepo) BulkUpsert(ctx context.Context, records []model.ModelRecord, source string) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([]model.ModelRecord, len(records))
	for i, rec := range records {
		rec.Source = source
		rec.IsActive = true
		rec.LastUpdated = now
		rec.CreatedAt = now
		rows[i] = rec
	}

	// One multi-row statement per chunk; sqlx expands the named binds for
	// the whole slice.
	synced := 0
	for start := 0; start < len(rows); start += bulkChunkSize {
		end := start + bulkChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := r.db.NamedExecContext(ctx, modelUpsertQuery, rows[start:end]); err != nil {
			return synced, fmt.Errorf("bulk upsert failed: %w", err)
		}
		synced += end - start
	}

	return synced, nil
}

func (r *modelRepo) Upsert(ctx context.Context, record model.ModelRecord) error {
	now := time.Now().UTC()
	record.IsActive = true
	record.LastUpdated = now
	record.CreatedAt = now
	_, err := r.db.NamedExecContext(ctx, modelUpsertQuery, record)
	return err
}

func (r *modelRepo) DeactivateStale(ctx context.Context, source string, syncStartedAt time.Time) (int, error) {
	// Only rows of this source, and only rows the current pass did not
	// touch. Rows refreshed by the pass carry last_updated >= syncStartedAt.
	res, err := r.db.ExecContext(ctx, `
		UPDATE model_records
		SET is_active = 0
		WHERE source = ? AND is_active = 1 AND last_updated < ?`,
		source, syncStartedAt.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

const modelOrder = ` ORDER BY provider, cost_tier, display_name`

func (r *modelRepo) GetAll(ctx context.Context, activeOnly bool) ([]model.ModelRecord, error) {
	query := `SELECT * FROM model_records`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	var records []model.ModelRecord
	err := r.db.SelectContext(ctx, &records, query+modelOrder)
	return records, err
}

func (r *modelRepo) GetByProvider(ctx context.Context, provider string, activeOnly bool) ([]model.ModelRecord, error) {
	query := `SELECT * FROM model_records WHERE provider = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	var records []model.ModelRecord
	err := r.db.SelectContext(ctx, &records, query+` ORDER BY cost_tier, display_name`, provider)
	return records, err
}

func (r *modelRepo) GetByType(ctx context.Context, isEmbedding bool, activeOnly bool) ([]model.ModelRecord, error) {
	query := `SELECT * FROM model_records WHERE is_embedding = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	var records []model.ModelRecord
	err := r.db.SelectContext(ctx, &records, query+modelOrder, isEmbedding)
	return records, err
}

func (r *modelRepo) GetByString(ctx context.Context, modelString string) (*model.ModelRecord, error) {
	var rec model.ModelRecord
	err := r.db.GetContext(ctx, &rec, `SELECT * FROM model_records WHERE model_string = ?`, modelString)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *modelRepo) GetForProviders(ctx context.Context, providers []string) ([]model.ModelRecord, error) {
	if len(providers) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT * FROM model_records WHERE provider IN (?) AND is_active = 1`+modelOrder,
		providers)
	if err != nil {
		return nil, err
	}
	var records []model.ModelRecord
	err = r.db.SelectContext(ctx, &records, query, args...)
	return records, err
}

// statsRow mirrors model.ProviderStats with last_sync as raw text, because
// MAX() strips the column's declared type and the driver hands back a string.
type statsRow struct {
	Provider         string         `db:"provider"`
	TotalModels      int            `db:"total_models"`
	ActiveModels     int            `db:"active_models"`
	EmbeddingModels  int            `db:"embedding_models"`
	LLMModels        int            `db:"llm_models"`
	FreeModels       int            `db:"free_models"`
	VisionModels     int            `db:"vision_models"`
	ToolModels       int            `db:"tool_models"`
	MaxContextLength int            `db:"max_context_length"`
	MinCost          float64        `db:"min_cost"`
	MaxCost          float64        `db:"max_cost"`
	LastSync         sql.NullString `db:"last_sync"`
}

func (r *modelRepo) ProviderStatistics(ctx context.Context) (map[string]model.ProviderStats, error) {
	var rows []statsRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT
			provider,
			COUNT(*) AS total_models,
			SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END) AS active_models,
			SUM(CASE WHEN is_embedding = 1 THEN 1 ELSE 0 END) AS embedding_models,
			SUM(CASE WHEN is_embedding = 0 THEN 1 ELSE 0 END) AS llm_models,
			SUM(CASE WHEN is_free = 1 THEN 1 ELSE 0 END) AS free_models,
			SUM(CASE WHEN supports_vision = 1 THEN 1 ELSE 0 END) AS vision_models,
			SUM(CASE WHEN supports_tools = 1 THEN 1 ELSE 0 END) AS tool_models,
			MAX(context_length) AS max_context_length,
			MIN(input_cost) AS min_cost,
			MAX(input_cost) AS max_cost,
			MAX(last_updated) AS last_sync
		FROM model_records
		GROUP BY provider
		ORDER BY provider`)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]model.ProviderStats, len(rows))
	for _, row := range rows {
		stats[row.Provider] = model.ProviderStats{
			Provider:         row.Provider,
			TotalModels:      row.TotalModels,
			ActiveModels:     row.ActiveModels,
			EmbeddingModels:  row.EmbeddingModels,
			LLMModels:        row.LLMModels,
			FreeModels:       row.FreeModels,
			VisionModels:     row.VisionModels,
			ToolModels:       row.ToolModels,
			MaxContextLength: row.MaxContextLength,
			MinCost:          row.MinCost,
			MaxCost:          row.MaxCost,
			LastSync:         parseDBTime(row.LastSync),
		}
	}
	return stats, nil
}

func (r *modelRepo) SetActive(ctx context.Context, modelString string, active bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE model_records SET is_active = ?, last_updated = ? WHERE model_string = ?`,
		active, time.Now().UTC(), modelString)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// sqliteTimeLayouts covers the formats go-sqlite3 emits for bound time.Time
// values plus the plain CURRENT_TIMESTAMP form.
var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func parseDBTime(s sql.NullString) sql.NullTime {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return sql.NullTime{}
	}
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, s.String); err == nil {
			return sql.NullTime{Time: t, Valid: true}
		}
	}
	return sql.NullTime{}
}
