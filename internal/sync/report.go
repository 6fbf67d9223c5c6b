package sync

import (
	"time"

	"github.com/calder-labs/provider-hub/internal/store/model"
)

// Sync outcome statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// Report describes one sync pass for a single source. Failed passes carry
// StatusError and the error text; they are never surfaced as Go errors.
type Report struct {
	Status              string    `json:"status"`
	Error               string    `json:"error,omitempty"`
	ModelsSynced        int       `json:"models_synced"`
	ModelsDeactivated   int       `json:"models_deactivated"`
	TotalProviders      int       `json:"total_providers,omitempty"`
	SyncDurationSeconds float64   `json:"sync_duration_seconds"`
	SyncTime            time.Time `json:"sync_time"`
	ForcedRefresh       bool      `json:"forced_refresh,omitempty"`
}

// FullReport merges the remote and local sub-reports of one full sync.
type FullReport struct {
	Status              string    `json:"status"`
	TotalModelsSynced   int       `json:"total_models_synced"`
	ModelsDeactivated   int       `json:"models_deactivated"`
	RemoteResult        Report    `json:"remote_result"`
	LocalResult         Report    `json:"local_result"`
	SyncDurationSeconds float64   `json:"sync_duration_seconds"`
	SyncTime            time.Time `json:"sync_time"`
}

// Status is the read-only sync state summary.
type Status struct {
	TotalModels    int                            `json:"total_models"`
	ActiveModels   int                            `json:"active_models"`
	InactiveModels int                            `json:"inactive_models"`
	Providers      map[string]model.ProviderStats `json:"providers"`
	LastCheck      time.Time                      `json:"last_check"`
}

func errorReport(start time.Time, err error) Report {
	return Report{
		Status:              StatusError,
		Error:               err.Error(),
		SyncDurationSeconds: time.Since(start).Seconds(),
		SyncTime:            start,
	}
}
