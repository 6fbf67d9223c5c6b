package sync_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/store/model"
	modelsync "github.com/calder-labs/provider-hub/internal/sync"
)

func TestScheduler_StartStop(t *testing.T) {
	svc, models := newSyncService(&fakeSource{byProvider: remoteCatalog("m1")})
	// fresh data so the first pass is a no-op skip
	models.stats["openai"] = model.ProviderStats{
		LastSync: sql.NullTime{Time: time.Now().UTC(), Valid: true},
	}
	sched := modelsync.NewScheduler(zap.NewNop(), svc, time.Hour)

	assert.False(t, sched.Running())
	sched.Start(context.Background())
	assert.True(t, sched.Running())

	// second start is a no-op, not a second loop
	sched.Start(context.Background())
	assert.True(t, sched.Running())

	sched.Stop()
	assert.False(t, sched.Running())
	sched.Stop()
	assert.False(t, sched.Running())
}

func TestScheduler_SyncsImmediatelyWhenStale(t *testing.T) {
	source := &fakeSource{byProvider: remoteCatalog("m1", "m2")}
	svc, _ := newSyncService(source)
	sched := modelsync.NewScheduler(zap.NewNop(), svc, time.Hour)

	sched.Start(context.Background())
	defer sched.Stop()

	assert.Eventually(t, func() bool {
		return source.fetchCount() >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_TriggerBackground(t *testing.T) {
	source := &fakeSource{byProvider: remoteCatalog("m1")}
	svc, models := newSyncService(source)
	sched := modelsync.NewScheduler(zap.NewNop(), svc, time.Hour)

	sched.TriggerBackground(true)

	assert.Eventually(t, func() bool {
		rec, _ := models.GetByString(context.Background(), "openai:m1")
		return rec != nil && rec.IsActive
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, source.fetchCount())
}
