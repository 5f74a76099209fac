package model

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/Chyrain/LLMGateway/monitor"
)

// ModelRepository is the data-access abstraction the dispatch engine, probe,
// discovery, and quota tracker consume. The core makes no assumption about
// the backing store beyond linearizable single-row reads (spec.md §4.6).
type ModelRepository interface {
	List(ctx context.Context) ([]ModelRecord, error)
	Get(ctx context.Context, id int) (*ModelRecord, error)
	Create(ctx context.Context, m *ModelRecord) error
	Update(ctx context.Context, m *ModelRecord) error
	Delete(ctx context.Context, id int) error

	// ListCandidates returns records with status=1 AND connect_status=1,
	// ordered by priority ASC, tie-break id ASC (spec.md §4.2 rule 1).
	ListCandidates(ctx context.Context) ([]ModelRecord, error)

	// UpdateConnectStatus atomically writes a probe result for one model
	// (spec.md §4.4, §5 — serialized per model id).
	UpdateConnectStatus(ctx context.Context, id int, reachable bool) error

	// IncrementQuota atomically adds tokens to a model's used_quota and
	// returns the recomputed QuotaStat (spec.md §4.7, §5 — must not lose
	// concurrent writes).
	IncrementQuota(ctx context.Context, modelId int, tokens int64, alertThreshold float64) (*QuotaStat, error)

	// AppendLog writes one OperationLog row (spec.md §4.2 side effects).
	AppendLog(ctx context.Context, entry *OperationLog) error
}

// gormRepository is the default ModelRepository backed by model.DB. It
// serializes the read-modify-write sequences spec.md §5 requires
// (connect_status and quota increments) with one sync.Mutex per model id,
// kept alongside the database as the system of record for durability.
type gormRepository struct {
	db         *gorm.DB
	candidates candidateCache
	rowLocks   sync.Map // map[int]*sync.Mutex
}

// NewRepository builds the default ModelRepository over db, with a 2-second
// TTL cache for ListCandidates so a burst of inbound requests doesn't each
// re-query the full candidate table (spec.md §5 "Repository... linearizable
// single-row reads" — the cache trades a few seconds of staleness on the
// candidate *list* for read throughput; individual record mutations still
// go straight to the database). The cache is Redis-backed when
// common.InitRedisClient connected, else an in-process go-cache.
func NewRepository(db *gorm.DB) ModelRepository {
	return &gormRepository{
		db:         db,
		candidates: newCandidateCache(),
	}
}

func (r *gormRepository) rowLock(id int) *sync.Mutex {
	l, _ := r.rowLocks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (r *gormRepository) List(ctx context.Context) ([]ModelRecord, error) {
	var out []ModelRecord
	if err := r.db.WithContext(ctx).Order("priority ASC, id ASC").Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "list model records")
	}
	return out, nil
}

func (r *gormRepository) Get(ctx context.Context, id int) (*ModelRecord, error) {
	var m ModelRecord
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, errors.Wrapf(err, "get model record %d", id)
	}
	return &m, nil
}

func (r *gormRepository) Create(ctx context.Context, m *ModelRecord) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return errors.Wrap(err, "create model record")
	}
	r.candidates.Flush()
	return nil
}

func (r *gormRepository) Update(ctx context.Context, m *ModelRecord) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return errors.Wrapf(err, "update model record %d", m.Id)
	}
	r.candidates.Flush()
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id int) error {
	if err := r.db.WithContext(ctx).Delete(&ModelRecord{}, id).Error; err != nil {
		return errors.Wrapf(err, "delete model record %d", id)
	}
	r.candidates.Flush()
	return nil
}

const candidatesCacheKey = "candidates"

func (r *gormRepository) ListCandidates(ctx context.Context) ([]ModelRecord, error) {
	if cached, ok := r.candidates.Get(); ok {
		return cached, nil
	}

	var out []ModelRecord
	err := r.db.WithContext(ctx).
		Where("status = 1 AND connect_status = 1").
		Order("priority ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list dispatch candidates")
	}

	r.candidates.Set(out)
	return out, nil
}

func (r *gormRepository) UpdateConnectStatus(ctx context.Context, id int, reachable bool) error {
	lock := r.rowLock(id)
	lock.Lock()
	defer lock.Unlock()

	status := 0
	if reachable {
		status = 1
	}
	err := r.db.WithContext(ctx).Model(&ModelRecord{}).Where("id = ?", id).
		Updates(map[string]any{"connect_status": status, "update_time": touchUpdateTime()}).Error
	if err != nil {
		return errors.Wrapf(err, "update connect_status for model %d", id)
	}
	r.candidates.Flush()
	monitor.ConnectStatus.WithLabelValues(strconv.Itoa(id)).Set(float64(status))
	return nil
}

func (r *gormRepository) IncrementQuota(ctx context.Context, modelId int, tokens int64, alertThreshold float64) (*QuotaStat, error) {
	lock := r.rowLock(modelId)
	lock.Lock()
	defer lock.Unlock()

	var stat QuotaStat
	err := r.db.WithContext(ctx).Where("model_id = ?", modelId).FirstOrCreate(&stat, QuotaStat{ModelId: modelId}).Error
	if err != nil {
		return nil, errors.Wrapf(err, "load quota_stat for model %d", modelId)
	}

	stat.UsedQuota += tokens
	stat.Recompute(alertThreshold)
	stat.LastSyncTime = time.Now().Unix()

	if err := r.db.WithContext(ctx).Save(&stat).Error; err != nil {
		return nil, errors.Wrapf(err, "save quota_stat for model %d", modelId)
	}

	err = r.db.WithContext(ctx).Model(&ModelRecord{}).Where("id = ?", modelId).
		Updates(map[string]any{"quota_status": stat.QuotaStatus, "update_time": touchUpdateTime()}).Error
	if err != nil {
		return nil, errors.Wrapf(err, "propagate quota_status to model %d", modelId)
	}

	monitor.QuotaUsedRatio.WithLabelValues(strconv.Itoa(modelId)).Set(stat.UsedRatio)
	return &stat, nil
}

func (r *gormRepository) AppendLog(ctx context.Context, entry *OperationLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errors.Wrap(err, "append operation log")
	}
	return nil
}
