package model

import "math"

// QuotaStat tracks cumulative token usage against a ModelRecord's quota
// allowance (spec.md §4.7, §6 `quota_stat`). Kept as a distinct row, keyed
// by ModelId, rather than embedded in ModelRecord, so quota increments never
// contend with configuration writes (spec.md §9 "cyclic references" note:
// both sides key by id, neither embeds the other).
type QuotaStat struct {
	Id         int   `json:"id" gorm:"primaryKey"`
	ModelId    int   `json:"model_id" gorm:"not null;uniqueIndex"`
	TotalQuota int64 `json:"total_quota" gorm:"not null;default:0"`
	UsedQuota  int64 `json:"used_quota" gorm:"not null;default:0"`

	// RemainQuota and UsedRatio are derived, recomputed on every increment
	// (spec.md §4.7), but persisted so reads don't need TotalQuota math.
	RemainQuota int64   `json:"remain_quota"`
	UsedRatio   float64 `json:"used_ratio"`

	// QuotaStatus: 0 exhausted, 1 near-exhaust, 2 sufficient (spec.md §4.7).
	QuotaStatus int `json:"quota_status" gorm:"not null;default:2"`

	SyncType     int   `json:"sync_type" gorm:"default:0"`
	LastSyncTime int64 `json:"last_sync_time"`
	UpdateTime   int64 `json:"update_time" gorm:"autoUpdateTime"`
}

func (QuotaStat) TableName() string { return "quota_stat" }

// QuotaStatus values (spec.md §4.7).
const (
	QuotaStatusExhausted   = 0
	QuotaStatusNearExhaust = 1
	QuotaStatusSufficient  = 2
)

// Recompute derives RemainQuota, UsedRatio, and QuotaStatus from
// TotalQuota/UsedQuota, applying alertThreshold as the near-exhaust cutoff
// (spec.md §4.7). A zero TotalQuota is treated as unlimited: ratio stays 0
// and status stays sufficient. RemainQuota never goes below 0. UsedRatio is
// rounded to 2 decimal places
// (spec.md §3: "used_ratio = round(used_quota / total_quota * 100, 2)").
func (q *QuotaStat) Recompute(alertThreshold float64) {
	q.RemainQuota = q.TotalQuota - q.UsedQuota
	if q.RemainQuota < 0 {
		q.RemainQuota = 0
	}
	if q.TotalQuota <= 0 {
		q.UsedRatio = 0
		q.QuotaStatus = QuotaStatusSufficient
		return
	}

	q.UsedRatio = math.Round(float64(q.UsedQuota)/float64(q.TotalQuota)*100*100) / 100
	switch {
	case q.UsedRatio >= 100:
		q.QuotaStatus = QuotaStatusExhausted
	case q.UsedRatio >= alertThreshold:
		q.QuotaStatus = QuotaStatusNearExhaust
	default:
		q.QuotaStatus = QuotaStatusSufficient
	}
}
