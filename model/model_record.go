package model

import "time"

// ModelRecord is one configured upstream model endpoint: a vendor, a wire
// spec, connection details, and its current operational status
// (spec.md §3, §6 `model_config`).
type ModelRecord struct {
	Id         int    `json:"id" gorm:"primaryKey"`
	Vendor     string `json:"vendor" gorm:"size:64;not null;uniqueIndex:idx_vendor_model"`
	ModelName  string `json:"model_name" gorm:"size:128;not null;uniqueIndex:idx_vendor_model"`
	ApiBase    string `json:"api_base" gorm:"size:512;not null"`
	ApiPath    string `json:"api_path" gorm:"size:256"`
	ApiSpec    string `json:"api_spec" gorm:"size:32"`
	ApiKey     string `json:"api_key" gorm:"size:256"`
	Params     string `json:"params" gorm:"type:text"`

	// Priority orders candidate selection ascending (spec.md §4.2 rule 1).
	Priority int `json:"priority" gorm:"not null;default:0;index"`

	// Status: 1 enabled, 0 disabled. Only status=1 records are ever a
	// dispatch candidate.
	Status int `json:"status" gorm:"not null;default:1"`

	// ConnectStatus: 1 reachable, 0 not. Written by the connectivity probe
	// (spec.md §4.4).
	ConnectStatus int `json:"connect_status" gorm:"not null;default:1"`

	// QuotaStatus mirrors the latest QuotaStat.quota_status for quick
	// listing without a join (spec.md §4.7); QuotaStat remains authoritative.
	QuotaStatus int `json:"quota_status" gorm:"not null;default:2"`

	CreateTime int64 `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime int64 `json:"update_time" gorm:"autoUpdateTime"`
}

// TableName pins the GORM table name to the persistence layout spec.md §6
// names explicitly.
func (ModelRecord) TableName() string { return "model_config" }

// IsEligible reports whether this record may be selected as a dispatch
// candidate (spec.md §4.2 rule 1: status=1 AND connect_status=1).
func (m *ModelRecord) IsEligible() bool {
	return m.Status == 1 && m.ConnectStatus == 1
}

// ResolvedApiSpec returns ApiSpec when set, else falls back to Vendor. Unlike
// relay/adaptor.Resolve, it does not check whether ApiSpec is registered.
func (m *ModelRecord) ResolvedApiSpec() string {
	if m.ApiSpec != "" {
		return m.ApiSpec
	}
	return m.Vendor
}

// touchUpdateTime is called by repository writes that bypass GORM's hooks
// (raw column updates for connect_status/quota_status).
func touchUpdateTime() int64 {
	return time.Now().Unix()
}
