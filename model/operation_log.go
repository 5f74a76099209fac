package model

import "encoding/json"

// OperationLog records one dispatch attempt or administrative event
// (spec.md §4.2 side effects, §6 `operation_log`).
type OperationLog struct {
	Id         int    `json:"id" gorm:"primaryKey"`
	LogType    int    `json:"log_type" gorm:"not null;index"`
	ModelId    int    `json:"model_id" gorm:"index"`
	LogContent string `json:"log_content" gorm:"type:text"`
	Status     int    `json:"status" gorm:"not null;default:1"`
	CreateTime int64  `json:"create_time" gorm:"autoCreateTime;index"`
}

func (OperationLog) TableName() string { return "operation_log" }

// log_type values (spec.md §6).
const (
	LogTypeUnarySuccess = 1
	LogTypeProbe        = 2
	LogTypeFailure      = 3
	LogTypeDiscovery    = 4
)

// AttemptLogContent is the JSON shape written as an OperationLog's
// log_content for a single dispatch attempt (spec.md §4.2 side effects).
type AttemptLogContent struct {
	RequestedModel string `json:"requested_model"`
	AttemptedModel string `json:"attempted_model"`
	Status         string `json:"status"`
	Usage          *Usage `json:"usage,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Usage mirrors relay/model.Usage's shape for log embedding without an
// import cycle between model and relay/model.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Marshal serializes the content for storage in OperationLog.LogContent.
func (c AttemptLogContent) Marshal() string {
	b, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(b)
}
