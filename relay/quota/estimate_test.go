package quota

import (
	"testing"

	"github.com/stretchr/testify/require"

	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

func TestEstimateUsageNeverOverridesExistingUsage(t *testing.T) {
	req := &rmodel.StandardRequest{Messages: []rmodel.Message{{Role: "user", Content: "hello there"}}}
	resp := &rmodel.StandardResponse{
		Choices: []rmodel.Choice{{Message: rmodel.Message{Content: "hi"}}},
		Usage:   rmodel.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}

	EstimateUsage(req, resp)

	require.Equal(t, rmodel.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, resp.Usage)
}

func TestEstimateUsageFillsInWhenUsageAbsent(t *testing.T) {
	req := &rmodel.StandardRequest{Messages: []rmodel.Message{{Role: "user", Content: "hello there"}}}
	resp := &rmodel.StandardResponse{
		Choices: []rmodel.Choice{{Message: rmodel.Message{Content: "hi"}}},
	}

	EstimateUsage(req, resp)

	require.Equal(t, resp.Usage.PromptTokens+resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
}

func TestEstimateUsageNilResponseIsNoop(t *testing.T) {
	req := &rmodel.StandardRequest{Messages: []rmodel.Message{{Role: "user", Content: "hello"}}}
	require.NotPanics(t, func() { EstimateUsage(req, nil) })
}

func TestEstimateTokensEmptyTextIsZero(t *testing.T) {
	require.Equal(t, 0, EstimateTokens(""))
}
