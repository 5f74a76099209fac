// Package discovery implements the upstream model-listing operation
// surfaced to operators configuring a new vendor (spec.md §4.5).
package discovery

import (
	"context"

	"github.com/Chyrain/LLMGateway/relay/adaptor"
)

// Model is one entry of a discovery result.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Result is the shape list_available returns (spec.md §4.5).
type Result struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Models  []Model `json:"models"`
}

// staticModels is the built-in fallback list for vendors whose adapter
// exposes no live discovery endpoint (spec.md §4.5 "unknown vendor ⇒
// return the adapter's static built-in list"). Anthropic, DashScope
// (Qwen), and Spark publish no public unauthenticated model-listing
// endpoint the gateway can call with just api_base/api_key, so their
// catalogs are maintained here instead.
var staticModels = map[string][]string{
	"anthropic": {"claude-opus-4-20250514", "claude-sonnet-4-20250514", "claude-haiku-4-20250514"},
	"qwen":      {"qwen-turbo", "qwen-plus", "qwen-max"},
	"spark":     {"general", "generalv3", "generalv3.5"},
}

// ListAvailable lists the models reachable at apiBase for vendor/apiSpec.
// It prefers the resolved adapter's live FetchModels when the adapter
// implements adaptor.ModelLister, falling back to a static built-in list
// otherwise (spec.md §4.5).
func ListAvailable(ctx context.Context, vendor, apiSpec, apiBase, apiKey string) Result {
	a, ok := adaptor.Resolve(vendor, apiSpec)
	if !ok {
		return Result{Success: false, Message: "no adapter registered for " + vendor}
	}

	if lister, ok := a.(adaptor.ModelLister); ok {
		ids, err := lister.FetchModels(ctx, apiBase, apiKey)
		if err != nil {
			return Result{Success: false, Message: err.Error()}
		}
		return Result{Success: true, Models: toModels(ids)}
	}

	spec := apiSpec
	if spec == "" {
		spec = vendor
	}
	return Result{Success: true, Models: toModels(staticModels[spec])}
}

func toModels(ids []string) []Model {
	out := make([]Model, 0, len(ids))
	for _, id := range ids {
		out = append(out, Model{ID: id, Name: id})
	}
	return out
}
