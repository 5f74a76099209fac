package adaptor

import (
	"strings"
)

// JoinURL joins an api_base with a vendor path, collapsing a duplicated
// `/v1` segment when the configured api_base already ends in one
// (spec.md §4.2 rule 2, §8 property 7: this must be idempotent — joining
// twice never produces `/v1/v1/...`).
func JoinURL(apiBase, path string) string {
	base := strings.TrimRight(apiBase, "/")
	path = "/" + strings.TrimLeft(path, "/")

	if strings.HasSuffix(base, "/v1") && strings.HasPrefix(path, "/v1/") {
		path = strings.TrimPrefix(path, "/v1")
	}

	return base + path
}

// BearerHeader returns the canonical `Authorization: Bearer <key>` header
// value used by the OpenAI, qwen, deepseek, and openai-compatible specs.
func BearerHeader(apiKey string) string {
	return "Bearer " + apiKey
}

// ResolvePath returns apiPath when the ModelRecord configured one; else the
// adapters.yaml override for spec, if any; else defaultPath. Every
// BuildRequest implementation calls this so a configured api_path always
// wins over both the operator-level and built-in defaults (spec.md §4.2
// rule 2: "joining api_base... with api_path").
func ResolvePath(spec ApiSpec, apiPath, defaultPath string) string {
	if apiPath != "" {
		return apiPath
	}
	if override := defaultPathFor(spec); override != "" {
		return override
	}
	return defaultPath
}
