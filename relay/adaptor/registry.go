package adaptor

import (
	"fmt"
)

// ApiSpec names the wire protocol family a ModelRecord speaks, independent
// of which vendor operates the endpoint (spec.md §4.1, §9 Open Question:
// a registered api_spec takes precedence over vendor tag, since a
// custom or self-hosted deployment may speak a well-known spec under an
// unrelated vendor name).
type ApiSpec string

const (
	SpecOpenAI    ApiSpec = "openai"
	SpecAnthropic ApiSpec = "anthropic"
	SpecGemini    ApiSpec = "gemini"
	SpecOllama    ApiSpec = "ollama"
	SpecQwen      ApiSpec = "qwen"
	SpecSpark     ApiSpec = "spark"
)

// registry maps an ApiSpec to the Adaptor implementing it. Populated by
// init() in each vendor subpackage's file via Register.
var registry = map[ApiSpec]Adaptor{}

// Register associates an ApiSpec with its Adaptor implementation. Called
// from each vendor subpackage's init(); a second registration for the same
// spec is a programming error and panics at startup.
func Register(spec ApiSpec, a Adaptor) {
	if _, exists := registry[spec]; exists {
		panic(fmt.Sprintf("adaptor: duplicate registration for spec %q", spec))
	}
	registry[spec] = a
}

// Resolve returns the Adaptor for a ModelRecord, given its vendor tag and
// (possibly empty) api_spec override. api_spec wins when set and registered;
// otherwise the vendor tag is used as the spec name directly, which covers
// the common case where vendor tag and spec coincide (e.g. vendor "openai"
// speaking spec "openai").
func Resolve(vendorTag, apiSpec string) (Adaptor, bool) {
	if apiSpec != "" {
		if a, ok := registry[ApiSpec(apiSpec)]; ok {
			return a, true
		}
	}
	a, ok := registry[ApiSpec(vendorTag)]
	return a, ok
}
