package adaptor

import (
	"os"

	"github.com/Laisky/errors/v2"
	"gopkg.in/yaml.v3"
)

// SpecOverride holds the fields an operator can override for one ApiSpec
// without recompiling the gateway. Zero values mean "use the built-in
// default"; only DefaultPath and DefaultTestModel are override points today
// because every other piece of vendor behavior (request/response shape,
// auth header scheme) is load-bearing Go code, not data.
type SpecOverride struct {
	// DefaultPath replaces the adaptor's built-in request path when a
	// ModelRecord itself leaves api_path empty (spec.md §4.2 rule 2).
	DefaultPath string `yaml:"default_path"`

	// DefaultTestModel replaces the model id the connectivity probe falls
	// back to when a ModelRecord's own model name can't be used as-is
	// (mirrors config.ClaudeTestModel, generalized to any spec).
	DefaultTestModel string `yaml:"default_test_model"`
}

// overridesFile is the shape of adapters.yaml: a map keyed by api_spec name.
type overridesFile struct {
	Adaptors map[ApiSpec]SpecOverride `yaml:"adaptors"`
}

// overrides holds the loaded adapters.yaml content, if any. Nil until
// LoadOverrides is called; every lookup helper treats a nil/missing map as
// "no override configured".
var overrides map[ApiSpec]SpecOverride

// LoadOverrides reads the YAML file at path and merges it over the built-in
// adaptor defaults. Called once at startup when config.AdaptersConfigPath is
// non-empty; a missing or malformed file is a startup error since an
// operator who configured the path expects it to take effect.
func LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read adapters config %q", path)
	}

	var parsed overridesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return errors.Wrapf(err, "parse adapters config %q", path)
	}

	overrides = parsed.Adaptors
	return nil
}

// defaultPathFor returns the operator-configured default path for spec, if
// adapters.yaml set one, else "".
func defaultPathFor(spec ApiSpec) string {
	if o, ok := overrides[spec]; ok {
		return o.DefaultPath
	}
	return ""
}

// defaultTestModelFor returns the operator-configured fallback test model
// for spec, if adapters.yaml set one, else "".
func defaultTestModelFor(spec ApiSpec) string {
	if o, ok := overrides[spec]; ok {
		return o.DefaultTestModel
	}
	return ""
}

// TestModelFallback returns the adapters.yaml-configured test model for
// spec when one is set, else the adaptor's own compiled-in default
// (typically a config.* env var). BuildTestRequest implementations that
// need a model id and received none call this instead of hardcoding their
// compiled-in default directly, so an operator can bump a date-stamped
// model alias without a rebuild.
func TestModelFallback(spec ApiSpec, builtinDefault string) string {
	if override := defaultTestModelFor(spec); override != "" {
		return override
	}
	return builtinDefault
}
