package rules

import (
	"maps"
	"slices"

	"github.com/Masterminds/semver/v3"
)

// Feature names a language capability gated by version.
type Feature string

const (
	FeatureVariance               Feature = "variance"
	FeatureLiftedUserDefined      Feature = "lifted_user_defined"
	FeatureConstantConversions    Feature = "constant_conversions"
	FeatureMethodGroupConversions Feature = "method_group_conversions"
	FeaturePointerConversions     Feature = "pointer_conversions"
)

// KnownFeatures lists every feature a rule file may gate.
var KnownFeatures = []Feature{
	FeatureVariance,
	FeatureLiftedUserDefined,
	FeatureConstantConversions,
	FeatureMethodGroupConversions,
	FeaturePointerConversions,
}

// Enabled reports whether the feature is available at the rule set's
// language version. Features without a constraint are always enabled.
func (r *Rules) Enabled(f Feature) bool {
	c, ok := r.features[f]
	if !ok || c == nil {
		return true
	}
	if r.Version == nil {
		return true
	}
	return c.Check(r.Version)
}

// Gates returns the feature constraints as strings, sorted by feature name.
func (r *Rules) Gates() []FeatureGate {
	names := slices.Sorted(maps.Keys(r.features))
	out := make([]FeatureGate, 0, len(names))
	for _, name := range names {
		out = append(out, FeatureGate{
			Feature:    name,
			Constraint: r.features[name].String(),
			Enabled:    r.Enabled(name),
		})
	}
	return out
}

// FeatureGate is a rendered feature constraint.
type FeatureGate struct {
	Feature    Feature
	Constraint string
	Enabled    bool
}

// WithVersion returns a copy of the rules evaluated at another language
// version.
func (r *Rules) WithVersion(v *semver.Version) *Rules {
	cp := *r
	cp.Version = v
	return &cp
}
