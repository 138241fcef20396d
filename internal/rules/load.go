package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

//go:embed csharp.toml
var csharpRules []byte

// DefaultSource returns the embedded default rule file.
func DefaultSource() []byte {
	return bytes.Clone(csharpRules)
}

type fileConfig struct {
	LanguageVersion          string            `toml:"language_version"`
	ExplicitAllNumeric       bool              `toml:"explicit_all_numeric"`
	SignedBetterThanUnsigned bool              `toml:"signed_better_than_unsigned"`
	Features                 map[string]string `toml:"features"`
	Numeric                  []numericConfig   `toml:"numeric"`
}

type numericConfig struct {
	Name          string   `toml:"name"`
	Signed        bool     `toml:"signed"`
	Integral      bool     `toml:"integral"`
	Bits          uint8    `toml:"bits"`
	Implicit      []string `toml:"implicit"`
	Explicit      []string `toml:"explicit"`
	ConstantsFrom []string `toml:"constants_from"`
}

// Option customises a rule set at construction.
type Option func(*Rules)

// WithBoxing injects the boxing eligibility predicate.
func WithBoxing(pred BoxingPredicate) Option {
	return func(r *Rules) {
		if pred != nil {
			r.boxing = pred
		}
	}
}

// WithMethodGroupHook injects the method group binding hook.
func WithMethodGroupHook(hook MethodGroupHook) Option {
	return func(r *Rules) {
		if hook != nil {
			r.methodGroup = hook
		}
	}
}

// WithLanguageVersion overrides the version declared by the rule file.
func WithLanguageVersion(v *semver.Version) Option {
	return func(r *Rules) {
		if v != nil {
			r.Version = v
		}
	}
}

var defaultRules = sync.OnceValues(func() (*Rules, error) {
	return Parse(csharpRules)
})

// Default returns the embedded C#-like rule set. It panics if the embedded
// file is broken.
func Default() *Rules {
	r, err := defaultRules()
	if err != nil {
		panic(fmt.Errorf("rules: embedded csharp.toml: %w", err))
	}
	return r
}

// Load reads and validates a rule file.
func Load(path string, opts ...Option) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	r, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a rule file held in memory.
func Parse(data []byte, opts ...Option) (*Rules, error) {
	var cfg fileConfig
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	r, err := build(cfg)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func build(cfg fileConfig) (*Rules, error) {
	r := &Rules{
		ExplicitAllNumeric:       cfg.ExplicitAllNumeric,
		SignedBetterThanUnsigned: cfg.SignedBetterThanUnsigned,
		byName:                   make(map[string]int, len(cfg.Numeric)),
		implicit:                 make(map[[2]string]bool),
		explicit:                 make(map[[2]string]bool),
		features:                 make(map[Feature]*semver.Constraints, len(cfg.Features)),
		boxing:                   DefaultBoxing,
		methodGroup:              DefaultMethodGroup,
	}
	var issues []Issue
	if cfg.LanguageVersion != "" {
		v, err := semver.NewVersion(cfg.LanguageVersion)
		if err != nil {
			return nil, fmt.Errorf("language_version: %w", err)
		}
		r.Version = v
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.Features)) {
		expr := cfg.Features[name]
		c, err := semver.NewConstraint(expr)
		if err != nil {
			issues = append(issues, Issue{Code: codeBadConstraint, Subject: name, Detail: err.Error()})
			continue
		}
		r.features[Feature(name)] = c
	}

	for i, nc := range cfg.Numeric {
		if _, dup := r.byName[nc.Name]; dup || nc.Name == "" {
			issues = append(issues, Issue{Code: codeConflictingRule, Subject: nc.Name, Detail: "duplicate or empty numeric name"})
			continue
		}
		bits := nc.Bits
		if nc.Integral && bits == 0 {
			bits = 32
		}
		r.byName[nc.Name] = len(r.kinds)
		r.kinds = append(r.kinds, NumericKind{
			Name:          nc.Name,
			Signed:        nc.Signed,
			Integral:      nc.Integral,
			Bits:          bits,
			Rank:          i,
			Implicit:      nc.Implicit,
			Explicit:      nc.Explicit,
			ConstantsFrom: nc.ConstantsFrom,
		})
	}
	for _, k := range r.kinds {
		for _, to := range k.Implicit {
			r.implicit[[2]string{k.Name, to}] = true
		}
		for _, to := range k.Explicit {
			r.explicit[[2]string{k.Name, to}] = true
		}
	}
	issues = append(issues, r.validate()...)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return r, nil
}

// New builds rules directly from numeric kinds; used by tests and embedders
// that describe a language in code.
func New(kinds []NumericKind, opts ...Option) (*Rules, error) {
	cfg := fileConfig{ExplicitAllNumeric: true}
	for _, k := range kinds {
		cfg.Numeric = append(cfg.Numeric, numericConfig{
			Name:          k.Name,
			Signed:        k.Signed,
			Integral:      k.Integral,
			Bits:          k.Bits,
			Implicit:      k.Implicit,
			Explicit:      k.Explicit,
			ConstantsFrom: k.ConstantsFrom,
		})
	}
	r, err := build(cfg)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}
