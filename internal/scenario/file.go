// Package scenario loads scenario files and runs the queries they contain.
//
// A scenario declares a small type universe (classes, structs, interfaces,
// enums, delegates, lambdas and method groups) and a list of classify,
// better and resolve queries against it, each with an optional expected
// answer. Files are TOML or YAML; both decode into the same File.
package scenario

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File is the decoded form of a scenario file.
type File struct {
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
	// Rules is a rule file path relative to the scenario; empty selects
	// the embedded default rules.
	Rules           string `toml:"rules" yaml:"rules"`
	LanguageVersion string `toml:"language_version" yaml:"language_version"`
	MaxDepth        int    `toml:"max_depth" yaml:"max_depth"`

	Types   []TypeDecl   `toml:"types" yaml:"types"`
	Lambdas []LambdaDecl `toml:"lambdas" yaml:"lambdas"`
	Groups  []GroupDecl  `toml:"groups" yaml:"groups"`

	Classify []ClassifyQuery `toml:"classify" yaml:"classify"`
	Better   []BetterQuery   `toml:"better" yaml:"better"`
	Resolve  []ResolveQuery  `toml:"resolve" yaml:"resolve"`
}

// TypeDecl declares a nominal type. Kind is one of class, struct,
// interface, enum or delegate.
type TypeDecl struct {
	Name       string          `toml:"name" yaml:"name"`
	Kind       string          `toml:"kind" yaml:"kind"`
	Base       string          `toml:"base" yaml:"base"`
	Interfaces []string        `toml:"interfaces" yaml:"interfaces"`
	Sealed     bool            `toml:"sealed" yaml:"sealed"`
	Underlying string          `toml:"underlying" yaml:"underlying"`
	Params     []TypeParamDecl `toml:"params" yaml:"params"`
	Invoke     *SignatureDecl  `toml:"invoke" yaml:"invoke"`
	Operators  []OperatorDecl  `toml:"operators" yaml:"operators"`
}

// TypeParamDecl declares a generic type or method parameter.
type TypeParamDecl struct {
	Name        string   `toml:"name" yaml:"name"`
	Variance    string   `toml:"variance" yaml:"variance"` // "", "in" or "out"
	Constraints []string `toml:"constraints" yaml:"constraints"`
	Class       bool     `toml:"class" yaml:"class"`
	Struct      bool     `toml:"struct" yaml:"struct"`
}

// SignatureDecl is a parameter list and a result type. An empty result
// means void.
type SignatureDecl struct {
	Params []string `toml:"params" yaml:"params"`
	Result string   `toml:"result" yaml:"result"`
}

// OperatorDecl declares a conversion operator on the enclosing type.
type OperatorDecl struct {
	From     string `toml:"from" yaml:"from"`
	To       string `toml:"to" yaml:"to"`
	Implicit bool   `toml:"implicit" yaml:"implicit"`
	Name     string `toml:"name" yaml:"name"`
}

// LambdaDecl names an explicitly typed anonymous function.
type LambdaDecl struct {
	Name   string   `toml:"name" yaml:"name"`
	Params []string `toml:"params" yaml:"params"`
	Result string   `toml:"result" yaml:"result"`
}

// GroupDecl names a method group expression.
type GroupDecl struct {
	Name      string          `toml:"name" yaml:"name"`
	Overloads []SignatureDecl `toml:"overloads" yaml:"overloads"`
}

// ClassifyQuery asks for the conversion from Src to Dst. Expect is either
// a conversion kind name or the full rendering of the conversion; Failure
// is a failure name such as "too-complex". Diagnostics lists the expected
// diagnostic codes.
type ClassifyQuery struct {
	Name        string   `toml:"name" yaml:"name"`
	Src         string   `toml:"src" yaml:"src"`
	Dst         string   `toml:"dst" yaml:"dst"`
	Mode        string   `toml:"mode" yaml:"mode"`
	Constant    *int64   `toml:"constant" yaml:"constant"`
	MaxDepth    int      `toml:"max_depth" yaml:"max_depth"`
	Expect      string   `toml:"expect" yaml:"expect"`
	Failure     string   `toml:"failure" yaml:"failure"`
	Diagnostics []string `toml:"diagnostics" yaml:"diagnostics"`
}

// BetterQuery compares the implicit conversions from From to A and to B.
// Expect is Left, Right or Neither.
type BetterQuery struct {
	Name   string `toml:"name" yaml:"name"`
	From   string `toml:"from" yaml:"from"`
	A      string `toml:"a" yaml:"a"`
	B      string `toml:"b" yaml:"b"`
	Expect string `toml:"expect" yaml:"expect"`
}

// ResolveQuery resolves an overload set against an argument list. Best
// and Tied are member indices; Explain lists the expected explanation
// codes in order.
type ResolveQuery struct {
	Name    string       `toml:"name" yaml:"name"`
	Members []MemberDecl `toml:"members" yaml:"members"`
	Args    []ArgDecl    `toml:"args" yaml:"args"`
	Expect  string       `toml:"expect" yaml:"expect"`
	Best    *int         `toml:"best" yaml:"best"`
	Tied    []int        `toml:"tied" yaml:"tied"`
	Explain []string     `toml:"explain" yaml:"explain"`
}

// MemberDecl declares one overload candidate. Parameter types may name
// the member's type parameters; they are instantiated with TypeArgs.
type MemberDecl struct {
	Name       string          `toml:"name" yaml:"name"`
	TypeParams []TypeParamDecl `toml:"type_params" yaml:"type_params"`
	TypeArgs   []string        `toml:"type_args" yaml:"type_args"`
	Params     []ParamDecl     `toml:"params" yaml:"params"`
}

// ParamDecl declares a member parameter.
type ParamDecl struct {
	Name     string `toml:"name" yaml:"name"`
	Type     string `toml:"type" yaml:"type"`
	Default  bool   `toml:"default" yaml:"default"`
	Variadic bool   `toml:"params" yaml:"params"`
}

// ArgDecl is one call argument; Name is empty for positional arguments.
type ArgDecl struct {
	Name     string `toml:"name" yaml:"name"`
	Type     string `toml:"type" yaml:"type"`
	Constant *int64 `toml:"constant" yaml:"constant"`
}

// Format is the encoding of a scenario file.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return FormatTOML, fmt.Errorf("unsupported scenario extension %q", filepath.Ext(path))
}

// Scenario is a decoded scenario together with its origin.
type Scenario struct {
	File
	Path string
	// Source holds the raw file contents.
	Source []byte
}

// Digest identifies the scenario contents.
func (s *Scenario) Digest() string {
	sum := sha256.Sum256(s.Source)
	return hex.EncodeToString(sum[:])
}

// Dir is the directory relative paths inside the scenario resolve against.
func (s *Scenario) Dir() string {
	if s.Path == "" {
		return "."
	}
	return filepath.Dir(s.Path)
}

// Load reads and decodes a scenario file.
func Load(path string) (*Scenario, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Path = path
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes scenario contents held in memory. Unknown keys are errors.
func Parse(data []byte, format Format) (*Scenario, error) {
	sc := &Scenario{Source: bytes.Clone(data)}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&sc.File); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		meta, err := toml.Decode(string(data), &sc.File)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	}
	return sc, nil
}

// Discover lists scenario files under root in lexical order. A file path
// is returned as is.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var out []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ferr := FormatOf(path); ferr == nil && !isRuleFile(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isRuleFile reports rule files kept next to scenarios; they are named
// *.rules.toml.
func isRuleFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), ".rules.toml")
}
