package rules

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"convres/internal/diag"
)

const (
	codeUnknownNumeric  = diag.RulUnknownNumeric
	codeSelfConversion  = diag.RulSelfConversion
	codeConflictingRule = diag.RulConflictingRule
	codeBadConstraint   = diag.RulBadConstraint
)

// Issue is one problem found while validating a rule file.
type Issue struct {
	Code    diag.Code
	Subject string
	Detail  string
}

func (i Issue) String() string {
	if i.Detail == "" {
		return fmt.Sprintf("%s %s: %s", i.Code.ID(), i.Subject, i.Code.Title())
	}
	return fmt.Sprintf("%s %s: %s (%s)", i.Code.ID(), i.Subject, i.Code.Title(), i.Detail)
}

// ValidationError collects every issue of a rejected rule file.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.String())
	}
	return "invalid rules: " + strings.Join(parts, "; ")
}

func (r *Rules) validate() []Issue {
	var issues []Issue
	check := func(from string, list []string, what string) {
		for _, to := range list {
			switch {
			case to == from:
				issues = append(issues, Issue{Code: codeSelfConversion, Subject: from})
			case r.Rank(to) < 0:
				issues = append(issues, Issue{Code: codeUnknownNumeric, Subject: to, Detail: what + " of " + from})
			}
		}
	}
	for _, k := range r.kinds {
		check(k.Name, k.Implicit, "implicit")
		check(k.Name, k.Explicit, "explicit")
		for _, src := range k.ConstantsFrom {
			if r.Rank(src) < 0 {
				issues = append(issues, Issue{Code: codeUnknownNumeric, Subject: src, Detail: "constants_from of " + k.Name})
			}
		}
		if k.Integral && (k.Bits == 0 || k.Bits > 64) {
			issues = append(issues, Issue{Code: codeConflictingRule, Subject: k.Name, Detail: "bits must be within 1..64"})
		}
		for _, to := range k.Explicit {
			if r.implicit[[2]string{k.Name, to}] {
				issues = append(issues, Issue{Code: codeConflictingRule, Subject: k.Name + "->" + to})
			}
		}
	}
	for _, name := range slices.Sorted(maps.Keys(r.features)) {
		if !slices.Contains(KnownFeatures, name) {
			issues = append(issues, Issue{Code: codeBadConstraint, Subject: string(name), Detail: "unknown feature"})
		}
	}
	return issues
}
