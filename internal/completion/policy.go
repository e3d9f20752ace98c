// Package completion implements Shelly's tab-completion policies: filesystem entries,
// host-supplied candidates, ordered combinations of the two, or nothing at all.
package completion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned when a policy name is not recognised.
var ErrUnknownPolicy = errors.New("unknown completion policy")

// Policy selects how filesystem and custom candidates are combined.
type Policy int

const (
	// Filenames offers filesystem entries followed by custom candidates.
	Filenames Policy = iota
	// FilenamesBefore offers filesystem entries, falling back to custom candidates.
	FilenamesBefore
	// FilenamesAfter offers custom candidates, falling back to filesystem entries.
	FilenamesAfter
	// Only offers custom candidates exclusively.
	Only
	// None disables completion.
	None
)

var policyNames = map[Policy]string{
	Filenames:       "filenames",
	FilenamesBefore: "filenames_before",
	FilenamesAfter:  "filenames_after",
	Only:            "only",
	None:            "none",
}

// String returns the configuration name of the policy.
func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePolicy converts a configuration name into a Policy. Matching ignores case and
// accepts "-" in place of "_".
func ParsePolicy(name string) (Policy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for policy, policyName := range policyNames {
		if policyName == normalized {
			return policy, nil
		}
	}
	return None, fmt.Errorf("%w: '%s'", ErrUnknownPolicy, name)
}

// Func produces custom completion candidates for a partial word.
type Func func(word string) []string
