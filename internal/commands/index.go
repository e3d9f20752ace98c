package commands

import "sort"

// Index maps every unambiguous prefix of a set of command names to the name it
// identifies. A full command name always maps to itself, even when it is also a
// prefix of a longer name.
type Index struct {
	entries map[string]string
}

// BuildIndex computes the abbreviation index for names.
func BuildIndex(names []string) *Index {
	counts := make(map[string]int)
	owner := make(map[string]string)
	for _, name := range names {
		for i := 1; i <= len(name); i++ {
			prefix := name[:i]
			counts[prefix]++
			owner[prefix] = name
		}
	}

	entries := make(map[string]string, len(owner))
	for prefix, n := range counts {
		if n == 1 {
			entries[prefix] = owner[prefix]
		}
	}
	for _, name := range names {
		entries[name] = name
	}

	return &Index{entries: entries}
}

// Resolve returns the command name token abbreviates, if it is unambiguous.
func (x *Index) Resolve(token string) (string, bool) {
	if x == nil {
		return "", false
	}
	name, ok := x.entries[token]
	return name, ok
}

// Aliases returns every token that resolves to name, sorted.
func (x *Index) Aliases(name string) []string {
	if x == nil {
		return nil
	}
	var aliases []string
	for token, target := range x.entries {
		if target == name {
			aliases = append(aliases, token)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// Len returns the number of tokens in the index.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}
