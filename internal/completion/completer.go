package completion

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Completer produces completion candidates according to a Policy.
type Completer struct {
	policy Policy
	custom Func
	fs     afero.Fs
}

// NewCompleter creates a completer. A nil custom func yields no custom candidates and
// a nil fs uses the operating system's filesystem.
func NewCompleter(policy Policy, custom Func, fs afero.Fs) *Completer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Completer{
		policy: policy,
		custom: custom,
		fs:     fs,
	}
}

// Policy returns the active policy.
func (c *Completer) Policy() Policy {
	return c.policy
}

// Enabled reports whether the completer should be installed in a line editor at all.
func (c *Completer) Enabled() bool {
	return c.policy != None
}

// Complete returns the candidates for word in order.
func (c *Completer) Complete(word string) []string {
	switch c.policy {
	case Filenames:
		return append(c.Files(word), c.Custom(word)...)
	case FilenamesBefore:
		if files := c.Files(word); len(files) > 0 {
			return files
		}
		return c.Custom(word)
	case FilenamesAfter:
		if custom := c.Custom(word); len(custom) > 0 {
			return custom
		}
		return c.Files(word)
	case Only:
		return c.Custom(word)
	default:
		return []string{}
	}
}

// Custom returns the host-supplied candidates for word.
func (c *Completer) Custom(word string) []string {
	if c.custom == nil {
		return []string{}
	}
	candidates := c.custom(word)
	if candidates == nil {
		return []string{}
	}
	return candidates
}

// Files returns the filesystem entries whose path starts with word. Dotfiles are only
// offered once the typed name starts with ".". When exactly one entry matches it gets a trailing "/" if it is a directory, otherwise a trailing space.
func (c *Completer) Files(word string) []string {
	dir, base := splitWord(word)

	listDir := dir
	if listDir == "" {
		listDir = "."
	}
	entries, err := afero.ReadDir(c.fs, listDir)
	if err != nil {
		return []string{}
	}

	matches := make([]string, 0, len(entries))
	showHidden := strings.HasPrefix(base, ".")
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") && !showHidden {
			continue
		}
		if strings.HasPrefix(entry.Name(), base) {
			matches = append(matches, dir+entry.Name())
		}
	}
	sort.Strings(matches)

	if len(matches) == 1 {
		isDir, err := afero.IsDir(c.fs, filepath.FromSlash(matches[0]))
		if err == nil && isDir {
			matches[0] += "/"
		} else {
			matches[0] += " "
		}
	}
	return matches
}

// splitWord splits word into the directory part to list (with its trailing separator
// kept, so candidates echo what was typed) and the base name to filter on.
func splitWord(word string) (dir, base string) {
	i := strings.LastIndexAny(word, "/"+string(filepath.Separator))
	if i < 0 {
		return "", word
	}
	return word[:i+1], word[i+1:]
}
