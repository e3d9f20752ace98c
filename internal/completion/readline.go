package completion

import (
	"strings"
	"unicode"

	"github.com/chzyer/readline"
)

var _ readline.AutoCompleter = (*Completer)(nil)

// Do implements readline.AutoCompleter. It completes the whitespace-separated word
// under the cursor and offers each candidate as the text to insert after it.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if c.policy == None {
		return nil, 0
	}
	if pos > len(line) {
		pos = len(line)
	}
	if pos < 0 {
		pos = 0
	}

	start := pos
	for start > 0 && !unicode.IsSpace(line[start-1]) {
		start--
	}
	word := string(line[start:pos])

	for _, candidate := range c.Complete(word) {
		if strings.HasPrefix(candidate, word) {
			newLine = append(newLine, []rune(strings.TrimPrefix(candidate, word)))
		}
	}
	return newLine, len([]rune(word))
}
