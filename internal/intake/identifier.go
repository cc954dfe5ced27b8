package intake

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// DefaultMinIDDigits is the minimum length of a digit run treated as a user
// identifier. Shorter runs (years, day numbers) are never taken for IDs.
const DefaultMinIDDigits = 5

var (
	idPatternMu    sync.Mutex
	idPatternCache = map[int]*regexp.Regexp{}
)

func idPattern(minDigits int) *regexp.Regexp {
	idPatternMu.Lock()
	defer idPatternMu.Unlock()
	re, ok := idPatternCache[minDigits]
	if !ok {
		re = regexp.MustCompile(fmt.Sprintf(`\b\d{%d,}\b`, minDigits))
		idPatternCache[minDigits] = re
	}
	return re
}

// ExtractIdentifier finds the first standalone run of at least minDigits
// digits in text and returns it as a user ID together with the exact matched
// token. Digits glued to letters do not count, token boundaries are
// whitespace or punctuation. When several runs qualify, the first one wins.
func ExtractIdentifier(text string, minDigits int) (int64, string, bool) {
	if minDigits <= 0 {
		minDigits = DefaultMinIDDigits
	}
	token := idPattern(minDigits).FindString(text)
	if token == "" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		// Longer than an int64, not a usable ID.
		return 0, "", false
	}
	return id, token, true
}
