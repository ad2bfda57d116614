package exec

import (
	"regexp"
	"sync"
)

// patternCache holds compiled regular expressions keyed by their source
// pattern string, shared across every concurrent criterion evaluation
// (§5 "compiled regex patterns, content-addressed by the pattern string,
// safe under concurrent read"). sync.Map is the idiomatic fit here: the
// key set is read far more often than it is written, and entries are
// never invalidated once compiled.
var patternCache sync.Map // string -> *regexp.Regexp

// matchPattern implements the pattern_match operation: value matches
// pattern as a RE2 regular expression.
func matchPattern(pattern, value string) (bool, error) {
	re, err := compiledPattern(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}

func compiledPattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := patternCache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}
