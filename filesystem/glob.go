package filesystem

import (
	"regexp"
	"strings"
)

// GlobToRegexp translates a shell glob into regexp syntax: * matches any run
// of characters, ? matches one, everything else is literal. Anchored
// patterns must match the whole input.
func GlobToRegexp(glob string, anchored bool) string {
	var b strings.Builder
	if anchored {
		b.WriteByte('^')
	}
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if anchored {
		b.WriteByte('$')
	}
	return b.String()
}

// HasGlob reports whether s contains wildcard characters
func HasGlob(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// segmentMatcher returns a predicate for one path segment. Literal segments
// compare by equality; patterns are compiled once and cached.
func (fs *FileSystem) segmentMatcher(seg string) (func(string) bool, error) {
	if !HasGlob(seg) {
		return func(name string) bool { return name == seg }, nil
	}
	re, ok := fs.globs.Load(seg)
	if !ok {
		var err error
		re, err = regexp.Compile(GlobToRegexp(seg, true))
		if err != nil {
			return nil, err
		}
		re, _ = fs.globs.LoadOrStore(seg, re)
	}
	return re.MatchString, nil
}
