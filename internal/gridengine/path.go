package gridengine

import (
	"strings"
)

// GridEngine pseudo-variables and their native placeholder equivalents.
// Every replacement is the same length or shorter; the table order is
// fixed so longer tokens are matched before their prefixes.
var pathTokenTable = []struct {
	sge    string
	native string
}{
	{"$JOB_NAME", "%x"},
	{"$JOB_ID", "%j"},
	{"$HOSTNAME", "%N"},
	{"$TASK_ID", "%a"},
	{"$USER", "%u"},
}

// scanPathEntry isolates one comma-separated stdio path alternative.
// A single leading ':' is the GridEngine "no host" marker and is
// consumed; a bare ':' later in the entry is host-qualification syntax
// the scheduler cannot express, reported via hostQualified. A backslash
// escapes a delimiter. consumed counts the bytes eaten from s including
// the trailing comma, if any.
func scanPathEntry(s string) (entry string, consumed int, hostQualified bool) {
	var b strings.Builder
	i := 0
	if i < len(s) && s[i] == ':' {
		i++
	}
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(s[i+1])
			i += 2
		case c == ',':
			i++
			return b.String(), i, hostQualified
		case c == '\n':
			return b.String(), i, hostQualified
		case c == ':':
			hostQualified = true
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i, hostQualified
}

// translatePathTokens rewrites the legacy pseudo-variables into native
// placeholder syntax. The output is built fresh rather than compacted in
// place.
func translatePathTokens(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); {
		matched := false
		if path[i] == '$' {
			for _, tok := range pathTokenTable {
				if strings.HasPrefix(path[i:], tok.sge) {
					b.WriteString(tok.native)
					i += len(tok.sge)
					matched = true
					break
				}
			}
		}
		if !matched {
			b.WriteByte(path[i])
			i++
		}
	}
	return b.String()
}

// TranslateStdioPath resolves the argument of -o/-e/-i: the first
// comma-separated alternative that is not host-qualified, with its
// pseudo-variables translated. ok is false when every alternative was
// host-qualified or the argument was empty.
func TranslateStdioPath(arg string) (path string, ok bool) {
	for len(arg) > 0 {
		entry, consumed, hostQualified := scanPathEntry(arg)
		arg = arg[consumed:]
		if hostQualified {
			// Host-restricted output paths have no native equivalent;
			// skip the entry and try the next alternative.
			continue
		}
		if entry != "" {
			return translatePathTokens(entry), true
		}
		if consumed == 0 {
			break
		}
	}
	return "", false
}
