// Package route implements the declarative route builder, its
// compilation into an executable tree, and the depth-first matcher
// that walks that tree against an incoming request path.
package route

import "strings"

// placeholderKind identifies how a special segment's captured text is
// parsed into a typed path parameter.
type placeholderKind int

const (
	kindString placeholderKind = iota
	kindInt32
	kindInt64
	kindUint32
	kindUint64
	kindUUID
	kindPath
	kindFullPath
)

// placeholder is a parsed `<name:kind>` segment.
type placeholder struct {
	name string
	kind placeholderKind
}

// parseSegment reports whether raw is a `<name>` or `<name:kind>`
// special segment, returning its parsed form when it is. A bare
// `<name>` defaults to kindString; an unrecognized kind also falls
// back to kindString.
func parseSegment(raw string) (placeholder, bool) {
	if len(raw) < 2 || raw[0] != '<' || raw[len(raw)-1] != '>' {
		return placeholder{}, false
	}
	inner := raw[1 : len(raw)-1]
	name, kindStr, hasKind := strings.Cut(inner, ":")
	if name == "" {
		return placeholder{}, false
	}
	kind := kindString
	if hasKind {
		switch kindStr {
		case "str":
			kind = kindString
		case "int", "i32":
			kind = kindInt32
		case "i64":
			kind = kindInt64
		case "u32":
			kind = kindUint32
		case "u64":
			kind = kindUint64
		case "uuid":
			kind = kindUUID
		case "path", "*":
			kind = kindPath
		case "full_path", "**":
			kind = kindFullPath
		default:
			kind = kindString
		}
	}
	return placeholder{name: name, kind: kind}, true
}
