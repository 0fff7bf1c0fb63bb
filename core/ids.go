package core

import (
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// EscapeIDPart makes s safe for use inside a DocumentID.
// Leading and trailing whitespace is trimmed first, so "1.0" and " 1.0 "
// are the same part. Letters, digits, '.' and '-' are then kept; every other
// byte, '_' included, becomes "_XX" in upper-case hex. The mapping is
// injective on trimmed input: distinct trimmed strings never collide.
func EscapeIDPart(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}
	return b.String()
}

// ModDocumentID returns the canonical id for a (project, version) pair.
// Format: mod_<project>_v<escaped version>
func ModDocumentID(projectID, version string) DocumentID {
	return DocumentID("mod_" + EscapeIDPart(projectID) + "_v" + EscapeIDPart(version))
}

// PackDocumentID returns the id of a modpack overview document.
// Format: pack_<escaped name>_<escaped version>
func PackDocumentID(name, version string) DocumentID {
	return DocumentID("pack_" + EscapeIDPart(name) + "_" + EscapeIDPart(version))
}

// OverrideDocumentID returns the id of a pack override document.
// Format: override_<escaped pack>_<escaped version>_<escaped path>
func OverrideDocumentID(pack PackContext, path string) DocumentID {
	return DocumentID("override_" + EscapeIDPart(pack.Name) + "_" + EscapeIDPart(pack.Version) + "_" + EscapeIDPart(path))
}
