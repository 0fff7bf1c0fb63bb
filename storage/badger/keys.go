package badger

import (
	"github.com/poiesic/packvault/core"
)

// Key prefixes for different data types
const (
	documentPrefix = "doc:"
)

// makeDocumentKey generates a key for a document by ID.
// Format: doc:<id>
func makeDocumentKey(id core.DocumentID) []byte {
	buf := make([]byte, 0, len(documentPrefix)+len(id))
	buf = append(buf, documentPrefix...)
	return append(buf, id...)
}
