// Package compose renders fetched metadata into canonical markdown documents.
//
// Every function here is pure: the output depends only on the arguments,
// so composing the same record twice produces byte-identical text, the same
// DocumentID and the same content hash.
package compose
