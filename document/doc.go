// Package document defines the tree returned by brepio interrogation.
//
// A Document is one of:
//   - *Object: an ordered mapping of names to documents
//   - Array: an ordered sequence of documents
//   - a scalar: Bool, Number, Int or String
//
// Object keys keep their insertion order so that encoded output is
// reproducible byte for byte across runs, which golden tests and
// downstream diffing rely on.
//
// # Encoding
//
// Documents encode to JSON through [Encode] or the standard
// encoding/json package (all node types implement json.Marshaler where
// the default encoding would lose information). [Parse] reads JSON back
// into a Document, keeping object key order.
package document
