// Package core turns CSV files into JSON-ready records.
//
// This package holds all domain logic, independent of HTTP. It is used by
// the web handlers and the csvparse CLI alike.
//
// # Path Resolution
//
// [Resolver] validates an untrusted path string against the base directory:
//
//	r, _ := core.NewResolver("/app/data")
//	r.Resolve("sales.csv")        // "/app/data/sales.csv"
//	r.Resolve("../../etc/passwd") // error wrapping ErrPathEscape
//	r.Resolve("/srv/other.csv")   // "/srv/other.csv", absolute paths pass
//
// Resolution is pure string work; it never stats the file.
//
// # Conversion
//
// [Converter] reads a file as UTF-8 and parses it with standard CSV quoting.
// The first non-blank row is the header. Each later non-blank row becomes a
// [Record] whose keys follow column order. Cells are trimmed. Short rows are
// padded with "" and extra cells are dropped.
//
// # Errors
//
// Every error wraps one kind: [ErrInvalidInput], [ErrPathEscape],
// [ErrFileRead], [ErrParse] or [ErrBusy]. [Message] returns the client-safe
// text and [MapError] adds a support code. Mapping kinds to transport status
// codes is the caller's job.
package core
