// Package errs defines the typed error kinds shared across the module:
// StoreOpenError, FormatError, BadRegion, MalformedKey, TooManyGroups,
// and EndOfStream. Each is a small struct with an Error() method;
// callers add path context with github.com/pkg/errors where needed.
package errs

import "fmt"

// StoreOpenError indicates one of the four per-prefix artifacts (.bcf,
// .csi, .pbf, .spl) could not be located or opened.
type StoreOpenError struct {
	Prefix string
	Cause  error
}

func (e *StoreOpenError) Error() string {
	return fmt.Sprintf("store open %q: %v", e.Prefix, e.Cause)
}

func (e *StoreOpenError) Unwrap() error { return e.Cause }

// FormatError indicates a header or record failed to parse, or a
// required invariant (such as the presence of the _row info field) did
// not hold.
type FormatError struct {
	Prefix string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Prefix == "" {
		return fmt.Sprintf("format error: %s", e.Reason)
	}
	return fmt.Sprintf("format error in %q: %s", e.Prefix, e.Reason)
}

// BadRegion indicates a region string did not parse against the header's
// contig dictionary.
type BadRegion struct {
	Region string
	Reason string
}

func (e *BadRegion) Error() string {
	return fmt.Sprintf("bad region %q: %s", e.Region, e.Reason)
}

// MalformedKey indicates an allele-key string (chr:pos:ref:alt or
// chr:pos:rlen:alt) failed to parse.
type MalformedKey struct {
	Key    string
	Reason string
}

func (e *MalformedKey) Error() string {
	return fmt.Sprintf("malformed allele key %q: %s", e.Key, e.Reason)
}

// TooManyGroups indicates AddGroup would push the active group count
// past the 8-group hard cap.
type TooManyGroups struct {
	Limit int
}

func (e *TooManyGroups) Error() string {
	return fmt.Sprintf("cannot add group: limit of %d groups reached", e.Limit)
}

// EndOfStream is returned by Read/ReadOne to signal normal termination.
// It is distinct from an error: callers test for it with ==, the way
// io.EOF is tested, and it is never wrapped.
var EndOfStream = &endOfStream{}

type endOfStream struct{}

func (*endOfStream) Error() string { return "end of stream" }
