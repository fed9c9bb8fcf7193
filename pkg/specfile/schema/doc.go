// Package schema describes the shape of a specification document: its
// sections, the section layout of each kind, the supported version range
// and the decoding of the header and settings sections.
//
// Decoders accumulate every problem they find into an errors.ErrorList so
// a single pass reports all of them, each with its field path and, where a
// near match exists, a suggestion.
package schema
