// Package parser turns raw LLM output into validated structured artifacts.
//
// Parsing happens in two steps with distinct failure modes:
//
//  1. Lenient pre-processing: one leading code fence (with or without a
//     language tag) and one trailing fence are stripped, then whitespace is
//     trimmed. The remainder must be a single JSON value, otherwise a
//     *domain.ParseError carrying the raw text is returned.
//  2. Strict shape validation: required keys and value kinds are checked per
//     artifact. A mismatch is a *domain.ValidationError, never a ParseError.
//
// The free-form chat answer is not parsed.
package parser
