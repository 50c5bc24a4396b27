// Package normalisers turns raw corpus files and uploaded resumes into plain
// text documents. Each normaliser handles a set of MIME types; the Registry
// picks the highest-priority one for a document.
package normalisers
