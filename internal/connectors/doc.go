// Package connectors provides document sources for corpus ingestion.
// The filesystem connector walks a local knowledge base directory.
package connectors
