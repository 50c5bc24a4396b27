// Package domain defines the core business entities for prepkit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A corpus document after normalisation
//   - Chunk: A bounded span of a document used for retrieval
//   - IndexEntry: A chunk paired with its embedding vector
//   - RetrievalResult / RerankedResult: Per-query ranked candidates
//   - RoadmapItem, SkillsAnalysis, AtsReport, Experience: Structured artifacts
//   - EngineState: Lifecycle of the query engine
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
