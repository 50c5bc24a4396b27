// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the query engine to reach the Ready state:
//
//   - EmbeddingService: Maps text to vectors (ingestion and query time)
//   - VectorIndex: Stores index entries and answers similarity search
//   - Reranker: Cross-encoder scoring of (query, passage) pairs
//   - LLMService: Text generation
//   - ComponentLoader: Builds the four services above from settings
//
// # Supporting Interfaces
//
//   - Normaliser / NormaliserRegistry: Raw bytes to document text
//   - PostProcessor / PostProcessorPipeline: Document to chunks
//   - PromptStore: Editable prompt templates
//   - ConfigStore: Application configuration
//   - AIConfigValidator: Connectivity checks for settings
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - MetricsRecorder: Pipeline instrumentation. Nil records nothing.
//   - AtomicRebuilder: Implemented by indexes that can swap contents in one step.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
