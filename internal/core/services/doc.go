// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Beyond the standard library they use
// only golang.org/x/sync and golang.org/x/time for ingestion fan-out.
package services
