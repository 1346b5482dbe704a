// Package service contains the application use cases that sit between the
// HTTP layer and the task engine.
//
// GenerationService accepts generation requests, creates the task record,
// hands the pipeline run to the task runner and projects task records into
// the status payload returned to pollers. IconCatalog composes object
// storage with the Postgres catalog and serves both the pipeline (as its
// storage collaborator) and the catalog endpoints.
//
// Services receive their dependencies through constructor injection and
// depend on interfaces, never on a specific backend.
package service
