// Package domain contains the core entities of the icon generation platform:
// the generation task record with its status state machine and sparse patch
// type, the concepts and transcript segments the pipeline produces, and the
// icon catalog record. It is independent of any storage or transport.
package domain
