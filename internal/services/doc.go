// Package services defines the shared error taxonomy and context annotations
// used across the organizer.
//
// Errors produced by the codec, mover, and walker are tagged with sentinel
// markers via Wrap so callers can classify failures without string matching.
// Context helpers carry the run identifier and the directory currently being
// visited, which the logging package surfaces as structured attributes.
package services
