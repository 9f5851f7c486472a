// Package dataset defines the year-indexed data model shared by every
// stage of the harmonization engine: a single Observation, a per-variable
// Series, and the Panel that holds all variables for one run.
//
// Absence is always explicit. A missing value is represented by the
// Missing flag on Observation, never by a sentinel number, so downstream
// arithmetic can distinguish "zero" from "unknown".
package dataset
