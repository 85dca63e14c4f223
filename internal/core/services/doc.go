// Package services implements the core pipeline logic: georeference
// extraction and injection, preview metadata derivation, tile layout
// discovery and pipeline orchestration.
package services
