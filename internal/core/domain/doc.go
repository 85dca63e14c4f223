// Package domain contains the core types of the geomosaic pipeline:
// the georeference interchange record, preview metadata, tile layout
// descriptions, run history entries and the domain error taxonomy.
package domain
