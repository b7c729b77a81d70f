// Package extract implements the seven-step extraction pipeline: parse,
// menu exclusion, main-content selection, image handling, classification,
// the quality gate, and link harvesting. See Extractor.Extract.
package extract
