// Package diagnostic provides structured warnings, errors, and progress
// reporting for a conversion run.
//
// Key capabilities:
//   - Mapping conflict warnings (first definition wins)
//   - Lookup misses that still look like intermediate synthetic names
//   - Per-entry rewrite failures, with the original bytes retained
//   - A Sink that threads a zap logger through the pipeline explicitly
//   - ParseError, the fatal error for malformed mapping or sidecar text
package diagnostic
