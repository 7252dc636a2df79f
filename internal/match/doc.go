// Package match ranks near-miss names for lookup diagnostics.
//
// Key functions:
//   - NormalizeIdent: folds an identifier for fuzzy comparison
//   - Levenshtein: edit distance between strings
//   - ScoreDescriptor: compares two JVM descriptors
//   - RankCandidates / Suggest: orders known members by similarity
package match
