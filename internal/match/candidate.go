package match

import (
	"sort"
)

// Member is a named, optionally typed symbol that may be suggested.
type Member struct {
	Name string
	Desc string
}

// Candidate is a scored suggestion for a missed lookup.
type Candidate struct {
	Member Member

	NameScore     float64 // Normalized Levenshtein similarity (0-1)
	Compat        DescriptorCompatibility
	CombinedScore float64
}

// CandidateList sorts by combined score, best first.
type CandidateList []Candidate

// DefaultMinScore is the minimum combined score of a suggestion.
const DefaultMinScore = 0.6

// RankCandidates scores every member of pool against want.
func RankCandidates(want Member, pool []Member) CandidateList {
	candidates := make(CandidateList, 0, len(pool))

	for _, m := range pool {
		nameScore := NormalizedLevenshteinScore(want.Name, m.Name)
		compat := ScoreDescriptor(want.Desc, m.Desc)

		candidates = append(candidates, Candidate{
			Member:        m,
			NameScore:     nameScore,
			Compat:        compat,
			CombinedScore: combinedScore(nameScore, compat),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// combinedScore weighs the name at 70% and the descriptor at 30%.
func combinedScore(nameScore float64, compat DescriptorCompatibility) float64 {
	const (
		nameWeight = 0.7
		descWeight = 0.3
	)

	var descScore float64

	switch compat {
	case DescIdentical:
		descScore = 1.0
	case DescSameShape:
		descScore = 0.7
	case DescUnknown:
		descScore = 0.5
	case DescIncompatible:
		descScore = 0.0
	}

	return nameScore*nameWeight + descScore*descWeight
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface; ties sort by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return c[i].Member.Name < c[j].Member.Name
}

// Top returns the first n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if there is none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var out CandidateList

	for _, cand := range c {
		if cand.CombinedScore >= threshold {
			out = append(out, cand)
		}
	}

	return out
}

// Suggest returns up to n member names of pool close to want.
func Suggest(want Member, pool []Member, n int) []string {
	all := RankCandidates(want, pool)
	if best := all.Best(); best == nil || best.CombinedScore < DefaultMinScore {
		return nil
	}

	ranked := all.AboveThreshold(DefaultMinScore).Top(n)

	out := make([]string, 0, len(ranked))
	for _, cand := range ranked {
		switch {
		case cand.Member.Desc == "":
			out = append(out, cand.Member.Name)
		case cand.Member.Desc[0] == '(':
			out = append(out, cand.Member.Name+cand.Member.Desc)
		default:
			out = append(out, cand.Member.Name+":"+cand.Member.Desc)
		}
	}

	return out
}
