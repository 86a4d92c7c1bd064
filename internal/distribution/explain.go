// internal/distribution/explain.go
package distribution

import (
	"fmt"
	"sort"
	"strings"
)

const emptyPoolExplanation = "No eligible team members available for this lead"

// factorPhrases render factor names inside explanation strings.
var factorPhrases = map[string]string{
	FactorTerritory:   "territory match",
	FactorCapacity:    "available capacity",
	FactorExpertise:   "industry expertise",
	FactorPerformance: "conversion performance",
	FactorFairness:    "rotation fairness",
}

// buildExplanation names the winner and cites the one or two factors with
// the largest weighted contribution. The winner's display name appears
// verbatim in the string; downstream consumers match on it.
func buildExplanation(winner rankedCandidate) string {
	byContribution := make([]Factor, len(winner.Factors))
	copy(byContribution, winner.Factors)
	sort.SliceStable(byContribution, func(i, j int) bool {
		return byContribution[i].Contribution > byContribution[j].Contribution
	})

	reasons := []string{factorPhrases[byContribution[0].Name]}
	if len(byContribution) > 1 {
		second := byContribution[1]
		// The runner-up factor is worth citing only when it pulled real
		// weight next to the dominant one.
		if second.Contribution > 0 && second.Contribution >= 0.5*byContribution[0].Contribution {
			reasons = append(reasons, factorPhrases[second.Name])
		}
	}

	return fmt.Sprintf("Assigned to %s based on %s (total score %.2f)",
		winner.Member.Name, strings.Join(reasons, " and "), winner.Total)
}
