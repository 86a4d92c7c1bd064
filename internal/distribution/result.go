// internal/distribution/result.go
package distribution

// Factor names, in the canonical order every result reports them.
const (
	FactorTerritory   = "territory"
	FactorCapacity    = "capacity"
	FactorExpertise   = "expertise"
	FactorPerformance = "performance"
	FactorFairness    = "fairness"
)

// Factor is one scored dimension of a distribution decision.
type Factor struct {
	Name         string  `json:"factor"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// AssignedMember identifies the winning team member.
type AssignedMember struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Alternative is a runner-up candidate surfaced for transparency.
type Alternative struct {
	UserID string  `json:"userId"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
}

// Result is the outcome of one distribution call, fully built before it is
// returned and never mutated afterwards. Factors carries exactly five
// entries on success and is empty when no member was eligible. Slices are
// always non-nil so an empty result marshals as [] rather than null.
type Result struct {
	Success      bool            `json:"success"`
	AssignedTo   *AssignedMember `json:"assignedTo"`
	Explanation  string          `json:"explanation"`
	Factors      []Factor        `json:"factors"`
	Alternatives []Alternative   `json:"alternativeCandidates"`
}
