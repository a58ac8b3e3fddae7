// Package scoremath holds the fixed scoring formulas of the community pipeline.
// Every function here is pure: no I/O, no clock, no shared state.
package scoremath

import "math"

// Expertise tiers as stored on the user record.
const (
	TierBeginner     = "Beginner"
	TierIntermediate = "Intermediate"
	TierExpert       = "Expert"
)

// Numeric value of each tier used by the vote weight formula.
const (
	ExpertiseBeginner     = 10
	ExpertiseIntermediate = 50
	ExpertiseExpert       = 100
)

// Confidence model constants.
const (
	PointsPerSolve      = 10
	MaxConfidence       = 100
	DecayGraceDays      = 7
	DecayPerWeek        = 0.05
	MaxDecay            = 0.5
	ErrorRateThreshold  = 0.40
	ErrorPenaltyFactor  = 0.85
	VerifiedBonus       = 10.0
	MinVoteWeight       = 2.0
	MaxAIRelevance      = 100
	StruggleAttempts    = 3
	RecentAttemptWindow = 5
)

// Direction is the signed value of a vote. Absent is the zero value.
type Direction int8

const (
	Absent Direction = 0
	Up     Direction = 1
	Down   Direction = -1
)

// ParseDirection maps the wire/storage representation to a Direction.
// Anything other than "up" or "down" is Absent.
func ParseDirection(s string) Direction {
	switch s {
	case "up":
		return Up
	case "down":
		return Down
	default:
		return Absent
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "none"
	}
}

// ExpertiseValue maps a tier to its formula value. Unknown tiers count as Beginner.
func ExpertiseValue(tier string) int {
	switch tier {
	case TierExpert:
		return ExpertiseExpert
	case TierIntermediate:
		return ExpertiseIntermediate
	default:
		return ExpertiseBeginner
	}
}

// VoteWeight computes the magnitude of one voter's vote on one contribution:
//
//	weight = 1 + reputation/100 + expertise/10 + aiRelevance/50
//
// Negative reputation is treated as 0 and relevance is clamped to [0,100]. The
// lowest tier still adds 10/10, so the minimum weight is 2.0.
func VoteWeight(reputation int, expertise string, aiRelevance int) float64 {
	if reputation < 0 {
		reputation = 0
	}
	aiRelevance = clampInt(aiRelevance, 0, MaxAIRelevance)

	return 1 +
		float64(reputation)/100 +
		float64(ExpertiseValue(expertise))/10 +
		float64(aiRelevance)/50
}

// VoteDelta is the change to a contribution's weighted score when a voter moves
// from one direction to another.
func VoteDelta(before, after Direction, weight float64) float64 {
	return float64(after-before) * weight
}

// VoteCountDelta is the change to a contribution's vote count for a transition.
// Switching between up and down keeps the count.
func VoteCountDelta(before, after Direction) int {
	switch {
	case before == Absent && after != Absent:
		return 1
	case before != Absent && after == Absent:
		return -1
	default:
		return 0
	}
}

// Confidence is the result of the mastery model for one (user, topic).
type Confidence struct {
	Score       int
	DecayFactor float64
}

// ConfidenceScore applies the mastery model:
//   - base = min(100, solved*10)
//   - after more than 7 inactive days, lose 5% per full week, at most 50%
//   - an error rate above 0.40 multiplies the result by 0.85
//
// Decay and penalty compound.
func ConfidenceScore(solvedCount, daysInactive int, errorRate float64) Confidence {
	if solvedCount < 0 {
		solvedCount = 0
	}
	base := math.Min(MaxConfidence, float64(solvedCount*PointsPerSolve))

	decay := 1.0
	if daysInactive > DecayGraceDays {
		weeks := daysInactive / 7
		decay = 1 - math.Min(MaxDecay, float64(weeks)*DecayPerWeek)
	}

	adjusted := base * decay
	if errorRate > ErrorRateThreshold {
		adjusted *= ErrorPenaltyFactor
	}

	score := clampInt(int(math.Round(adjusted)), 0, MaxConfidence)
	return Confidence{Score: score, DecayFactor: decay}
}

// ErrorRate is the share of struggled attempts (more than 3 tries) among the
// given recent attempt counts. An empty window has no errors.
func ErrorRate(recentAttempts []int) float64 {
	if len(recentAttempts) == 0 {
		return 0
	}
	struggles := 0
	for _, a := range recentAttempts {
		if a > StruggleAttempts {
			struggles++
		}
	}
	return float64(struggles) / float64(len(recentAttempts))
}

// ContributionScore is what one contribution adds to its author's leaderboard total.
func ContributionScore(weightedScore float64, verified bool) float64 {
	if verified {
		return weightedScore + VerifiedBonus
	}
	return weightedScore
}

// Round2 rounds to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
