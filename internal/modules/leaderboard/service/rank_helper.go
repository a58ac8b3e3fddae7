package service

import (
	"sort"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/dev-lov-oper/Clarix-AI/pkg/scoremath"
	"github.com/google/uuid"
)

const (
	// TopN is how many authors a snapshot keeps.
	TopN = 3
	// PeriodDays is the look-back window of one aggregation.
	PeriodDays = 30
)

// RankAuthors sums each author's contribution scores and returns the best n,
// highest first. Equal scores are ordered by author id so reruns produce the
// same list.
func RankAuthors(contributions []entity.Contribution, n int) []entity.LeaderEntry {
	totals := make(map[uuid.UUID]float64)
	for i := range contributions {
		c := &contributions[i]
		totals[c.AuthorID] += scoremath.ContributionScore(c.WeightedScore, c.ValidationStatus == entity.ValidationVerified)
	}

	leaders := make([]entity.LeaderEntry, 0, len(totals))
	for author, score := range totals {
		leaders = append(leaders, entity.LeaderEntry{UserID: author, Score: scoremath.Round2(score)})
	}

	sort.Slice(leaders, func(i, j int) bool {
		if leaders[i].Score != leaders[j].Score {
			return leaders[i].Score > leaders[j].Score
		}
		return leaders[i].UserID.String() < leaders[j].UserID.String()
	})

	if len(leaders) > n {
		leaders = leaders[:n]
	}
	return leaders
}

// HasPositiveLeader reports whether the top author qualifies for promotion.
func HasPositiveLeader(leaders []entity.LeaderEntry) bool {
	return len(leaders) > 0 && leaders[0].Score > 0
}
