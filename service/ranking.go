package service

import (
	"bytes"
	"sort"

	"studyrace/models"
)

// Rank orders the roster by study minutes, highest first, and assigns
// positions 1..N. Ties go to the earlier enrollment, then to the lower
// participant id, so the order is the same on every call.
// The returned slice holds the same participants; the input slice is not reordered.
func Rank(roster []*models.RaceParticipant) []*models.RaceParticipant {
	ranked := make([]*models.RaceParticipant, len(roster))
	copy(ranked, roster)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.StudyMinutes != b.StudyMinutes {
			return a.StudyMinutes > b.StudyMinutes
		}
		if !a.EnrolledAt.Equal(b.EnrolledAt) {
			return a.EnrolledAt.Before(b.EnrolledAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})

	for i, p := range ranked {
		p.Position = i + 1
	}
	return ranked
}

// rankUsers orders users by metric, highest first, with the same tie-break
// shape as Rank: earlier registration, then lower id.
func rankUsers(users []*models.User, metric func(*models.User) int64) []*models.LeaderboardEntry {
	sorted := make([]*models.User, len(users))
	copy(sorted, users)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ma, mb := metric(a), metric(b); ma != mb {
			return ma > mb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})

	entries := make([]*models.LeaderboardEntry, len(sorted))
	for i, u := range sorted {
		entries[i] = &models.LeaderboardEntry{
			Rank:              i + 1,
			UserID:            u.ID,
			Username:          u.Username,
			Balance:           u.Balance,
			TotalStudyMinutes: u.TotalStudyMinutes,
		}
	}
	return entries
}
