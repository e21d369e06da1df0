package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"studyrace/models"
)

type userResponse struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	DiscordID          *int64    `json:"discord_id,omitempty"`
	Balance            int64     `json:"balance"`
	TotalStudyMinutes  int64     `json:"total_study_minutes"`
	PeriodStudyMinutes int64     `json:"period_study_minutes"`
	PeriodGoalMinutes  int64     `json:"period_goal_minutes"`
	CreatedAt          time.Time `json:"created_at"`
}

func toUser(u *models.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Username:           u.Username,
		DiscordID:          u.DiscordID,
		Balance:            u.Balance,
		TotalStudyMinutes:  u.TotalStudyMinutes,
		PeriodStudyMinutes: u.PeriodStudyMinutes,
		PeriodGoalMinutes:  u.PeriodGoalMinutes,
		CreatedAt:          u.CreatedAt,
	}
}

type sessionResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	SubjectID       uuid.UUID `json:"subject_id"`
	DurationMinutes int64     `json:"duration_minutes"`
	CoinsEarned     int64     `json:"coins_earned"`
	StudiedAt       time.Time `json:"studied_at"`
}

func toSession(s *models.StudySession) sessionResponse {
	return sessionResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		SubjectID:       s.SubjectID,
		DurationMinutes: s.DurationMinutes,
		CoinsEarned:     s.CoinsEarned,
		StudiedAt:       s.StudiedAt,
	}
}

type sessionResultResponse struct {
	Session         sessionResponse `json:"session"`
	User            userResponse    `json:"user"`
	CreditedRaceIDs []uuid.UUID     `json:"credited_race_ids"`
}

type progressResponse struct {
	UserID        uuid.UUID `json:"user_id"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	StudyMinutes  int64     `json:"study_minutes"`
	GoalMinutes   int64     `json:"goal_minutes"`
	Percent       int       `json:"percent"`
	TodayMinutes  int64     `json:"today_minutes"`
	TodaySessions int       `json:"today_sessions"`
}

type subjectResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func toSubjects(subjects []*models.Subject) []subjectResponse {
	out := make([]subjectResponse, len(subjects))
	for i, s := range subjects {
		out[i] = subjectResponse{ID: s.ID, Name: s.Name}
	}
	return out
}

type raceResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Status          models.RaceStatus `json:"status"`
	RaceStartsAt    time.Time         `json:"race_starts_at"`
	RaceEndsAt      time.Time         `json:"race_ends_at"`
	BettingStartsAt *time.Time        `json:"betting_starts_at,omitempty"`
	BettingEndsAt   *time.Time        `json:"betting_ends_at,omitempty"`
	TotalPot        int64             `json:"total_pot"`
	FirstPrize      int64             `json:"first_prize"`
	SecondPrize     int64             `json:"second_prize"`
	ThirdPrize      int64             `json:"third_prize"`
}

func toRace(r *models.Race) raceResponse {
	return raceResponse{
		ID:              r.ID,
		Name:            r.Name,
		Status:          r.Status,
		RaceStartsAt:    r.RaceStartsAt,
		RaceEndsAt:      r.RaceEndsAt,
		BettingStartsAt: r.BettingStartsAt,
		BettingEndsAt:   r.BettingEndsAt,
		TotalPot:        r.TotalPot,
		FirstPrize:      r.FirstPrize,
		SecondPrize:     r.SecondPrize,
		ThirdPrize:      r.ThirdPrize,
	}
}

type participantResponse struct {
	ID           uuid.UUID `json:"id"`
	RaceID       uuid.UUID `json:"race_id"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	StudyMinutes int64     `json:"study_minutes"`
	Position     int       `json:"position,omitempty"`
	WinOdds      *string   `json:"win_odds"`
	PlaceOdds    *string   `json:"place_odds"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

func oddsString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

func toParticipant(p *models.RaceParticipant) participantResponse {
	return participantResponse{
		ID:           p.ID,
		RaceID:       p.RaceID,
		UserID:       p.UserID,
		Username:     p.Username,
		StudyMinutes: p.StudyMinutes,
		Position:     p.Position,
		WinOdds:      oddsString(p.WinOdds),
		PlaceOdds:    oddsString(p.PlaceOdds),
		EnrolledAt:   p.EnrolledAt,
	}
}

func toParticipants(roster []*models.RaceParticipant) []participantResponse {
	out := make([]participantResponse, len(roster))
	for i, p := range roster {
		out[i] = toParticipant(p)
	}
	return out
}

type betResponse struct {
	ID             uuid.UUID      `json:"id"`
	BettorID       uuid.UUID      `json:"bettor_id"`
	RaceID         uuid.UUID      `json:"race_id"`
	ParticipantID  uuid.UUID      `json:"participant_id"`
	BetType        models.BetType `json:"bet_type"`
	Amount         int64          `json:"amount"`
	Odds           string         `json:"odds"`
	ExpectedPayout int64          `json:"expected_payout"`
	CreatedAt      time.Time      `json:"created_at"`
}

func toBet(b *models.Bet) betResponse {
	return betResponse{
		ID:             b.ID,
		BettorID:       b.BettorID,
		RaceID:         b.RaceID,
		ParticipantID:  b.ParticipantID,
		BetType:        b.Type,
		Amount:         b.Amount,
		Odds:           b.Odds.StringFixed(2),
		ExpectedPayout: b.ExpectedPayout,
		CreatedAt:      b.CreatedAt,
	}
}

type balanceHistoryResponse struct {
	ID              int64                  `json:"id"`
	BalanceBefore   int64                  `json:"balance_before"`
	BalanceAfter    int64                  `json:"balance_after"`
	ChangeAmount    int64                  `json:"change_amount"`
	TransactionType models.TransactionType `json:"transaction_type"`
	Metadata        map[string]any         `json:"metadata,omitempty"`
	RelatedID       *uuid.UUID             `json:"related_id,omitempty"`
	RelatedType     *models.RelatedType    `json:"related_type,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

func toBalanceHistory(h *models.BalanceHistory) balanceHistoryResponse {
	return balanceHistoryResponse{
		ID:              h.ID,
		BalanceBefore:   h.BalanceBefore,
		BalanceAfter:    h.BalanceAfter,
		ChangeAmount:    h.ChangeAmount,
		TransactionType: h.TransactionType,
		Metadata:        h.TransactionMetadata,
		RelatedID:       h.RelatedID,
		RelatedType:     h.RelatedType,
		CreatedAt:       h.CreatedAt,
	}
}

type registerRequest struct {
	Username string `json:"username"`
}

type recordSessionRequest struct {
	SubjectID       uuid.UUID  `json:"subject_id"`
	DurationMinutes int64      `json:"duration_minutes"`
	StudiedAt       *time.Time `json:"studied_at,omitempty"`
}

type goalRequest struct {
	GoalMinutes int64 `json:"goal_minutes"`
}

type subjectsRequest struct {
	Names []string `json:"names"`
}

type enrollRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type placeBetRequest struct {
	BettorID      uuid.UUID `json:"bettor_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	BetType       string    `json:"bet_type"`
	Amount        int64     `json:"amount"`
}
