package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"studyrace/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(username string) *models.User {
	return &models.User{
		ID:                uuid.New(),
		Username:          username,
		Balance:           1000,
		PeriodGoalMinutes: 600,
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(username string, balance int64) *models.User {
	user := CreateTestUser(username)
	user.Balance = balance
	return user
}

// CreateTestDiscordUser creates a test user linked to a Discord account
func CreateTestDiscordUser(discordID int64) *models.User {
	user := CreateTestUser(fmt.Sprintf("discord-%d", discordID))
	user.DiscordID = &discordID
	return user
}

// CreateTestSubject creates a test subject
func CreateTestSubject(name string) *models.Subject {
	return &models.Subject{ID: uuid.New(), Name: name}
}

// CreateTestRace creates a race whose betting window is the day before it starts
func CreateTestRace(startsAt time.Time) *models.Race {
	bStart := startsAt.Add(-24 * time.Hour)
	bEnd := startsAt
	race, err := models.NewRace("Test race", startsAt, startsAt.Add(7*24*time.Hour), &bStart, &bEnd, [3]int64{500, 300, 100})
	if err != nil {
		panic(err)
	}
	return race
}

// CreateTestParticipant creates a participant with the given minutes and no odds
func CreateTestParticipant(raceID, userID uuid.UUID, minutes int64) *models.RaceParticipant {
	p := models.NewRaceParticipant(raceID, userID, time.Now())
	p.StudyMinutes = minutes
	return p
}

// CreateTestBet creates a win bet at the given odds
func CreateTestBet(bettorID, raceID, participantID uuid.UUID, amount int64, odds string) *models.Bet {
	return models.NewBet(bettorID, raceID, participantID, models.BetTypeWin, amount, decimal.RequireFromString(odds), time.Now())
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID uuid.UUID, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
