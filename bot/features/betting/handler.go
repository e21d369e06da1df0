package betting

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"studyrace/bot/common"
	"studyrace/models"
	"studyrace/service"
)

func (f *Feature) handleBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.Options(i.ApplicationCommandData().Options)

	raceOpt, playerOpt, typeOpt, amountOpt := opts["race"], opts["player"], opts["type"], opts["amount"]
	if raceOpt == nil || playerOpt == nil || typeOpt == nil || amountOpt == nil {
		common.RespondWithError(s, i, "Please provide the race, player, bet type and amount.")
		return
	}

	raceID, err := uuid.Parse(strings.TrimSpace(raceOpt.StringValue()))
	if err != nil {
		common.RespondWithError(s, i, "Unknown race. Pick one from the list.")
		return
	}

	bettor, err := common.EnsureUser(ctx, f.userService, i)
	if err != nil {
		log.Errorf("Error getting user for /bet: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	target := playerOpt.UserValue(s)
	if target == nil {
		common.RespondWithError(s, i, "Invalid player.")
		return
	}
	targetDiscordID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Invalid player.")
		return
	}
	runner, err := f.userService.GetByDiscordID(ctx, targetDiscordID)
	if err != nil {
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	roster, err := f.raceService.Standings(ctx, raceID)
	if err != nil {
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}
	participant := FindParticipant(roster, runner.ID)
	if participant == nil {
		common.RespondWithError(s, i, common.UserMessage(service.ErrInvalidParticipant))
		return
	}

	bet, err := f.bettingService.PlaceBet(ctx, bettor.ID, raceID, participant.ID, models.BetType(typeOpt.StringValue()), amountOpt.IntValue())
	if err != nil {
		log.WithFields(log.Fields{
			"bettorID":      bettor.ID,
			"raceID":        raceID,
			"participantID": participant.ID,
			"error":         err,
		}).Info("Bet rejected")
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	runnerName := common.GetDisplayName(s, i.GuildID, target.ID)
	common.RespondWithEmbed(s, i, BuildBetEmbed(bet, runnerName, bettor.Balance-bet.Amount), false)
}

// FindParticipant returns the roster entry of userID, nil if not enrolled
func FindParticipant(roster []*models.RaceParticipant, userID uuid.UUID) *models.RaceParticipant {
	for _, p := range roster {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}
