package balance

import (
	"context"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"studyrace/bot/common"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	user, err := common.EnsureUser(ctx, f.userService, i)
	if err != nil {
		log.Errorf("Error getting user for /balance: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	history, err := f.userService.BalanceHistory(ctx, user.ID, historyLimit)
	if err != nil {
		log.WithFields(log.Fields{
			"userID": user.ID,
			"error":  err,
		}).Error("Error loading balance history")
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, common.InvokingUser(i).ID)
	common.RespondWithEmbed(s, i, BuildBalanceEmbed(user, history, displayName), true)
}
