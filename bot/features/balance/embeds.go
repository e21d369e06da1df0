package balance

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"studyrace/bot/common"
	"studyrace/models"
)

var transactionLabels = map[models.TransactionType]string{
	models.TransactionTypeInitial:     "Starting grant",
	models.TransactionTypeStudyReward: "Study reward",
	models.TransactionTypeBetStake:    "Bet stake",
}

// BuildBalanceEmbed shows the coin balance with the latest ledger entries
func BuildBalanceEmbed(user *models.User, history []*models.BalanceHistory, displayName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("💰 %s's coins", displayName),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Balance",
				Value:  fmt.Sprintf("**%s coins**", common.FormatBalance(user.Balance)),
				Inline: true,
			},
			{
				Name:   "Studied",
				Value:  common.FormatMinutes(user.TotalStudyMinutes),
				Inline: true,
			},
		},
	}

	if len(history) == 0 {
		return embed
	}

	var lines []string
	for _, h := range history {
		label, ok := transactionLabels[h.TransactionType]
		if !ok {
			label = string(h.TransactionType)
		}
		sign := "+"
		if h.ChangeAmount < 0 {
			sign = ""
		}
		lines = append(lines, fmt.Sprintf("%s `%s%s` %s",
			common.FormatDiscordTimestamp(h.CreatedAt, "R"), sign, common.FormatBalance(h.ChangeAmount), label))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Recent activity",
		Value: strings.Join(lines, "\n"),
	})
	return embed
}
