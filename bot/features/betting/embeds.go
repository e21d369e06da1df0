package betting

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"studyrace/bot/common"
	"studyrace/models"
)

var betTypeLabels = map[models.BetType]string{
	models.BetTypeWin:     "to win",
	models.BetTypePlace:   "to place (top 3)",
	models.BetTypeSupport: "in support",
}

// BuildBetEmbed confirms a placed bet with its locked odds.
// remaining is the bettor's balance after the stake.
func BuildBetEmbed(bet *models.Bet, runnerName string, remaining int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎟️ Bet placed",
		Color:       common.ColorSuccess,
		Description: fmt.Sprintf("**%s coins** on **%s** %s", common.FormatBalance(bet.Amount), runnerName, betTypeLabels[bet.Type]),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Odds",
				Value:  bet.Odds.StringFixed(2) + "x",
				Inline: true,
			},
			{
				Name:   "Potential payout",
				Value:  fmt.Sprintf("%s coins", common.FormatBalance(bet.ExpectedPayout)),
				Inline: true,
			},
			{
				Name:   "Balance",
				Value:  fmt.Sprintf("%s coins", common.FormatBalance(remaining)),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Odds are locked at placement",
		},
	}
}
