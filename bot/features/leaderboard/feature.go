package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"studyrace/bot/common"
	"studyrace/models"
	"studyrace/service"
)

const size = 10

type Feature struct {
	userService service.UserService
}

func New(userService service.UserService) *Feature {
	return &Feature{userService: userService}
}

// HandleCommand handles /leaderboard [by:coins|study]
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	kind := service.LeaderboardByCoins
	if opt, ok := common.Options(i.ApplicationCommandData().Options)["by"]; ok {
		kind = service.LeaderboardKind(opt.StringValue())
	}

	entries, err := f.userService.Leaderboard(ctx, kind, size)
	if err != nil {
		log.Errorf("Error getting leaderboard: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	common.RespondWithEmbed(s, i, BuildLeaderboardEmbed(entries, kind), false)
}

// BuildLeaderboardEmbed renders the top entries with medals for the podium
func BuildLeaderboardEmbed(entries []*models.LeaderboardEntry, kind service.LeaderboardKind) *discordgo.MessageEmbed {
	title := "🏆 Richest students"
	if kind == service.LeaderboardByStudy {
		title = "📚 Most studied"
	}
	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: common.ColorPrimary,
	}

	if len(entries) == 0 {
		embed.Description = "No students yet."
		return embed
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		metric := common.FormatBalance(e.Balance) + " coins"
		if kind == service.LeaderboardByStudy {
			metric = common.FormatMinutes(e.TotalStudyMinutes)
		}
		lines = append(lines, fmt.Sprintf("%s **%s** %s", common.Medal(e.Rank), e.Username, metric))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}
