package races

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"studyrace/bot/common"
	"studyrace/models"
)

var statusLabels = map[models.RaceStatus]string{
	models.RaceStatusUpcoming: "⏳ Upcoming",
	models.RaceStatusDrawing:  "🎟️ Betting open",
	models.RaceStatusActive:   "🏃 Running",
	models.RaceStatusFinished: "🏁 Finished",
}

// BuildRaceListEmbed summarises the races that can still be joined or watched
func BuildRaceListEmbed(races []*models.Race) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🏆 Study races",
		Color: common.ColorPrimary,
	}

	if len(races) == 0 {
		embed.Description = "No races are scheduled right now."
		return embed
	}

	for _, r := range races {
		value := fmt.Sprintf("%s\nRuns %s to %s\nPrize pool: **%s coins**",
			statusLabels[r.Status],
			common.FormatDiscordTimestamp(r.RaceStartsAt, "f"),
			common.FormatDiscordTimestamp(r.RaceEndsAt, "f"),
			common.FormatBalance(r.TotalPot))
		if r.HasBettingWindow() {
			value += fmt.Sprintf("\nBetting closes %s", common.FormatDiscordTimestamp(*r.BettingEndsAt, "R"))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  r.Name,
			Value: value,
		})
	}
	return embed
}

// BuildStandingsEmbed renders the ranked roster as a fixed-width table
func BuildStandingsEmbed(race *models.Race, roster []*models.RaceParticipant) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 %s standings", race.Name),
		Color: common.ColorPrimary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: statusLabels[race.Status],
		},
	}

	if len(roster) == 0 {
		embed.Description = "Nobody has joined yet. Use `/race join` to be first!"
		return embed
	}

	var table strings.Builder
	table.WriteString("```\n")
	table.WriteString(fmt.Sprintf("%-4s %-16s %8s %7s %7s\n", "", "Player", "Studied", "Win", "Place"))
	table.WriteString(strings.Repeat("-", 46) + "\n")
	for idx, p := range roster {
		rank := p.Position
		if rank == 0 {
			rank = idx + 1
		}
		name := p.Username
		if len(name) > 16 {
			name = name[:13] + "..."
		}
		table.WriteString(fmt.Sprintf("%-4s %-16s %8s %7s %7s\n",
			fmt.Sprintf("#%d", rank), name, common.FormatMinutes(p.StudyMinutes),
			common.FormatOdds(p.WinOdds), common.FormatOdds(p.PlaceOdds)))
	}
	table.WriteString("```")
	embed.Description = table.String()
	return embed
}
