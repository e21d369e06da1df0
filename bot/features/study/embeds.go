package study

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"studyrace/bot/common"
	"studyrace/models"
)

func subjectNames(subjects []*models.Subject) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	return names
}

// BuildSessionEmbed confirms a recorded session and its reward
func BuildSessionEmbed(result *models.SessionResult, subjectName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📚 Study session logged",
		Color:       common.ColorSuccess,
		Description: fmt.Sprintf("**%s** of %s", common.FormatMinutes(result.Session.DurationMinutes), subjectName),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Earned",
				Value:  fmt.Sprintf("+%s coins", common.FormatBalance(result.Session.CoinsEarned)),
				Inline: true,
			},
			{
				Name:   "Balance",
				Value:  fmt.Sprintf("%s coins", common.FormatBalance(result.User.Balance)),
				Inline: true,
			},
			{
				Name:   "This week",
				Value:  common.FormatMinutes(result.User.PeriodStudyMinutes),
				Inline: true,
			},
		},
	}

	if n := len(result.CreditedRaceIDs); n > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Counted towards %d race(s)", n),
		}
	}
	return embed
}

// BuildTodayEmbed lists today's sessions with a running total
func BuildTodayEmbed(sessions []*models.StudySession, subjects map[uuid.UUID]string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🗓️ Today's study",
		Color: common.ColorPrimary,
	}

	if len(sessions) == 0 {
		embed.Description = "Nothing logged yet today."
		return embed
	}

	var total int64
	lines := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		total += sess.DurationMinutes
		name, ok := subjects[sess.SubjectID]
		if !ok {
			name = "Unknown subject"
		}
		lines = append(lines, fmt.Sprintf("%s **%s** %s",
			common.FormatDiscordTimestamp(sess.StudiedAt, "t"), common.FormatMinutes(sess.DurationMinutes), name))
	}
	embed.Description = strings.Join(lines, "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Total: %s across %d session(s)", common.FormatMinutes(total), len(sessions)),
	}
	return embed
}

// BuildProgressEmbed shows the week's progress against the goal
func BuildProgressEmbed(p *models.PeriodProgress) *discordgo.MessageEmbed {
	color := common.ColorPrimary
	if p.Percent >= 100 {
		color = common.ColorSuccess
	}

	return &discordgo.MessageEmbed{
		Title: "🎯 Weekly progress",
		Color: color,
		Description: fmt.Sprintf("%s **%d%%**\n%s of %s",
			common.ProgressBar(p.Percent), p.Percent,
			common.FormatMinutes(p.StudyMinutes), common.FormatMinutes(p.GoalMinutes)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Today",
				Value:  fmt.Sprintf("%s in %d session(s)", common.FormatMinutes(p.TodayMinutes), p.TodaySessions),
				Inline: true,
			},
			{
				Name:   "Week resets",
				Value:  common.FormatDiscordTimestamp(p.PeriodEnd, "R"),
				Inline: true,
			},
		},
	}
}
