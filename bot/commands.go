package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var minOne = float64(1)

func raceOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "race",
		Description:  "The race",
		Required:     true,
		Autocomplete: true,
	}
}

// slashCommands returns every slash command the bot serves
func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your coins and recent activity",
		},
		{
			Name:        "leaderboard",
			Description: "Show the top students",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "by",
					Description: "Rank by coins or by study time",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Coins", Value: "coins"},
						{Name: "Study time", Value: "study"},
					},
				},
			},
		},
		{
			Name:        "study",
			Description: "Log study time and track your weekly goal",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "log",
					Description: "Log a finished study session",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionString,
							Name:         "subject",
							Description:  "What you studied",
							Required:     true,
							Autocomplete: true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "minutes",
							Description: "How long you studied, in minutes",
							Required:    true,
							MinValue:    &minOne,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "today",
					Description: "List today's sessions",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "progress",
					Description: "Show this week's progress against your goal",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "goal",
					Description: "Set your weekly study goal",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "minutes",
							Description: "Weekly goal in minutes",
							Required:    true,
							MinValue:    &minOne,
						},
					},
				},
			},
		},
		{
			Name:        "race",
			Description: "Join study races and follow the standings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List races that are not finished",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "Enter a race",
					Options:     []*discordgo.ApplicationCommandOption{raceOption()},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "standings",
					Description: "Show the ranked roster and odds",
					Options:     []*discordgo.ApplicationCommandOption{raceOption()},
				},
			},
		},
		{
			Name:        "bet",
			Description: "Bet coins on a race participant",
			Options: []*discordgo.ApplicationCommandOption{
				raceOption(),
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "player",
					Description: "Who you are betting on",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "What you predict",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Win (finishes first)", Value: "win"},
						{Name: "Place (finishes top 3)", Value: "place"},
						{Name: "Support (no multiplier)", Value: "support"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Coins to stake",
					Required:    true,
					MinValue:    &minOne,
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range slashCommands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}
