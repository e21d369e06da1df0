package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"studyrace/bot/common"
	"studyrace/bot/features/balance"
	"studyrace/bot/features/betting"
	"studyrace/bot/features/leaderboard"
	"studyrace/bot/features/races"
	"studyrace/bot/features/study"
	"studyrace/service"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string // commands are registered globally when empty
}

// Services bundles what the slash commands call into
type Services struct {
	Users    service.UserService
	Study    service.StudyService
	Subjects service.SubjectService
	Races    service.RaceService
	Betting  service.BettingService
	Clock    service.Clock
}

type commandFeature interface {
	HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate)
}

type autocompleteFeature interface {
	HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate)
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	commands map[string]commandFeature
	// autocompletes is keyed by command name, then by focused option name
	autocompletes map[string]map[string]autocompleteFeature
}

func New(config Config, svc Services) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	if svc.Clock == nil {
		svc.Clock = service.SystemClock{}
	}

	raceFeature := races.New(svc.Users, svc.Races)
	studyFeature := study.New(svc.Users, svc.Study, svc.Subjects, svc.Clock)

	bot := &Bot{
		config:  config,
		session: dg,
		commands: map[string]commandFeature{
			"balance":     balance.New(svc.Users),
			"study":       studyFeature,
			"race":        raceFeature,
			"bet":         betting.New(svc.Users, svc.Races, svc.Betting),
			"leaderboard": leaderboard.New(svc.Users),
		},
		autocompletes: map[string]map[string]autocompleteFeature{
			"study": {"subject": studyFeature},
			"race":  {"race": raceFeature},
			"bet":   {"race": raceFeature},
		},
	}

	dg.AddHandler(bot.handleInteraction)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("guildID", config.GuildID).Info("Discord bot connected")
	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		feature, ok := b.commands[data.Name]
		if !ok {
			common.RespondWithError(s, i, "Unknown command")
			return
		}
		feature.HandleCommand(s, i)

	case discordgo.InteractionApplicationCommandAutocomplete:
		data := i.ApplicationCommandData()
		if feature := b.autocompleteFor(data.Name, data.Options); feature != nil {
			feature.HandleAutocomplete(s, i)
			return
		}
		common.RespondWithChoices(s, i, nil)
	}
}

func (b *Bot) autocompleteFor(command string, opts []*discordgo.ApplicationCommandInteractionDataOption) autocompleteFeature {
	byOption := b.autocompletes[command]
	for _, opt := range opts {
		if opt.Focused {
			return byOption[opt.Name]
		}
		for _, nested := range opt.Options {
			if nested.Focused {
				return byOption[nested.Name]
			}
		}
	}
	return nil
}
