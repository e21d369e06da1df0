package races

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"studyrace/bot/common"
	"studyrace/models"
)

const maxChoices = 25

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	races, err := f.raceService.ListRaces(ctx, "")
	if err != nil {
		log.Errorf("Error listing races: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	common.RespondWithEmbed(s, i, BuildRaceListEmbed(OpenRaces(races)), false)
}

func (f *Feature) handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	raceID, ok := raceOption(s, i, opts)
	if !ok {
		return
	}

	user, err := common.EnsureUser(ctx, f.userService, i)
	if err != nil {
		log.Errorf("Error getting user for /race join: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	race, err := f.raceService.GetRace(ctx, raceID)
	if err != nil {
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	if _, err := f.raceService.EnrollParticipant(ctx, raceID, user.ID); err != nil {
		log.WithFields(log.Fields{
			"raceID": raceID,
			"userID": user.ID,
			"error":  err,
		}).Info("Race enrollment rejected")
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("You're in **%s**! Study between %s and %s to climb the standings.",
		race.Name,
		common.FormatDiscordTimestamp(race.RaceStartsAt, "f"),
		common.FormatDiscordTimestamp(race.RaceEndsAt, "f")), false)
}

func (f *Feature) handleStandings(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	raceID, ok := raceOption(s, i, opts)
	if !ok {
		return
	}

	race, err := f.raceService.GetRace(ctx, raceID)
	if err != nil {
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}
	roster, err := f.raceService.Standings(ctx, raceID)
	if err != nil {
		log.Errorf("Error loading standings for race %s: %v", raceID, err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	common.RespondWithEmbed(s, i, BuildStandingsEmbed(race, roster), false)
}

func (f *Feature) autocompleteRace(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	races, err := f.raceService.ListRaces(ctx, "")
	if err != nil {
		log.Errorf("Error listing races for autocomplete: %v", err)
		common.RespondWithChoices(s, i, nil)
		return
	}

	typed := focusedValue(i.ApplicationCommandData().Options)
	common.RespondWithChoices(s, i, RaceChoices(OpenRaces(races), typed))
}

func raceOption(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (uuid.UUID, bool) {
	opt := opts["race"]
	if opt == nil {
		common.RespondWithError(s, i, "Please pick a race.")
		return uuid.Nil, false
	}
	raceID, err := uuid.Parse(strings.TrimSpace(opt.StringValue()))
	if err != nil {
		common.RespondWithError(s, i, "Unknown race. Pick one from the list.")
		return uuid.Nil, false
	}
	return raceID, true
}

// focusedValue finds the option being typed, searching one subcommand level deep
func focusedValue(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range opts {
		if opt.Focused {
			return opt.StringValue()
		}
		if v := focusedValue(opt.Options); v != "" {
			return v
		}
	}
	return ""
}

// OpenRaces drops finished races
func OpenRaces(races []*models.Race) []*models.Race {
	open := make([]*models.Race, 0, len(races))
	for _, r := range races {
		if r.Status != models.RaceStatusFinished {
			open = append(open, r)
		}
	}
	return open
}

// RaceChoices lists races whose name contains typed, capped at Discord's limit
func RaceChoices(races []*models.Race, typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for _, r := range races {
		if typed != "" && !strings.Contains(strings.ToLower(r.Name), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%s)", r.Name, r.Status),
			Value: r.ID.String(),
		})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}
