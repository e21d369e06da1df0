package races

import (
	"github.com/bwmarrin/discordgo"

	"studyrace/bot/common"
	"studyrace/service"
)

// Feature handles the /race command and race autocompletion for other commands
type Feature struct {
	userService service.UserService
	raceService service.RaceService
}

func New(userService service.UserService, raceService service.RaceService) *Feature {
	return &Feature{
		userService: userService,
		raceService: raceService,
	}
}

// HandleCommand dispatches the /race subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand: list, join or standings")
		return
	}

	sub := options[0]
	switch sub.Name {
	case "list":
		f.handleList(s, i)
	case "join":
		f.handleJoin(s, i, common.Options(sub.Options))
	case "standings":
		f.handleStandings(s, i, common.Options(sub.Options))
	default:
		common.RespondWithError(s, i, "Unknown subcommand")
	}
}

// HandleAutocomplete suggests races that are not finished yet
func (f *Feature) HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.autocompleteRace(s, i)
}
