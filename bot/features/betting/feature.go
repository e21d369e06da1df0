package betting

import (
	"github.com/bwmarrin/discordgo"

	"studyrace/service"
)

// Feature handles the /bet command
type Feature struct {
	userService    service.UserService
	raceService    service.RaceService
	bettingService service.BettingService
}

func New(userService service.UserService, raceService service.RaceService, bettingService service.BettingService) *Feature {
	return &Feature{
		userService:    userService,
		raceService:    raceService,
		bettingService: bettingService,
	}
}

// HandleCommand handles the /bet command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleBet(s, i)
}
