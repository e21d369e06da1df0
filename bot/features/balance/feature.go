package balance

import (
	"github.com/bwmarrin/discordgo"

	"studyrace/service"
)

const historyLimit = 5

type Feature struct {
	userService service.UserService
}

func New(userService service.UserService) *Feature {
	return &Feature{
		userService: userService,
	}
}

// HandleCommand handles the /balance command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleBalance(s, i)
}
