package study

import (
	"github.com/bwmarrin/discordgo"

	"studyrace/bot/common"
	"studyrace/service"
)

// Feature handles the /study command
type Feature struct {
	userService    service.UserService
	studyService   service.StudyService
	subjectService service.SubjectService
	clock          service.Clock
}

func New(userService service.UserService, studyService service.StudyService, subjectService service.SubjectService, clock service.Clock) *Feature {
	return &Feature{
		userService:    userService,
		studyService:   studyService,
		subjectService: subjectService,
		clock:          clock,
	}
}

// HandleCommand dispatches the /study subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please specify a subcommand: log, today, progress or goal")
		return
	}

	sub := options[0]
	switch sub.Name {
	case "log":
		f.handleLog(s, i, common.Options(sub.Options))
	case "today":
		f.handleToday(s, i)
	case "progress":
		f.handleProgress(s, i)
	case "goal":
		f.handleGoal(s, i, common.Options(sub.Options))
	default:
		common.RespondWithError(s, i, "Unknown subcommand")
	}
}

// HandleAutocomplete suggests subjects for /study log
func (f *Feature) HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.autocompleteSubject(s, i)
}
