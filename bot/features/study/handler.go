package study

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"studyrace/bot/common"
	"studyrace/models"
)

const maxChoices = 25

func (f *Feature) handleLog(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	subjectOpt, minutesOpt := opts["subject"], opts["minutes"]
	if subjectOpt == nil || minutesOpt == nil {
		common.RespondWithError(s, i, "Please provide both a subject and the minutes studied.")
		return
	}

	user, err := common.EnsureUser(ctx, f.userService, i)
	if err != nil {
		log.Errorf("Error getting user for /study log: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	subjects, err := f.subjectService.ListSubjects(ctx)
	if err != nil {
		log.Errorf("Error listing subjects: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}
	subject := FindSubject(subjects, subjectOpt.StringValue())
	if subject == nil {
		common.RespondWithError(s, i, "Unknown subject. Pick one from the list.")
		return
	}

	result, err := f.studyService.RecordSession(ctx, user.ID, subject.ID, minutesOpt.IntValue(), f.clock.Now())
	if err != nil {
		log.WithFields(log.Fields{
			"userID":    user.ID,
			"subjectID": subject.ID,
			"error":     err,
		}).Warn("Study session rejected")
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	common.RespondWithEmbed(s, i, BuildSessionEmbed(result, subject.Name), false)
}

func (f *Feature) handleToday(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	user, err := common.EnsureUser(ctx, f.userService, i)
	if err != nil {
		log.Errorf("Error getting user for /study today: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	sessions, err := f.studyService.TodaySessions(ctx, user.ID)
	if err != nil {
		log.Errorf("Error loading today's sessions for %s: %v", user.ID, err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}
	subjects, err := f.subjectService.ListSubjects(ctx)
	if err != nil {
		log.Errorf("Error listing subjects: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	common.RespondWithEmbed(s, i, BuildTodayEmbed(sessions, subjectNames(subjects)), true)
}

func (f *Feature) handleProgress(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	user, err := common.EnsureUser(ctx, f.userService, i)
	if err != nil {
		log.Errorf("Error getting user for /study progress: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	progress, err := f.studyService.PeriodProgress(ctx, user.ID)
	if err != nil {
		log.Errorf("Error loading progress for %s: %v", user.ID, err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	common.RespondWithEmbed(s, i, BuildProgressEmbed(progress), true)
}

func (f *Feature) handleGoal(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	minutesOpt := opts["minutes"]
	if minutesOpt == nil {
		common.RespondWithError(s, i, "Please provide your weekly goal in minutes.")
		return
	}

	user, err := common.EnsureUser(ctx, f.userService, i)
	if err != nil {
		log.Errorf("Error getting user for /study goal: %v", err)
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	updated, err := f.studyService.UpdateGoal(ctx, user.ID, minutesOpt.IntValue())
	if err != nil {
		common.RespondWithError(s, i, common.UserMessage(err))
		return
	}

	common.RespondWithSuccess(s, i, "Weekly goal set to **"+common.FormatMinutes(updated.PeriodGoalMinutes)+"**.", true)
}

func (f *Feature) autocompleteSubject(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var typed string
	for _, sub := range i.ApplicationCommandData().Options {
		for _, opt := range sub.Options {
			if opt.Focused {
				typed = opt.StringValue()
			}
		}
	}

	subjects, err := f.subjectService.ListSubjects(ctx)
	if err != nil {
		log.Errorf("Error listing subjects for autocomplete: %v", err)
		common.RespondWithChoices(s, i, nil)
		return
	}

	common.RespondWithChoices(s, i, SubjectChoices(subjects, typed))
}

// FindSubject matches a subject by id or by case-insensitive name
func FindSubject(subjects []*models.Subject, value string) *models.Subject {
	value = strings.TrimSpace(value)
	for _, subj := range subjects {
		if subj.ID.String() == value || strings.EqualFold(subj.Name, value) {
			return subj
		}
	}
	return nil
}

// SubjectChoices lists subjects whose name contains typed, capped at Discord's limit
func SubjectChoices(subjects []*models.Subject, typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for _, subj := range subjects {
		if typed != "" && !strings.Contains(strings.ToLower(subj.Name), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  subj.Name,
			Value: subj.ID.String(),
		})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}
