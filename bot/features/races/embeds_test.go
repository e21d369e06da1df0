package races

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrace/models"
)

func race(t *testing.T, name string, status models.RaceStatus) *models.Race {
	t.Helper()
	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	bs, be := start.Add(-48*time.Hour), start
	r, err := models.NewRace(name, start, start.Add(7*24*time.Hour), &bs, &be, [3]int64{500, 300, 100})
	require.NoError(t, err)
	r.Status = status
	return r
}

func TestOpenRacesAndChoices(t *testing.T) {
	all := []*models.Race{
		race(t, "Week 10", models.RaceStatusFinished),
		race(t, "Week 11", models.RaceStatusActive),
		race(t, "Week 12", models.RaceStatusDrawing),
	}

	open := OpenRaces(all)
	require.Len(t, open, 2)

	choices := RaceChoices(open, "12")
	require.Len(t, choices, 1)
	assert.Equal(t, "Week 12 (drawing)", choices[0].Name)
	assert.Equal(t, all[2].ID.String(), choices[0].Value)
}

func TestFocusedValue(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "join", Type: discordgo.ApplicationCommandOptionSubCommand, Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "race", Type: discordgo.ApplicationCommandOptionString, Value: "wee", Focused: true},
		}},
	}
	assert.Equal(t, "wee", focusedValue(opts))
	assert.Equal(t, "", focusedValue(nil))
}

func TestBuildStandingsEmbed(t *testing.T) {
	r := race(t, "Week 11", models.RaceStatusActive)
	assert.Contains(t, BuildStandingsEmbed(r, nil).Description, "Nobody has joined yet")

	roster := []*models.RaceParticipant{
		{ID: uuid.New(), Username: "ada", StudyMinutes: 240, Position: 1,
			WinOdds:   decimal.NewNullDecimal(decimal.RequireFromString("1.85")),
			PlaceOdds: decimal.NewNullDecimal(decimal.RequireFromString("1.00"))},
		{ID: uuid.New(), Username: "a-very-long-student-name", StudyMinutes: 30},
	}

	embed := BuildStandingsEmbed(r, roster)
	lines := strings.Split(embed.Description, "\n")
	require.Len(t, lines, 6) // fence, header, rule, two rows, fence

	assert.Contains(t, lines[3], "#1")
	assert.Contains(t, lines[3], "4h 00m")
	assert.Contains(t, lines[3], "1.85x")
	assert.Contains(t, lines[4], "#2")
	assert.Contains(t, lines[4], "a-very-long-s...")
	assert.Contains(t, lines[4], "-")
	assert.Equal(t, "🏃 Running", embed.Footer.Text)
}

func TestBuildRaceListEmbed(t *testing.T) {
	assert.Equal(t, "No races are scheduled right now.", BuildRaceListEmbed(nil).Description)

	embed := BuildRaceListEmbed([]*models.Race{race(t, "Week 12", models.RaceStatusDrawing)})
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Week 12", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "900 coins")
	assert.Contains(t, embed.Fields[0].Value, "Betting closes")
}
