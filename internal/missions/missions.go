// Package missions provides the mission catalog: live launch data from the
// Space Devs Launch Library with a built-in fallback so the dashboard works
// offline.
package missions

import (
	"strings"
	"time"
)

// Mission describes one crewed mission the dashboard can display.
type Mission struct {
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	LaunchDate time.Time `json:"launch_date"`
	Site       string    `json:"site"`
	Rocket     string    `json:"rocket"`
	Spacecraft string    `json:"spacecraft"`
}

// CrewAssignment is one seat on a mission.
type CrewAssignment struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Agency string `json:"agency"`
}

// Slugify converts a display name to a stable lowercase identifier:
// "Artemis II" becomes "artemis-ii".
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// FallbackMission is the mission shown when the launch catalog cannot be
// reached.
func FallbackMission() Mission {
	return Mission{
		Slug:       "artemis-ii",
		Name:       "Artemis II",
		Type:       "artemis-ii",
		Status:     "Go for Launch",
		LaunchDate: time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC),
		Site:       "Kennedy Space Center, FL, USA",
		Rocket:     "SLS Block 1",
		Spacecraft: "Orion",
	}
}

// DefaultCrew is the fallback crew roster for the fallback mission.
func DefaultCrew() []CrewAssignment {
	return []CrewAssignment{
		{Name: "Reid Wiseman", Role: "Commander", Agency: "NASA"},
		{Name: "Victor Glover", Role: "Pilot", Agency: "NASA"},
		{Name: "Christina Koch", Role: "Mission Specialist", Agency: "NASA"},
		{Name: "Jeremy Hansen", Role: "Mission Specialist", Agency: "CSA"},
	}
}
