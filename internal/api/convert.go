package api

import (
	"fmt"

	"github.com/ablomov/remindd/internal/domain"
)

func toDTO(p domain.Preferences) PreferencesDTO {
	dto := PreferencesDTO{
		PreferredTimes: make(map[string]string, len(p.PreferredTimes)),
		Timezone:       p.Timezone,
	}
	for _, c := range p.EnabledCategories() {
		dto.Enabled = append(dto.Enabled, string(c))
	}
	for c, t := range p.PreferredTimes {
		dto.PreferredTimes[string(c)] = t.String()
	}
	if p.QuietHours != nil {
		dto.QuietHours = &QuietHoursDTO{
			Start: p.QuietHours.Start.String(),
			End:   p.QuietHours.End.String(),
		}
	}
	return dto
}

func fromDTO(dto PreferencesDTO, userID string) (domain.Preferences, error) {
	prefs := domain.Preferences{
		UserID:         userID,
		SchemaVersion:  domain.PreferencesSchemaVersion,
		Enabled:        make(map[domain.Category]bool, len(dto.Enabled)),
		PreferredTimes: make(map[domain.Category]domain.ClockTime, len(dto.PreferredTimes)),
		Timezone:       dto.Timezone,
	}
	for _, c := range dto.Enabled {
		prefs.Enabled[domain.Category(c)] = true
	}
	for c, v := range dto.PreferredTimes {
		t, err := domain.ParseClock(v)
		if err != nil {
			return domain.Preferences{}, fmt.Errorf("preferred time for %s: %w", c, err)
		}
		prefs.PreferredTimes[domain.Category(c)] = t
	}
	if dto.QuietHours != nil {
		start, err := domain.ParseClock(dto.QuietHours.Start)
		if err != nil {
			return domain.Preferences{}, fmt.Errorf("quiet hours start: %w", err)
		}
		end, err := domain.ParseClock(dto.QuietHours.End)
		if err != nil {
			return domain.Preferences{}, fmt.Errorf("quiet hours end: %w", err)
		}
		prefs.QuietHours = &domain.QuietHours{Start: start, End: end}
	}
	return prefs, nil
}
