// Package settings persists per-user preferences as a versioned JSON document.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("settings not found")
	ErrUnsupportedVersion = errors.New("unsupported settings version")
)

// CurrentVersion is the document layout written by this package.
const CurrentVersion = 2

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Notifications struct {
	Email           bool `json:"email"`
	WhatsApp        bool `json:"whatsapp"`
	ProposalUpdates bool `json:"proposal_updates"`
	WeeklyReport    bool `json:"weekly_report"`
}

type Settings struct {
	Version       int           `json:"version"`
	Theme         Theme         `json:"theme" validate:"oneof=light dark system"`
	Language      string        `json:"language" validate:"oneof=pt-BR en-US"`
	Notifications Notifications `json:"notifications"`
}

func Defaults() Settings {
	return Settings{
		Version:  CurrentVersion,
		Theme:    ThemeSystem,
		Language: "pt-BR",
		Notifications: Notifications{
			Email:           true,
			ProposalUpdates: true,
		},
	}
}

// legacy is the flat layout, stored with version 1 or no version at all.
type legacy struct {
	Theme              Theme `json:"theme"`
	EmailNotifications *bool `json:"emailNotifications"`
	PushNotifications  *bool `json:"pushNotifications"`
	ProposalUpdates    *bool `json:"proposalUpdates"`
}

// Decode reads any known version and returns it in the current layout.
// Missing fields take their defaults.
func Decode(data []byte) (Settings, error) {
	s, _, err := decode(data)
	return s, err
}

// decode also reports the version the document was stored with.
func decode(data []byte) (Settings, int, error) {
	var head struct {
		Version int `json:"version"`
	}

	if err := json.Unmarshal(data, &head); err != nil {
		return Settings{}, 0, fmt.Errorf("decoding settings: %w", err)
	}

	switch head.Version {
	case 0, 1:
		s, err := migrateLegacy(data)
		return s, head.Version, err
	case CurrentVersion:
		s := Defaults()
		if err := json.Unmarshal(data, &s); err != nil {
			return Settings{}, 0, fmt.Errorf("decoding settings: %w", err)
		}

		return s, head.Version, nil
	default:
		return Settings{}, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, head.Version)
	}
}

func migrateLegacy(data []byte) (Settings, error) {
	var old legacy
	if err := json.Unmarshal(data, &old); err != nil {
		return Settings{}, fmt.Errorf("decoding legacy settings: %w", err)
	}

	s := Defaults()

	switch old.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
		s.Theme = old.Theme
	}

	if old.EmailNotifications != nil {
		s.Notifications.Email = *old.EmailNotifications
	}

	// Push notifications were never delivered; WhatsApp is their successor.
	if old.PushNotifications != nil {
		s.Notifications.WhatsApp = *old.PushNotifications
	}

	if old.ProposalUpdates != nil {
		s.Notifications.ProposalUpdates = *old.ProposalUpdates
	}

	return s, nil
}

func Encode(s Settings) ([]byte, error) {
	s.Version = CurrentVersion
	return json.Marshal(s)
}
