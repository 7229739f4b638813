package models

import (
	"encoding/json"
	"fmt"
)

// UserType discriminates the persisted user document.
type UserType string

const (
	UserTypeEntrant       UserType = "ENTRANT"
	UserTypeOrganizer     UserType = "ORGANIZER"
	UserTypeAdministrator UserType = "ADMINISTRATOR"
)

// User is the tagged union for all account kinds, keyed by Type. Entrant-only
// fields stay zero for organizers and administrators. Device ID doubles as
// the document key.
type User struct {
	DeviceID  string   `json:"deviceID"`
	Type      UserType `json:"userType"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`

	// Entrant-only profile fields.
	Email              string `json:"email,omitempty"`
	PhoneNumber        string `json:"phoneNumber,omitempty"`
	UseGeolocation     bool   `json:"useGeolocation,omitempty"`
	WantsNotifications *bool  `json:"wantsNotifications,omitempty"`
}

// DecodeUser deserializes a user document, validating the discriminator and
// applying entrant defaults. This is the single place the union is resolved;
// callers switch exhaustively on Type instead of type-asserting.
func DecodeUser(raw []byte) (User, error) {
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	switch u.Type {
	case UserTypeEntrant:
		if u.WantsNotifications == nil {
			wants := true
			u.WantsNotifications = &wants
		}
	case UserTypeOrganizer, UserTypeAdministrator:
		// No subtype fields beyond the shared profile.
	default:
		return User{}, fmt.Errorf("decode user: unknown user type %q", u.Type)
	}
	return u, nil
}

// IsOrganizer reports whether deleting this user must cascade to owned events.
func (u User) IsOrganizer() bool {
	return u.Type == UserTypeOrganizer
}
