package models

// Event as served by GET /events and GET /events/{id}. Date-times are kept
// as the server's local ISO strings.
type Event struct {
	ID                 int64              `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	Location           string             `json:"location,omitempty"`
	StartDateTime      string             `json:"startDateTime"`
	EndDateTime        string             `json:"endDateTime"`
	SlotsAvailable     *int               `json:"slotsAvailable,omitempty"`
	OrganizerID        *int64             `json:"organizerId,omitempty"`
	OrganizerName      string             `json:"organizerName,omitempty"`
	AssignedVolunteers []VolunteerSummary `json:"assignedVolunteers,omitempty"`
}

// VolunteerSummary is the short volunteer record embedded in an event.
type VolunteerSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Skills       string `json:"skills,omitempty"`
	Availability string `json:"availability,omitempty"`
}

// RegistrationRequest is the body of POST /registrations.
type RegistrationRequest struct {
	EventID int64 `json:"eventId"`
}

// Account is the reduced profile served by GET /users/me.
type Account struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
