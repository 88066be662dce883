package routes

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginWithReturn(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/login"},
		{"/", "/login"},
		{"/login", "/login"},
		{"/login?returnUrl=%2Fhome", "/login"},
		{"/events", "/login?returnUrl=%2Fevents"},
		{"/events/3/edit?tab=a&b=c", "/login?returnUrl=%2Fevents%2F3%2Fedit%3Ftab%3Da%26b%3Dc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LoginWithReturn(tt.in), tt.in)
	}
}

func TestLoginWithReturn_RoundTrips(t *testing.T) {
	target := "/volunteers/5?x=1&y=two words"
	u, err := url.Parse(LoginWithReturn(target))
	require.NoError(t, err)
	assert.Equal(t, Login, u.Path)
	assert.Equal(t, target, u.Query().Get(ReturnURLParam))
}

func TestEventLocations(t *testing.T) {
	assert.Equal(t, "/events/12", Event("12"))
	assert.Equal(t, "/events?error=event_not_found", EventsWithError("event_not_found"))
}
