package client

import (
	"context"

	"github.com/dmitrijs2005/vmsclient/internal/client/models"
)

// Client is the transport-agnostic contract of the volunteer management API
// as consumed by the client.
type Client interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	MyOrganizedEvents(ctx context.Context) ([]models.Event, error)
	RegisterForEvent(ctx context.Context, eventID int64) error
	RegisteredEventIDs(ctx context.Context) ([]int64, error)
	CurrentUser(ctx context.Context) (*models.Account, error)
}
