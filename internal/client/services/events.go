// Package services contains application services for the CLI. This file
// defines the event service: event listings annotated with the user's
// registrations, event detail, organizer views and event sign-up.
package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/vmsclient/internal/client/client"
	"github.com/dmitrijs2005/vmsclient/internal/client/models"
	"github.com/dmitrijs2005/vmsclient/internal/logging"
)

// EventView is an event as listed to the user.
type EventView struct {
	models.Event
	// Registered is true when the current user signed up for the event.
	Registered bool
}

// EventService defines the event operations of the CLI.
//
// Contract:
//   - List: all events; with withRegistrations the user's sign-ups are
//     marked, and a failure to load them only leaves the marks off.
//   - Get: one event.
//   - Organized: the events the current organizer runs.
//   - SignUp: register the current user for an event.
//   - RegisteredIDs: ids of the events the user signed up for, sorted.
//   - Account: the server's view of the current user.
//
// All methods must honor context cancellation/timeouts.
type EventService interface {
	List(ctx context.Context, withRegistrations bool) ([]EventView, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	Organized(ctx context.Context) ([]models.Event, error)
	SignUp(ctx context.Context, id int64) error
	RegisteredIDs(ctx context.Context) ([]int64, error)
	Account(ctx context.Context) (*models.Account, error)
}

type eventService struct {
	client client.Client
	log    logging.Logger
}

// NewEventService constructs an EventService bound to the given API client.
func NewEventService(c client.Client, log logging.Logger) EventService {
	return &eventService{client: c, log: log.With("component", "events")}
}

func (s *eventService) List(ctx context.Context, withRegistrations bool) ([]EventView, error) {
	events, err := s.client.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var registered []int64
	if withRegistrations {
		registered, err = s.RegisteredIDs(ctx)
		if err != nil {
			s.log.Warn(ctx, "registered events unavailable", "error", err)
			registered = nil
		}
	}

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		_, found := slices.BinarySearch(registered, e.ID)
		views = append(views, EventView{Event: e, Registered: found})
	}
	return views, nil
}

func (s *eventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	e, err := s.client.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return e, nil
}

func (s *eventService) Organized(ctx context.Context) ([]models.Event, error) {
	events, err := s.client.MyOrganizedEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organized events: %w", err)
	}
	return events, nil
}

func (s *eventService) SignUp(ctx context.Context, id int64) error {
	if err := s.client.RegisterForEvent(ctx, id); err != nil {
		return fmt.Errorf("register for event %d: %w", id, err)
	}
	s.log.Info(ctx, "registered for event", "event_id", id)
	return nil
}

func (s *eventService) RegisteredIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.client.RegisteredEventIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	ids = slices.Clone(ids)
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (s *eventService) Account(ctx context.Context) (*models.Account, error) {
	acc, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return acc, nil
}
