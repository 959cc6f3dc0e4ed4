package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/carbon-footprint-tracker/internal/carbon"
	"github.com/iliyamo/carbon-footprint-tracker/internal/insight"
	"github.com/iliyamo/carbon-footprint-tracker/internal/model"
	"github.com/iliyamo/carbon-footprint-tracker/internal/queue"
	"github.com/iliyamo/carbon-footprint-tracker/internal/repository"
)

// leaderboardFanOut bounds the number of concurrent per-user queries.
const leaderboardFanOut = 8

// NewActivity is the caller-supplied part of an activity. A zero Timestamp
// means "now".
type NewActivity struct {
	Type      string
	Value     float64
	Unit      string
	Timestamp time.Time
}

// LeaderboardEntry is one user's total footprint.
type LeaderboardEntry struct {
	Email string
	Score float64
}

// ActivityService logs activities and derives per-user and cross-user views.
type ActivityService struct {
	users      repository.UserStore
	activities repository.ActivityStore
	estimator  *carbon.Estimator
	events     Publisher
	cache      queue.Invalidator
	log        *slog.Logger
	now        func() time.Time
}

// ActivityOption customizes an ActivityService.
type ActivityOption func(*ActivityService)

// WithLeaderboardCache clears the cached leaderboard after every logged
// activity.
func WithLeaderboardCache(inv queue.Invalidator) ActivityOption {
	return func(s *ActivityService) {
		if inv != nil {
			s.cache = inv
		}
	}
}

// NewActivityService wires the service. A nil publisher drops events.
func NewActivityService(users repository.UserStore, activities repository.ActivityStore, est *carbon.Estimator, events Publisher, log *slog.Logger, opts ...ActivityOption) *ActivityService {
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	s := &ActivityService{
		users:      users,
		activities: activities,
		estimator:  est,
		events:     events,
		cache:      nopInvalidator{},
		log:        log.With("component", "activities"),
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Log estimates the carbon of in and stores it for userID. The user must
// exist. Type and unit are stored as given; the factor lookup is by exact
// pair. Value and the resulting carbon must be finite.
func (s *ActivityService) Log(ctx context.Context, userID string, in NewActivity) (*model.Activity, error) {
	if strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Unit) == "" {
		return nil, fmt.Errorf("%w: type and unit are required", ErrMissingField)
	}
	carbonKg := s.estimator.Estimate(in.Type, in.Value, in.Unit)
	if !finite(in.Value) || !finite(carbonKg) {
		return nil, fmt.Errorf("%w: %g %s of %s", ErrInvalidValue, in.Value, in.Unit, in.Type)
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	a := &model.Activity{
		UserID:    userID,
		Type:      in.Type,
		Value:     in.Value,
		Unit:      in.Unit,
		Carbon:    carbonKg,
		Timestamp: in.Timestamp,
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}
	if err := s.activities.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	s.log.InfoContext(ctx, "activity logged", "user_id", userID, "activity_id", a.ID, "type", a.Type)
	invalidate(ctx, s.cache, s.log)

	_ = s.events.PublishActivityLogged(ctx, queue.ActivityLoggedEvent{
		ActivityID: a.ID,
		UserID:     a.UserID,
		Type:       a.Type,
		Value:      a.Value,
		Unit:       a.Unit,
		Carbon:     a.Carbon,
		Timestamp:  a.Timestamp.Format(time.RFC3339Nano),
	})
	return a, nil
}

// List returns the user's activities.
func (s *ActivityService) List(ctx context.Context, userID string) ([]*model.Activity, error) {
	out, err := s.activities.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return out, nil
}

// Score returns the sum of carbon over the user's activities.
func (s *ActivityService) Score(ctx context.Context, userID string) (float64, error) {
	acts, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	return insight.TotalCarbon(acts), nil
}

// Suggestions returns the advice triggered by the user's history.
func (s *ActivityService) Suggestions(ctx context.Context, userID string) ([]string, error) {
	acts, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return insight.Suggestions(acts), nil
}

// Achievements returns the badges earned by the user's history.
func (s *ActivityService) Achievements(ctx context.Context, userID string) ([]string, error) {
	acts, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return insight.Achievements(acts), nil
}

// Leaderboard ranks every user by total carbon, lowest first. Per-user
// totals are computed concurrently; any failure fails the whole ranking.
// Users with equal scores keep the store's listing order.
func (s *ActivityService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	entries := make([]LeaderboardEntry, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(leaderboardFanOut)
	for i, u := range users {
		g.Go(func() error {
			acts, err := s.activities.ListByOwner(gctx, u.ID)
			if err != nil {
				return fmt.Errorf("activities of %s: %w", u.ID, err)
			}
			entries[i] = LeaderboardEntry{Email: u.Email, Score: insight.TotalCarbon(acts)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score < entries[j].Score })
	return entries, nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
