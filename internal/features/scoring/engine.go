package scoring

import (
	"context"
	"errors"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/config"
	"go-gamifier/internal/database"
	"go-gamifier/internal/features/event"
	"go-gamifier/pkg/keylock"

	"go.uber.org/zap"
)

type UserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type OrganizationLoader interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}

// CacheInvalidator drops cached standings of an organization.
type CacheInvalidator interface {
	Invalidate(organizationID string)
}

// Engine runs every change to a user's progress as one unit of work: the user is
// locked in-process, loaded inside a transaction, mutated through a Cascade and saved
// with a version check. Lost races are retried; any other error rolls everything back.
type Engine struct {
	Users     UserLoader
	Orgs      OrganizationLoader
	Progress  ProgressRepository
	Events    event.Appender
	Tx        database.Transactor
	Cache     CacheInvalidator
	Publisher event.Publisher
	Logger    *zap.Logger
	Locks     *keylock.Locker
	Retries   int
	Now       func() time.Time
}

func NewEngine(
	users UserLoader,
	orgs OrganizationLoader,
	progress ProgressRepository,
	events event.Appender,
	tx database.Transactor,
	cache CacheInvalidator,
	publisher event.Publisher,
	logger *zap.Logger,
	cfg *config.Config,
) *Engine {
	return &Engine{
		Users:     users,
		Orgs:      orgs,
		Progress:  progress,
		Events:    events,
		Tx:        tx,
		Cache:     cache,
		Publisher: publisher,
		Logger:    logger,
		Locks:     keylock.New(),
		Retries:   cfg.WriteRetries,
		Now:       time.Now,
	}
}

// Run executes fn against a fresh Cascade for userID and commits the result. fn may
// write other documents through its ctx; they share the transaction. fn can be called
// more than once and must not keep state between calls.
func (e *Engine) Run(ctx context.Context, userID string, fn func(ctx context.Context, c *Cascade) error) ([]models.Event, error) {
	unlock := e.Locks.Lock(userID)
	defer unlock()

	retries := e.Retries
	if retries < 1 {
		retries = 1
	}

	for attempt := 0; attempt < retries; attempt++ {
		var cascade *Cascade
		err := e.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			user, err := e.Users.FindByID(ctx, userID)
			if err != nil {
				return err
			}
			org, err := e.Orgs.FindByID(ctx, user.OrganizationID.Hex())
			if err != nil {
				return err
			}

			cascade = newCascade(user, org, e.Now())
			if err := fn(ctx, cascade); err != nil {
				return err
			}
			if cascade.dirty {
				user.UpdatedAt = cascade.now
				if err := e.Progress.SaveProgress(ctx, user); err != nil {
					return err
				}
			}
			if len(cascade.events) == 0 {
				return nil
			}
			return e.Events.Append(ctx, cascade.events...)
		})
		if errors.Is(err, errs.ErrVersionConflict) {
			e.Logger.Debug("Progress update lost a race, retrying",
				zap.String("userId", userID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}

		if cascade.dirty {
			e.Cache.Invalidate(cascade.User.OrganizationID.Hex())
		}
		e.Publisher.Publish(cascade.events)
		return cascade.events, nil
	}
	return nil, errs.Conflict("User %s is being updated concurrently, try again", userID)
}

// AwardPoints adds amount to the user's total as its own unit of work.
func (e *Engine) AwardPoints(ctx context.Context, userID string, amount int, reason string) (*models.User, error) {
	if amount < 0 {
		return nil, errs.Validation("Points amount cannot be negative: %d", amount)
	}
	var user *models.User
	_, err := e.Run(ctx, userID, func(ctx context.Context, c *Cascade) error {
		user = c.User
		return c.AwardPoints(amount, reason)
	})
	if err != nil {
		return nil, err
	}

	e.Logger.Info("Points awarded",
		zap.String("userId", userID),
		zap.Int("points", amount),
		zap.String("reason", reason))
	return user, nil
}
