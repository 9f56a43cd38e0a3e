// Package storetest holds in-memory stand-ins for the Mongo repositories so service
// tests run without a database. Each sub-store satisfies the matching repository
// interface structurally.
package storetest

import (
	"context"
	"sync"

	"go-gamifier/internal/common/models"
)

type Store struct {
	mu sync.Mutex

	orgs    map[string]*models.Organization
	users   map[string]*models.User
	actions map[string]*models.Action
	events  []models.Event

	txMu sync.Mutex

	Orgs    *Orgs
	Users   *Users
	Actions *Actions
	Events  *Events
	Tx      *Tx
}

func New() *Store {
	s := &Store{
		orgs:    map[string]*models.Organization{},
		users:   map[string]*models.User{},
		actions: map[string]*models.Action{},
	}
	s.Orgs = &Orgs{s: s}
	s.Users = &Users{s: s}
	s.Actions = &Actions{s: s}
	s.Events = &Events{s: s}
	s.Tx = &Tx{s: s}
	return s
}

type txKey struct{}

// Tx runs units of work one at a time and restores the previous state when fn fails.
type Tx struct {
	s *Store

	// Calls counts top-level units of work.
	Calls int
}

func (t *Tx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	t.Calls++

	saved := t.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.s.restore(saved)
		return err
	}
	return nil
}

type state struct {
	orgs    map[string]*models.Organization
	users   map[string]*models.User
	actions map[string]*models.Action
	events  []models.Event
}

func (s *Store) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := state{
		orgs:    make(map[string]*models.Organization, len(s.orgs)),
		users:   make(map[string]*models.User, len(s.users)),
		actions: make(map[string]*models.Action, len(s.actions)),
		events:  append([]models.Event(nil), s.events...),
	}
	for k, v := range s.orgs {
		st.orgs[k] = cloneOrg(v)
	}
	for k, v := range s.users {
		st.users[k] = cloneUser(v)
	}
	for k, v := range s.actions {
		st.actions[k] = cloneAction(v)
	}
	return st
}

func (s *Store) restore(st state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs, s.users, s.actions, s.events = st.orgs, st.users, st.actions, st.events
}

func cloneOrg(o *models.Organization) *models.Organization {
	c := *o
	c.ActionTypes = make(map[string]models.ActionType, len(o.ActionTypes))
	for k, v := range o.ActionTypes {
		v.CaptureMethods = append([]models.CaptureMethod(nil), v.CaptureMethods...)
		v.AllowedReporters = append([]models.ReporterRole(nil), v.AllowedReporters...)
		c.ActionTypes[k] = v
	}
	c.MissionTypes = make(map[string]models.MissionType, len(o.MissionTypes))
	for k, v := range o.MissionTypes {
		v.RequiredActionTypeIDs = append([]string(nil), v.RequiredActionTypeIDs...)
		c.MissionTypes[k] = v
	}
	c.RankConfigurations = make(map[string]models.RankConfiguration, len(o.RankConfigurations))
	for k, v := range o.RankConfigurations {
		c.RankConfigurations[k] = v
	}
	return &c
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.CurrentRankID != nil {
		id := *u.CurrentRankID
		c.CurrentRankID = &id
	}
	c.MissionProgress = make(map[string]*models.MissionProgress, len(u.MissionProgress))
	for k, p := range u.MissionProgress {
		if p == nil {
			continue
		}
		cp := *p
		cp.CompletedActionTypeIDs = append([]string(nil), p.CompletedActionTypeIDs...)
		c.MissionProgress[k] = &cp
	}
	return &c
}

func cloneAction(a *models.Action) *models.Action {
	c := *a
	return &c
}
