package leaderboard

import (
	"context"
	"sort"
	"strconv"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/config"
)

type StandingsReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	ListStandings(ctx context.Context, organizationID, department string, limit, offset int64) ([]models.User, error)
	CountStandings(ctx context.Context, organizationID, department string) (int64, error)
	CountAbove(ctx context.Context, organizationID, department string, points int) (int64, error)
}

type OrganizationFinder interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}

type PointsSummer interface {
	SumPointsByUser(ctx context.Context, organizationID string, from, to time.Time) (map[string]int, error)
}

// LeaderboardService orders users by points descending, ties broken by user id
// ascending. Tied users share a position: 1 + the number of users with more points.
type LeaderboardService interface {
	AllTime(ctx context.Context, organizationID string, page, limit int64) (*Page, error)
	UserPosition(ctx context.Context, organizationID, userID string) (*UserPosition, error)
	Statistics(ctx context.Context, organizationID string) (*Statistics, error)
	// Monthly ranks users by points awarded within the calendar month of month (UTC).
	// Users without points that month are not listed.
	Monthly(ctx context.Context, organizationID string, month time.Time, page, limit int64) (*Page, error)
	Department(ctx context.Context, organizationID, department string, page, limit int64) (*Page, error)
}

type LeaderboardServiceImpl struct {
	Users        StandingsReader
	Orgs         OrganizationFinder
	Points       PointsSummer
	Cache        *Cache
	NearbyWindow int
}

func NewLeaderboardService(users StandingsReader, orgs OrganizationFinder, points PointsSummer, cache *Cache, cfg *config.Config) LeaderboardService {
	return &LeaderboardServiceImpl{
		Users:        users,
		Orgs:         orgs,
		Points:       points,
		Cache:        cache,
		NearbyWindow: cfg.NearbyWindow,
	}
}

func (s *LeaderboardServiceImpl) AllTime(ctx context.Context, organizationID string, page, limit int64) (*Page, error) {
	return s.standings(ctx, organizationID, "", page, limit)
}

func (s *LeaderboardServiceImpl) Department(ctx context.Context, organizationID, department string, page, limit int64) (*Page, error) {
	if department == "" {
		return nil, errs.Validation("Department is required")
	}
	return s.standings(ctx, organizationID, department, page, limit)
}

func (s *LeaderboardServiceImpl) standings(ctx context.Context, organizationID, department string, page, limit int64) (*Page, error) {
	page, limit = normalizePage(page, limit)
	key := s.Cache.Key(organizationID, "standings", department, strconv.FormatInt(page, 10), strconv.FormatInt(limit, 10))
	if v, ok := s.Cache.Get(key); ok {
		return v.(*Page), nil
	}

	org, err := s.Orgs.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	offset := (page - 1) * limit
	users, err := s.Users.ListStandings(ctx, organizationID, department, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.Users.CountStandings(ctx, organizationID, department)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(users))
	for i := range users {
		entries[i] = newEntry(&users[i], org, users[i].TotalPoints)
	}
	if len(entries) > 0 {
		above, err := s.Users.CountAbove(ctx, organizationID, department, entries[0].Points)
		if err != nil {
			return nil, err
		}
		assignPositions(entries, above+1, offset)
	}

	res := &Page{Entries: entries, Total: total, Page: page, Limit: limit, Department: department}
	s.Cache.Add(key, res)
	return res, nil
}

func (s *LeaderboardServiceImpl) UserPosition(ctx context.Context, organizationID, userID string) (*UserPosition, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID.Hex() != organizationID {
		return nil, errs.NotFound("User %s is not part of organization %s", userID, organizationID)
	}

	all, err := s.ranked(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range all {
		if all[i].UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errs.NotFound("User not found in leaderboard: %s", userID)
	}

	lo, hi := idx-s.NearbyWindow, idx+s.NearbyWindow+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(all) {
		hi = len(all)
	}
	me := all[idx]
	return &UserPosition{
		UserID:       userID,
		Position:     me.Position,
		TotalUsers:   int64(len(all)),
		Points:       me.Points,
		RankName:     me.RankName,
		RankInsignia: me.RankInsignia,
		Nearby:       append([]Entry(nil), all[lo:hi]...),
	}, nil
}

func (s *LeaderboardServiceImpl) Statistics(ctx context.Context, organizationID string) (*Statistics, error) {
	key := s.Cache.Key(organizationID, "statistics")
	if v, ok := s.Cache.Get(key); ok {
		return v.(*Statistics), nil
	}

	all, err := s.ranked(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	stats := &Statistics{
		TotalUsers:       int64(len(all)),
		RankDistribution: map[string]int64{},
	}
	sum := 0
	for _, e := range all {
		sum += e.Points
		if e.Points > 0 {
			stats.ActiveUsers++
		}
		label := e.RankName
		if label == "" {
			label = unrankedLabel
		}
		stats.RankDistribution[label]++
	}
	if len(all) > 0 {
		stats.AveragePoints = float64(sum) / float64(len(all))
		top := all[0]
		stats.TopScorer = &top
	}

	s.Cache.Add(key, stats)
	return stats, nil
}

func (s *LeaderboardServiceImpl) Monthly(ctx context.Context, organizationID string, month time.Time, page, limit int64) (*Page, error) {
	page, limit = normalizePage(page, limit)
	from := time.Date(month.UTC().Year(), month.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	label := from.Format("2006-01")

	key := s.Cache.Key(organizationID, "monthly", label, strconv.FormatInt(page, 10), strconv.FormatInt(limit, 10))
	if v, ok := s.Cache.Get(key); ok {
		return v.(*Page), nil
	}

	org, err := s.Orgs.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	sums, err := s.Points.SumPointsByUser(ctx, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(sums))
	for id, pts := range sums {
		if pts > 0 {
			ids = append(ids, id)
		}
	}
	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	all := make([]Entry, 0, len(users))
	for i := range users {
		if users[i].OrganizationID != org.ID {
			continue
		}
		all = append(all, newEntry(&users[i], org, sums[users[i].ID.Hex()]))
	}
	sortEntries(all)
	assignPositions(all, 1, 0)

	res := &Page{Total: int64(len(all)), Page: page, Limit: limit, Month: label}
	res.Entries = paginate(all, page, limit)
	s.Cache.Add(key, res)
	return res, nil
}

// ranked returns the complete ordered standings of an organization with positions.
func (s *LeaderboardServiceImpl) ranked(ctx context.Context, organizationID string) ([]Entry, error) {
	org, err := s.Orgs.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.ListStandings(ctx, organizationID, "", 0, 0)
	if err != nil {
		return nil, err
	}
	all := make([]Entry, len(users))
	for i := range users {
		all[i] = newEntry(&users[i], org, users[i].TotalPoints)
	}
	assignPositions(all, 1, 0)
	return all, nil
}

func newEntry(u *models.User, org *models.Organization, points int) Entry {
	e := Entry{
		UserID:     u.ID.Hex(),
		EmployeeID: u.EmployeeID,
		Name:       u.FullName(),
		Department: u.Department,
		Points:     points,
	}
	if u.CurrentRankID != nil {
		if rc, ok := org.RankConfiguration(*u.CurrentRankID); ok {
			e.RankName = rc.Name
			e.RankInsignia = rc.Insignia
		}
	}
	return e
}

// assignPositions numbers an ordered slice whose first entry holds position first and
// sits at absolute index offset.
func assignPositions(entries []Entry, first, offset int64) {
	for i := range entries {
		switch {
		case i == 0:
			entries[i].Position = first
		case entries[i].Points == entries[i-1].Points:
			entries[i].Position = entries[i-1].Position
		default:
			entries[i].Position = offset + int64(i) + 1
		}
	}
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
}

func paginate(all []Entry, page, limit int64) []Entry {
	start := (page - 1) * limit
	if start >= int64(len(all)) {
		return []Entry{}
	}
	end := start + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return append([]Entry(nil), all[start:end]...)
}

func normalizePage(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
