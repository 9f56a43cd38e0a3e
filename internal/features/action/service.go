package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/features/scoring"
	"go-gamifier/internal/rules"
	"go-gamifier/pkg/tabular"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmployeeID(ctx context.Context, organizationID, employeeID string) (*models.User, error)
	ListByManager(ctx context.Context, organizationID, managerEmployeeID string) ([]models.User, error)
}

type OrganizationFinder interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}

// Runner runs a scoring unit of work for one user.
type Runner interface {
	Run(ctx context.Context, userID string, fn func(ctx context.Context, c *scoring.Cascade) error) ([]models.Event, error)
}

type ActionService interface {
	Capture(ctx context.Context, req CaptureRequest) (*models.Action, error)
	Approve(ctx context.Context, actionID, approverID, notes string) (*models.Action, error)
	Reject(ctx context.Context, actionID, approverID, reason string) (*models.Action, error)

	// Import captures one action per row with the system as reporter. Rows fail
	// independently; line numbers are 1-based over data rows.
	Import(ctx context.Context, organizationID string, rows []tabular.Row) (*models.ImportResult, error)
	ImportFile(ctx context.Context, organizationID, filename string, r io.Reader) (*models.ImportResult, error)

	Get(ctx context.Context, actionID string) (*models.Action, error)
	History(ctx context.Context, userID string, page, limit int64) (*ActionPage, error)
	PendingApprovals(ctx context.Context, managerID string) ([]models.Action, error)
	Statistics(ctx context.Context, organizationID, userID string) (*ActionStatistics, error)
}

type ActionServiceImpl struct {
	Repo    ActionRepository
	Users   UserFinder
	Orgs    OrganizationFinder
	Scoring Runner
	Logger  *zap.Logger
	Now     func() time.Time
}

func NewActionService(
	repo ActionRepository,
	users UserFinder,
	orgs OrganizationFinder,
	engine *scoring.Engine,
	logger *zap.Logger,
) ActionService {
	return &ActionServiceImpl{
		Repo:    repo,
		Users:   users,
		Orgs:    orgs,
		Scoring: engine,
		Logger:  logger,
		Now:     time.Now,
	}
}

func (s *ActionServiceImpl) Capture(ctx context.Context, req CaptureRequest) (*models.Action, error) {
	org, err := s.Orgs.FindByID(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID != org.ID {
		return nil, errs.Validation("User %s does not belong to organization %s", req.UserID, org.Name)
	}

	at, ok := org.ActionType(req.ActionTypeID)
	if !ok {
		return nil, errs.NotFound("Action type not found: %s", req.ActionTypeID)
	}
	if !at.Active {
		return nil, errs.Validation("Action type is not active: %s", at.Name)
	}
	if req.Method == "" {
		req.Method = models.CaptureUI
	}
	if !at.SupportsMethod(req.Method) {
		return nil, errs.Validation("Capture method %s is not allowed for action type %s", req.Method, at.Name)
	}

	now := s.Now()
	day := models.Day(req.Date)
	if req.Date.IsZero() {
		day = models.Day(now)
	}
	if day.After(models.Day(now)) {
		return nil, errs.Validation("Action date cannot be in the future")
	}

	role, err := s.reporterRole(ctx, user, req)
	if err != nil {
		return nil, err
	}
	if role != models.ReporterSystem && !at.AllowsReporter(role) {
		return nil, errs.Forbidden("Reporter type %s is not allowed for action type %s", role, at.Name)
	}

	verdict, err := rules.Evaluate(ctx, at.CaptureRule, rules.Input{
		Reporter: string(role),
		Method:   string(req.Method),
		Date:     day,
		Evidence: req.Evidence,
		Notes:    req.Notes,
		Points:   at.Points,
	})
	if err != nil {
		return nil, errs.Validation("%s", err.Error())
	}
	if !verdict.Allow {
		reason := verdict.Reason
		if reason == "" {
			reason = "capture rule denied the action"
		}
		return nil, errs.Validation("Action rejected: %s", reason)
	}

	exists, err := s.Repo.Exists(ctx, org.ID, user.ID, at.ID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Conflict("Action %s already recorded for %s", at.Name, day.Format(time.DateOnly))
	}

	status := models.ActionApproved
	if at.RequiresManagerApproval {
		status = models.ActionPendingApproval
	}
	a := &models.Action{
		ID:             primitive.NewObjectID(),
		OrganizationID: org.ID,
		UserID:         user.ID,
		ActionTypeID:   at.ID,
		ActionDate:     day,
		CaptureMethod:  req.Method,
		ReporterID:     req.ReporterID,
		ReporterRole:   role,
		Status:         status,
		Evidence:       req.Evidence,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == models.ActionApproved {
		a.ApprovedAt = &now
	}

	_, err = s.Scoring.Run(ctx, user.ID.Hex(), func(ctx context.Context, c *scoring.Cascade) error {
		if err := s.Repo.Create(ctx, a); err != nil {
			return err
		}
		c.Emit(models.EventActionCaptured, "Action captured: "+at.Name, 0, "", a.ID.Hex())
		if status != models.ActionApproved {
			return nil
		}
		return complete(c, at, "Action completed: "+at.Name)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Action captured",
		zap.String("organizationId", org.ID.Hex()),
		zap.String("userId", user.ID.Hex()),
		zap.String("actionTypeId", at.ID),
		zap.String("status", string(status)))
	return a, nil
}

func (s *ActionServiceImpl) Approve(ctx context.Context, actionID, approverID, notes string) (*models.Action, error) {
	a, at, err := s.loadForReview(ctx, actionID, approverID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	a.Status = models.ActionApproved
	a.ApproverID = approverID
	a.ApprovalNotes = notes
	a.ApprovedAt = &now
	a.UpdatedAt = now

	_, err = s.Scoring.Run(ctx, a.UserID.Hex(), func(ctx context.Context, c *scoring.Cascade) error {
		if err := s.Repo.Transition(ctx, a, models.ActionPendingApproval); err != nil {
			return err
		}
		c.Emit(models.EventActionApproved, "Action approved: "+at.Name, 0, "", a.ID.Hex())
		return complete(c, at, "Action approved: "+at.Name)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Action approved", zap.String("actionId", actionID), zap.String("userId", approverID))
	return a, nil
}

func (s *ActionServiceImpl) Reject(ctx context.Context, actionID, approverID, reason string) (*models.Action, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errs.Validation("Rejection reason is required")
	}
	a, at, err := s.loadForReview(ctx, actionID, approverID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	a.Status = models.ActionRejected
	a.ApproverID = approverID
	a.RejectionReason = reason
	a.RejectedAt = &now
	a.UpdatedAt = now

	_, err = s.Scoring.Run(ctx, a.UserID.Hex(), func(ctx context.Context, c *scoring.Cascade) error {
		if err := s.Repo.Transition(ctx, a, models.ActionPendingApproval); err != nil {
			return err
		}
		c.Emit(models.EventActionRejected, fmt.Sprintf("Action rejected: %s - %s", at.Name, reason), 0, reason, a.ID.Hex())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Action rejected", zap.String("actionId", actionID), zap.String("userId", approverID))
	return a, nil
}

func (s *ActionServiceImpl) Import(ctx context.Context, organizationID string, rows []tabular.Row) (*models.ImportResult, error) {
	org, err := s.Orgs.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	result := models.NewImportResult()
	for i, row := range rows {
		_, err := s.importRow(ctx, org, row)
		result.Record(i+1, err)
	}

	s.Logger.Info("Action import finished",
		zap.String("organizationId", organizationID),
		zap.Int("total", result.TotalRecords),
		zap.Int("failed", result.FailedImports))
	return result, nil
}

func (s *ActionServiceImpl) ImportFile(ctx context.Context, organizationID, filename string, r io.Reader) (*models.ImportResult, error) {
	headers, rows, err := tabular.Read(filename, r)
	if err != nil {
		return nil, errs.Validation("%s", err.Error())
	}
	if err := tabular.RequireHeaders(headers, importHeaders...); err != nil {
		return nil, errs.Validation("%s", err.Error())
	}
	return s.Import(ctx, organizationID, rows)
}

// importRow resolves the action type column by id first, then by active name.
func (s *ActionServiceImpl) importRow(ctx context.Context, org *models.Organization, row tabular.Row) (*models.Action, error) {
	employeeID := row.Get("employee_id")
	if employeeID == "" {
		return nil, errs.Validation("Employee ID is required")
	}
	user, err := s.Users.FindByEmployeeID(ctx, org.ID.Hex(), employeeID)
	if err != nil {
		return nil, err
	}

	ref := row.Get("action_type")
	at, ok := org.ActionType(ref)
	if !ok {
		at, ok = org.ActionTypeByName(ref)
	}
	if !ok {
		return nil, errs.NotFound("Action type not found: %s", ref)
	}

	date, err := models.ParseDay(row.Get("date"))
	if err != nil {
		return nil, errs.Validation("Invalid date: %s", row.Get("date"))
	}

	return s.Capture(ctx, CaptureRequest{
		OrganizationID: org.ID.Hex(),
		UserID:         user.ID.Hex(),
		ActionTypeID:   at.ID,
		Date:           date,
		Method:         models.CaptureImport,
		ReporterID:     models.SystemReporterID,
		Evidence:       row.Get("evidence"),
		Notes:          row.Get("notes"),
	})
}

func (s *ActionServiceImpl) Get(ctx context.Context, actionID string) (*models.Action, error) {
	return s.Repo.FindByID(ctx, actionID)
}

func (s *ActionServiceImpl) History(ctx context.Context, userID string, page, limit int64) (*ActionPage, error) {
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	actions, total, err := s.Repo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &ActionPage{Actions: actions, Total: total, Page: page, Limit: limit}, nil
}

// PendingApprovals lists pending actions of the manager's direct reports, oldest first.
func (s *ActionServiceImpl) PendingApprovals(ctx context.Context, managerID string) ([]models.Action, error) {
	manager, err := s.Users.FindByID(ctx, managerID)
	if err != nil {
		return nil, err
	}
	reports, err := s.Users.ListByManager(ctx, manager.OrganizationID.Hex(), manager.EmployeeID)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return []models.Action{}, nil
	}
	ids := make([]string, 0, len(reports))
	for _, u := range reports {
		ids = append(ids, u.ID.Hex())
	}
	return s.Repo.ListPending(ctx, manager.OrganizationID.Hex(), ids)
}

// Statistics counts actions of an organization, or of one user when userID is set.
func (s *ActionServiceImpl) Statistics(ctx context.Context, organizationID, userID string) (*ActionStatistics, error) {
	base := models.ActionFilter{OrganizationID: organizationID}
	if userID != "" {
		base.UserIDs = []string{userID}
	}

	now := s.Now()
	today := models.Day(now)
	week := now.AddDate(0, 0, -7)
	month := now.AddDate(0, 0, -30)

	stats := &ActionStatistics{}
	counts := []struct {
		dst    *int64
		filter models.ActionFilter
	}{
		{&stats.Total, base},
		{&stats.Pending, withStatus(base, models.ActionPendingApproval)},
		{&stats.Approved, withStatus(base, models.ActionApproved)},
		{&stats.Rejected, withStatus(base, models.ActionRejected)},
		{&stats.Today, since(base, today)},
		{&stats.LastWeek, since(base, week)},
		{&stats.LastMonth, since(base, month)},
	}
	for _, c := range counts {
		n, err := s.Repo.Count(ctx, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return stats, nil
}

// reporterRole classifies the reporter relative to the beneficiary. Imports report as the system.
func (s *ActionServiceImpl) reporterRole(ctx context.Context, user *models.User, req CaptureRequest) (models.ReporterRole, error) {
	if req.ReporterID == models.SystemReporterID {
		if req.Method != models.CaptureImport {
			return "", errs.Validation("System reports are only accepted through import")
		}
		return models.ReporterSystem, nil
	}
	if req.ReporterID == "" || req.ReporterID == user.ID.Hex() {
		return models.ReporterSelf, nil
	}

	reporter, err := s.Users.FindByID(ctx, req.ReporterID)
	if errors.Is(err, errs.ErrNotFound) {
		return "", errs.NotFound("Reporter not found: %s", req.ReporterID)
	}
	if err != nil {
		return "", err
	}
	if reporter.OrganizationID != user.OrganizationID {
		return "", errs.Forbidden("Reporter belongs to another organization")
	}
	if reporter.IsDirectManagerOf(user) {
		return models.ReporterManager, nil
	}
	return models.ReporterPeer, nil
}

func (s *ActionServiceImpl) loadForReview(ctx context.Context, actionID, approverID string) (*models.Action, models.ActionType, error) {
	a, err := s.Repo.FindByID(ctx, actionID)
	if err != nil {
		return nil, models.ActionType{}, err
	}
	if a.Status != models.ActionPendingApproval {
		return nil, models.ActionType{}, errs.InvalidState("Action is not pending approval: %s", actionID)
	}

	user, err := s.Users.FindByID(ctx, a.UserID.Hex())
	if err != nil {
		return nil, models.ActionType{}, err
	}
	approver, err := s.Users.FindByID(ctx, approverID)
	if err != nil {
		return nil, models.ActionType{}, err
	}
	if !approver.IsDirectManagerOf(user) {
		return nil, models.ActionType{}, errs.Forbidden("Only the direct manager of %s can review this action", user.FullName())
	}

	org, err := s.Orgs.FindByID(ctx, a.OrganizationID.Hex())
	if err != nil {
		return nil, models.ActionType{}, err
	}
	at, ok := org.ActionType(a.ActionTypeID)
	if !ok {
		return nil, models.ActionType{}, errs.NotFound("Action type not found: %s", a.ActionTypeID)
	}
	return a, at, nil
}

// complete awards the action type's points and advances missions requiring it.
func complete(c *scoring.Cascade, at models.ActionType, reason string) error {
	if err := c.AwardPoints(at.Points, reason); err != nil {
		return err
	}
	return c.CompleteActionType(at.ID)
}

func withStatus(f models.ActionFilter, status models.ActionStatus) models.ActionFilter {
	f.Status = status
	return f
}

func since(f models.ActionFilter, t time.Time) models.ActionFilter {
	f.CreatedSince = &t
	return f
}
