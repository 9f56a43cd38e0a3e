package action

import (
	"go-gamifier/internal/common/api"
	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type ActionController struct {
	Service  ActionService
	Identity auth.Identity
}

func NewActionController(service ActionService, identity auth.Identity) *ActionController {
	return &ActionController{Service: service, Identity: identity}
}

// CaptureAction godoc
// @Summary      Capture an action
// @Description  Report an action performed by a user; the caller is the reporter
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        input body CaptureInput true "Action"
// @Success      201  {object} models.Action
// @Failure      400  {object} map[string]string
// @Failure      403  {object} map[string]string
// @Failure      409  {object} map[string]string
// @Router       /api/actions [post]
func (ctrl *ActionController) CaptureAction(c *fiber.Ctx) error {
	var in CaptureInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	reporterID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	if in.UserID == "" {
		in.UserID = reporterID
	}
	orgID, err := ctrl.Identity.OrganizationOf(c.UserContext(), in.UserID)
	if err != nil {
		return api.Error(c, err)
	}

	req := CaptureRequest{
		OrganizationID: orgID,
		UserID:         in.UserID,
		ActionTypeID:   in.ActionTypeID,
		Method:         models.CaptureUI,
		ReporterID:     reporterID,
		Evidence:       in.Evidence,
		Notes:          in.Notes,
	}
	if in.ActionDate != "" {
		day, err := models.ParseDay(in.ActionDate)
		if err != nil {
			return api.Error(c, errs.Validation("Invalid action date: %s", in.ActionDate))
		}
		req.Date = day
	}

	a, err := ctrl.Service.Capture(c.UserContext(), req)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// GetAction godoc
// @Summary      Get action
// @Tags         actions
// @Produce      json
// @Param        id path string true "Action ID"
// @Success      200  {object} models.Action
// @Failure      404  {object} map[string]string
// @Router       /api/actions/{id} [get]
func (ctrl *ActionController) GetAction(c *fiber.Ctx) error {
	a, err := ctrl.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return api.Error(c, err)
	}
	if err := ctrl.canView(c, a); err != nil {
		return api.Error(c, err)
	}
	return c.JSON(a)
}

// ApproveAction godoc
// @Summary      Approve a pending action
// @Description  Only the direct manager of the beneficiary may approve
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        id path string true "Action ID"
// @Param        input body ReviewInput false "Approval notes"
// @Success      200  {object} models.Action
// @Failure      403  {object} map[string]string
// @Failure      409  {object} map[string]string
// @Router       /api/actions/{id}/approve [post]
func (ctrl *ActionController) ApproveAction(c *fiber.Ctx) error {
	var in ReviewInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}
	approverID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	a, err := ctrl.Service.Approve(c.UserContext(), c.Params("id"), approverID, in.Notes)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(a)
}

// RejectAction godoc
// @Summary      Reject a pending action
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        id path string true "Action ID"
// @Param        input body ReviewInput true "Rejection reason"
// @Success      200  {object} models.Action
// @Failure      400  {object} map[string]string
// @Failure      403  {object} map[string]string
// @Failure      409  {object} map[string]string
// @Router       /api/actions/{id}/reject [post]
func (ctrl *ActionController) RejectAction(c *fiber.Ctx) error {
	var in ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	approverID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	a, err := ctrl.Service.Reject(c.UserContext(), c.Params("id"), approverID, in.Reason)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(a)
}

// History godoc
// @Summary      Action history of a user
// @Tags         actions
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200  {object} ActionPage
// @Router       /api/actions/users/{userId} [get]
func (ctrl *ActionController) History(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if _, err := ctrl.Identity.RequireUserAccess(c.UserContext(), userID); err != nil {
		return api.Error(c, err)
	}
	page, limit := api.Page(c, 20)
	res, err := ctrl.Service.History(c.UserContext(), userID, page, limit)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// PendingApprovals godoc
// @Summary      Pending approvals
// @Description  Pending actions of the caller's direct reports
// @Tags         actions
// @Produce      json
// @Success      200  {array} models.Action
// @Router       /api/actions/pending [get]
func (ctrl *ActionController) PendingApprovals(c *fiber.Ctx) error {
	managerID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.PendingApprovals(c.UserContext(), managerID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// Statistics godoc
// @Summary      Action statistics
// @Tags         actions
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        userId query string false "Restrict to one user"
// @Success      200  {object} ActionStatistics
// @Router       /api/organizations/{orgId}/actions/statistics [get]
func (ctrl *ActionController) Statistics(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	userID := c.Query("userId")
	var err error
	if userID != "" {
		_, err = ctrl.Identity.RequireUserAccess(c.UserContext(), userID)
	} else {
		_, err = ctrl.Identity.RequireAdmin(c.UserContext(), orgID)
	}
	if err != nil {
		return api.Error(c, err)
	}
	stats, err := ctrl.Service.Statistics(c.UserContext(), orgID, userID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(stats)
}

// canView lets the beneficiary, the reporter, the direct manager and org admins read an action.
func (ctrl *ActionController) canView(c *fiber.Ctx, a *models.Action) error {
	ctx := c.UserContext()
	actorID, err := ctrl.Identity.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if actorID == a.ReporterID {
		return nil
	}
	ok, err := ctrl.Identity.CanAccessUser(ctx, actorID, a.UserID.Hex())
	if err != nil || ok {
		return err
	}
	ok, err = ctrl.Identity.IsDirectManager(ctx, actorID, a.UserID.Hex())
	if err != nil || ok {
		return err
	}
	return errs.Forbidden("Access denied to action %s", a.ID.Hex())
}
