package event

import (
	"time"

	"go-gamifier/internal/common/api"
	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/features/auth"

	"github.com/gofiber/fiber/v2"
)

type EventController struct {
	Service  EventService
	Identity auth.Identity
}

func NewEventController(service EventService, identity auth.Identity) *EventController {
	return &EventController{Service: service, Identity: identity}
}

// UserEvents godoc
// @Summary      Events of a user
// @Tags         events
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        since query string false "RFC3339 timestamp or YYYY-MM-DD"
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200  {object} EventPage
// @Router       /api/events/users/{userId} [get]
func (ctrl *EventController) UserEvents(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if _, err := ctrl.Identity.RequireUserAccess(c.UserContext(), userID); err != nil {
		return api.Error(c, err)
	}
	since, err := parseTime(c.Query("since"))
	if err != nil {
		return api.Error(c, err)
	}
	page, limit := api.Page(c, 20)
	res, err := ctrl.Service.UserEvents(c.UserContext(), userID, since, page, limit)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// Feed godoc
// @Summary      Activity feed
// @Description  Organization events since the caller's previous login
// @Tags         events
// @Produce      json
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200  {object} EventPage
// @Router       /api/events/feed [get]
func (ctrl *EventController) Feed(c *fiber.Ctx) error {
	userID, err := ctrl.Identity.CurrentUserID(c.UserContext())
	if err != nil {
		return api.Error(c, err)
	}
	page, limit := api.Page(c, 20)
	res, err := ctrl.Service.Feed(c.UserContext(), userID, page, limit)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// Query godoc
// @Summary      Query organization events
// @Tags         events
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Param        type query string false "Event type"
// @Param        userId query string false "User ID"
// @Param        since query string false "RFC3339 timestamp or YYYY-MM-DD"
// @Param        until query string false "RFC3339 timestamp or YYYY-MM-DD"
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200  {object} EventPage
// @Router       /api/events/organizations/{orgId} [get]
func (ctrl *EventController) Query(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireAdmin(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	since, err := parseTime(c.Query("since"))
	if err != nil {
		return api.Error(c, err)
	}
	until, err := parseTime(c.Query("until"))
	if err != nil {
		return api.Error(c, err)
	}
	filter := models.EventFilter{
		OrganizationID: orgID,
		UserID:         c.Query("userId"),
		Type:           models.EventType(c.Query("type")),
		Since:          since,
		Until:          until,
	}
	page, limit := api.Page(c, 20)
	res, err := ctrl.Service.Query(c.UserContext(), filter, page, limit)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

// Statistics godoc
// @Summary      Event statistics
// @Tags         events
// @Produce      json
// @Param        orgId path string true "Organization ID"
// @Success      200  {object} EventStatistics
// @Router       /api/events/organizations/{orgId}/statistics [get]
func (ctrl *EventController) Statistics(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if _, err := ctrl.Identity.RequireAdmin(c.UserContext(), orgID); err != nil {
		return api.Error(c, err)
	}
	res, err := ctrl.Service.Statistics(c.UserContext(), orgID)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(res)
}

func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := models.ParseDay(v)
	if err != nil {
		return nil, errs.Validation("Invalid timestamp: %s", v)
	}
	return &t, nil
}
