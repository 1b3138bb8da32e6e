package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/core/ports"
)

// GroupHandler exposes group management over JSON. Listing is public;
// creation is restricted to admins by the router.
type GroupHandler struct {
	groups  ports.GroupService
	listing ports.ListingService
	log     zerolog.Logger
}

func NewGroupHandler(groups ports.GroupService, listing ports.ListingService, log zerolog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, listing: listing, log: log}
}

// List godoc
// @Summary      List groups
// @Tags         groups
// @Produce      json
// @Success      200  {object}  groupsResponse
// @Router       /api/v1/groups [get]
func (h *GroupHandler) List(c echo.Context) error {
	groups, err := h.listing.ListGroups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groupsResponse{Groups: groups})
}

// Create godoc
// @Summary      Create a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createGroupRequest  true  "Group"
// @Success      201   {object}  domain.Group
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/v1/groups [post]
func (h *GroupHandler) Create(c echo.Context) error {
	var req createGroupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	group, err := h.groups.CreateGroup(c.Request().Context(), toCreateGroupInput(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, group)
}
