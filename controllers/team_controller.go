package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onethy/services"
	"onethy/utils"
)

type TeamController struct {
	Teams  *services.TeamService
	Logger *logrus.Entry
}

func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{
		Teams:  services.NewTeamService(db),
		Logger: utils.Logger("teams"),
	}
}

func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	teams, err := tc.Teams.List(c.UserContext(), tenantOf(c))
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	return c.JSON(teams)
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	team, err := tc.Teams.Get(c.UserContext(), tenantOf(c), id)
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	return c.JSON(team)
}

func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	var req services.CreateTeamInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Logger, err)
	}
	team, err := tc.Teams.Create(c.UserContext(), tenantOf(c), req)
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	var req services.UpdateTeamInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Logger, err)
	}
	team, err := tc.Teams.Update(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	return c.JSON(team)
}

func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	if err := tc.Teams.Delete(c.UserContext(), tenantOf(c), id); err != nil {
		return respondError(c, tc.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddMember adds a user of the account to the team, or changes their role
func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	var req services.AddMemberInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, tc.Logger, err)
	}
	member, err := tc.Teams.AddMember(c.UserContext(), tenantOf(c), id, req)
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	tc.Logger.WithFields(logrus.Fields{
		"team_id": id,
		"user_id": member.UserID,
		"role":    member.Role,
	}).Info("Team member saved")
	return c.Status(fiber.StatusCreated).JSON(member)
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	userID, err := idParam(c, "userId")
	if err != nil {
		return respondError(c, tc.Logger, err)
	}
	if err := tc.Teams.RemoveMember(c.UserContext(), tenantOf(c), id, userID); err != nil {
		return respondError(c, tc.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
