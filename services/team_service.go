package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"onethy/models"
)

var teamRoles = []string{"lead", "member"}

type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

type CreateTeamInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateTeamInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type AddMemberInput struct {
	UserID uint   `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=lead member"`
}

func findTeam(tx *gorm.DB, t Tenant, id uint) (*models.Team, error) {
	var team models.Team
	if err := first(tx, t, "teams", &team, id, "team"); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) List(ctx context.Context, t Tenant) ([]models.Team, error) {
	teams := []models.Team{}
	err := s.db.WithContext(ctx).Scopes(t.owns("teams")).
		Preload("Members.User").
		Order("name ASC, id ASC").
		Find(&teams).Error
	return teams, err
}

func (s *TeamService) Get(ctx context.Context, t Tenant, id uint) (*models.Team, error) {
	var team models.Team
	if err := first(s.db.WithContext(ctx).Preload("Members.User"), t, "teams", &team, id, "team"); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) Create(ctx context.Context, t Tenant, in CreateTeamInput) (*models.Team, error) {
	team := models.Team{
		UserID:      t.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Color:       strings.TrimSpace(in.Color),
		Members:     []models.TeamMember{},
	}
	if team.Name == "" {
		return nil, invalid("name", "name is required")
	}
	if team.Color == "" {
		team.Color = "#25D366"
	}
	if err := s.db.WithContext(ctx).Create(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) Update(ctx context.Context, t Tenant, id uint, in UpdateTeamInput) (*models.Team, error) {
	db := s.db.WithContext(ctx)
	team, err := findTeam(db, t, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name", "name cannot be empty")
		}
		team.Name = name
	}
	if in.Description != nil {
		team.Description = *in.Description
	}
	if in.Color != nil && strings.TrimSpace(*in.Color) != "" {
		team.Color = strings.TrimSpace(*in.Color)
	}
	if err := db.Save(team).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, t, id)
}

// Delete removes a team and its memberships and unassigns its conversations.
func (s *TeamService) Delete(ctx context.Context, t Tenant, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := findTeam(tx, t, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Conversation{}).Where("assigned_team_id = ?", team.ID).Update("assigned_team_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(team).Error
	})
}

// AddMember puts one of the tenant's users in a team. Adding an existing
// member updates its role.
func (s *TeamService) AddMember(ctx context.Context, t Tenant, teamID uint, in AddMemberInput) (*models.TeamMember, error) {
	role := in.Role
	if role == "" {
		role = "member"
	}
	if err := mustBeOneOf("role", role, teamRoles); err != nil {
		return nil, err
	}
	if in.UserID == 0 {
		return nil, invalid("userId", "userId is required")
	}

	member := models.TeamMember{TeamID: teamID, UserID: in.UserID, Role: role}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findTeam(tx, t, teamID); err != nil {
			return err
		}
		ok, err := isMember(tx, t, in.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return invalid("userId", "userId does not belong to this account")
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).Create(&member).Error; err != nil {
			return err
		}
		var saved models.TeamMember
		if err := tx.Preload("User").Where("team_id = ? AND user_id = ?", teamID, in.UserID).First(&saved).Error; err != nil {
			return err
		}
		member = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, t Tenant, teamID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findTeam(tx, t, teamID); err != nil {
			return err
		}
		var member models.TeamMember
		err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("team member")
		}
		if err != nil {
			return err
		}
		return tx.Delete(&member).Error
	})
}
