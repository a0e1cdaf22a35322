package groups

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
)

const (
	errorMessageListGroups  = "groups: list groups"
	errorMessageGroupLookup = "groups: group lookup"
	errorMessageMemberships = "groups: list memberships"
)

// Directory answers group existence, display names, and user memberships from
// the database-backed group tables the platform sync writes into.
type Directory struct {
	database *gorm.DB
}

// NewDirectory creates a Directory backed by the given database.
func NewDirectory(database *gorm.DB) *Directory {
	return &Directory{database: database}
}

// ListGroups returns all known groups ordered by identifier.
func (directory *Directory) ListGroups() ([]model.Group, error) {
	var allGroups []model.Group
	queryErr := directory.database.Order("id asc").Find(&allGroups).Error
	if queryErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageListGroups, queryErr)
	}
	return allGroups, nil
}

// GroupExists reports whether the directory knows the given group.
func (directory *Directory) GroupExists(groupID string) (bool, error) {
	trimmedGroupID := strings.TrimSpace(groupID)
	if trimmedGroupID == "" {
		return false, nil
	}

	var groupCount int64
	queryErr := directory.database.Model(&model.Group{}).
		Where("id = ?", trimmedGroupID).
		Count(&groupCount).Error
	if queryErr != nil {
		return false, fmt.Errorf("%s: %w", errorMessageGroupLookup, queryErr)
	}

	return groupCount > 0, nil
}

// GroupDisplayName returns the display name of a group, falling back to the
// group identifier when the directory has no name for it.
func (directory *Directory) GroupDisplayName(groupID string) string {
	var group model.Group
	queryErr := directory.database.First(&group, "id = ?", groupID).Error
	if queryErr != nil || strings.TrimSpace(group.DisplayName) == "" {
		return groupID
	}
	return group.DisplayName
}

// UserGroupIDs returns the identifiers of the groups a user belongs to,
// sorted so legacy slot-1 fallback walks them deterministically.
func (directory *Directory) UserGroupIDs(userID string) ([]string, error) {
	var groupIDs []string
	queryErr := directory.database.Model(&model.GroupMembership{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("group_id asc").
		Pluck("group_id", &groupIDs).Error
	if queryErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageMemberships, queryErr)
	}
	return groupIDs, nil
}
