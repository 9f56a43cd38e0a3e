package organization

import "go-gamifier/internal/common/models"

type OrganizationInput struct {
	Name         string `json:"name" yaml:"name"`
	FederationID string `json:"federation_id" yaml:"federation_id"`
	Description  string `json:"description" yaml:"description"`
	Active       *bool  `json:"active,omitempty" yaml:"active,omitempty"`
}

type ActionTypeInput struct {
	Name                    string                 `json:"name" yaml:"name"`
	Description             string                 `json:"description" yaml:"description"`
	Points                  int                    `json:"points" yaml:"points"`
	Category                string                 `json:"category" yaml:"category"`
	CaptureMethods          []models.CaptureMethod `json:"capture_methods" yaml:"capture_methods"`
	AllowedReporters        []models.ReporterRole  `json:"allowed_reporters" yaml:"allowed_reporters"`
	RequiresManagerApproval bool                   `json:"requires_manager_approval" yaml:"requires_manager_approval"`
	CaptureRule             string                 `json:"capture_rule" yaml:"capture_rule"`
	Active                  *bool                  `json:"active,omitempty" yaml:"active,omitempty"`
}

// MissionTypeInput references required action types by id. RequiredActionTypeNames is
// resolved against the catalog when ids are not known yet (seed files).
type MissionTypeInput struct {
	Name                    string   `json:"name" yaml:"name"`
	Description             string   `json:"description" yaml:"description"`
	Badge                   string   `json:"badge" yaml:"badge"`
	RequiredActionTypeIDs   []string `json:"required_action_type_ids" yaml:"required_action_type_ids"`
	RequiredActionTypeNames []string `json:"required_action_type_names,omitempty" yaml:"required_action_types,omitempty"`
	BonusPoints             int      `json:"bonus_points" yaml:"bonus_points"`
	Category                string   `json:"category" yaml:"category"`
	Active                  *bool    `json:"active,omitempty" yaml:"active,omitempty"`
}

type RankInput struct {
	Name            string `json:"name" yaml:"name"`
	PointsThreshold int    `json:"points_threshold" yaml:"points_threshold"`
	Insignia        string `json:"insignia" yaml:"insignia"`
	Order           int    `json:"order" yaml:"order"`
	Active          *bool  `json:"active,omitempty" yaml:"active,omitempty"`
}

// Catalog is a whole organization definition, used to seed new organizations.
type Catalog struct {
	Organization OrganizationInput  `yaml:"organization"`
	Ranks        []RankInput        `yaml:"ranks"`
	ActionTypes  []ActionTypeInput  `yaml:"action_types"`
	MissionTypes []MissionTypeInput `yaml:"mission_types"`
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
