package models

import (
	"slices"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CaptureMethod string

const (
	CaptureUI     CaptureMethod = "UI"
	CaptureImport CaptureMethod = "IMPORT"
)

type ReporterRole string

const (
	ReporterSelf    ReporterRole = "SELF"
	ReporterPeer    ReporterRole = "PEER"
	ReporterManager ReporterRole = "MANAGER"
	ReporterSystem  ReporterRole = "SYSTEM"
)

type Organization struct {
	ID                 primitive.ObjectID           `bson:"_id,omitempty" json:"id"`
	Name               string                       `bson:"name" json:"name"`
	FederationID       string                       `bson:"federation_id" json:"federation_id"`
	Description        string                       `bson:"description,omitempty" json:"description,omitempty"`
	Active             bool                         `bson:"active" json:"active"`
	ActionTypes        map[string]ActionType        `bson:"action_types" json:"action_types"`
	MissionTypes       map[string]MissionType       `bson:"mission_types" json:"mission_types"`
	RankConfigurations map[string]RankConfiguration `bson:"rank_configurations" json:"rank_configurations"`
	Version            int64                        `bson:"version" json:"version"`
	CreatedAt          time.Time                    `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time                    `bson:"updated_at" json:"updated_at"`
}

type ActionType struct {
	ID                      string          `bson:"id" json:"id"`
	Name                    string          `bson:"name" json:"name"`
	Description             string          `bson:"description,omitempty" json:"description,omitempty"`
	Points                  int             `bson:"points" json:"points"`
	Category                string          `bson:"category,omitempty" json:"category,omitempty"`
	CaptureMethods          []CaptureMethod `bson:"capture_methods" json:"capture_methods"`
	AllowedReporters        []ReporterRole  `bson:"allowed_reporters" json:"allowed_reporters"`
	RequiresManagerApproval bool            `bson:"requires_manager_approval" json:"requires_manager_approval"`
	CaptureRule             string          `bson:"capture_rule,omitempty" json:"capture_rule,omitempty"` // tengo script
	Active                  bool            `bson:"active" json:"active"`
	CreatedAt               time.Time       `bson:"created_at" json:"created_at"`
}

func (a ActionType) SupportsMethod(m CaptureMethod) bool {
	return slices.Contains(a.CaptureMethods, m)
}

func (a ActionType) AllowsReporter(r ReporterRole) bool {
	return slices.Contains(a.AllowedReporters, r)
}

type MissionType struct {
	ID                    string    `bson:"id" json:"id"`
	Name                  string    `bson:"name" json:"name"`
	Description           string    `bson:"description,omitempty" json:"description,omitempty"`
	Badge                 string    `bson:"badge" json:"badge"`
	RequiredActionTypeIDs []string  `bson:"required_action_type_ids" json:"required_action_type_ids"`
	BonusPoints           int       `bson:"bonus_points" json:"bonus_points"`
	Category              string    `bson:"category,omitempty" json:"category,omitempty"`
	Active                bool      `bson:"active" json:"active"`
	CreatedAt             time.Time `bson:"created_at" json:"created_at"`
}

func (m MissionType) Requires(actionTypeID string) bool {
	return slices.Contains(m.RequiredActionTypeIDs, actionTypeID)
}

type RankConfiguration struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	PointsThreshold int       `bson:"points_threshold" json:"points_threshold"`
	Insignia        string    `bson:"insignia" json:"insignia"`
	Order           int       `bson:"order" json:"order"`
	Active          bool      `bson:"active" json:"active"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// ActionType returns the catalog entry with the given id, active or not.
func (o *Organization) ActionType(id string) (ActionType, bool) {
	at, ok := o.ActionTypes[id]
	return at, ok
}

// ActionTypeByName finds an active action type by name, ignoring case.
func (o *Organization) ActionTypeByName(name string) (ActionType, bool) {
	name = strings.TrimSpace(name)
	for _, at := range o.ActionTypes {
		if at.Active && strings.EqualFold(at.Name, name) {
			return at, true
		}
	}
	return ActionType{}, false
}

func (o *Organization) MissionType(id string) (MissionType, bool) {
	mt, ok := o.MissionTypes[id]
	return mt, ok
}

func (o *Organization) RankConfiguration(id string) (RankConfiguration, bool) {
	rc, ok := o.RankConfigurations[id]
	return rc, ok
}

// MissionTypesRequiring lists the active missions whose required set contains actionTypeID,
// ordered by name.
func (o *Organization) MissionTypesRequiring(actionTypeID string) []MissionType {
	var out []MissionType
	for _, mt := range o.MissionTypes {
		if mt.Active && mt.Requires(actionTypeID) {
			out = append(out, mt)
		}
	}
	sortMissions(out)
	return out
}

// ActiveActionTypes is ordered by category then name.
func (o *Organization) ActiveActionTypes() []ActionType {
	var out []ActionType
	for _, at := range o.ActionTypes {
		if at.Active {
			out = append(out, at)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (o *Organization) ActiveMissionTypes() []MissionType {
	var out []MissionType
	for _, mt := range o.MissionTypes {
		if mt.Active {
			out = append(out, mt)
		}
	}
	sortMissions(out)
	return out
}

// ActiveRanks is ordered by threshold ascending.
func (o *Organization) ActiveRanks() []RankConfiguration {
	var out []RankConfiguration
	for _, rc := range o.RankConfigurations {
		if rc.Active {
			out = append(out, rc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PointsThreshold < out[j].PointsThreshold })
	return out
}

// EligibleRank is the highest-threshold active rank whose threshold is <= points.
func (o *Organization) EligibleRank(points int) *RankConfiguration {
	var best *RankConfiguration
	for _, rc := range o.RankConfigurations {
		if !rc.Active || rc.PointsThreshold > points {
			continue
		}
		if best == nil || rc.PointsThreshold > best.PointsThreshold {
			r := rc
			best = &r
		}
	}
	return best
}

// NextRank is the lowest-threshold active rank strictly above points.
func (o *Organization) NextRank(points int) *RankConfiguration {
	var next *RankConfiguration
	for _, rc := range o.RankConfigurations {
		if !rc.Active || rc.PointsThreshold <= points {
			continue
		}
		if next == nil || rc.PointsThreshold < next.PointsThreshold {
			r := rc
			next = &r
		}
	}
	return next
}

func sortMissions(ms []MissionType) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Name != ms[j].Name {
			return ms[i].Name < ms[j].Name
		}
		return ms[i].ID < ms[j].ID
	})
}
