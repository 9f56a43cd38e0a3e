package organization

import (
	"bytes"
	_ "embed"
	"io"
	"sort"
	"strings"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/pkg/utils"

	"gopkg.in/yaml.v3"
)

// Names collide case-insensitively with active and inactive entries alike.

func checkActionTypeName(org *models.Organization, selfID, name string) error {
	for id, at := range org.ActionTypes {
		if id != selfID && strings.EqualFold(strings.TrimSpace(at.Name), strings.TrimSpace(name)) {
			return errs.Conflict("Action type with name '%s' already exists", strings.TrimSpace(name))
		}
	}
	return nil
}

func checkMissionTypeName(org *models.Organization, selfID, name string) error {
	for id, mt := range org.MissionTypes {
		if id != selfID && strings.EqualFold(strings.TrimSpace(mt.Name), strings.TrimSpace(name)) {
			return errs.Conflict("Mission type with name '%s' already exists", strings.TrimSpace(name))
		}
	}
	return nil
}

func checkRankThreshold(org *models.Organization, selfID string, threshold int) error {
	for id, rc := range org.RankConfigurations {
		if id != selfID && rc.PointsThreshold == threshold {
			return errs.Conflict("Rank with points threshold %d already exists", threshold)
		}
	}
	return nil
}

func applyActionType(at *models.ActionType, in ActionTypeInput, active bool) {
	at.Name = strings.TrimSpace(in.Name)
	at.Description = in.Description
	at.Points = in.Points
	at.Category = in.Category
	at.CaptureMethods = dedupe(in.CaptureMethods)
	at.AllowedReporters = dedupe(in.AllowedReporters)
	at.RequiresManagerApproval = in.RequiresManagerApproval
	at.CaptureRule = in.CaptureRule
	at.Active = boolOr(in.Active, active)
}

func applyMissionType(mt *models.MissionType, in MissionTypeInput, active bool) {
	mt.Name = strings.TrimSpace(in.Name)
	mt.Description = in.Description
	mt.Badge = strings.TrimSpace(in.Badge)
	mt.RequiredActionTypeIDs = append([]string(nil), in.RequiredActionTypeIDs...)
	mt.BonusPoints = in.BonusPoints
	mt.Category = in.Category
	mt.Active = boolOr(in.Active, active)
}

func applyRank(rc *models.RankConfiguration, in RankInput, active bool) {
	rc.Name = strings.TrimSpace(in.Name)
	rc.PointsThreshold = in.PointsThreshold
	rc.Insignia = strings.TrimSpace(in.Insignia)
	rc.Order = in.Order
	rc.Active = boolOr(in.Active, active)
}

func dedupe[T comparable](in []T) []T {
	seen := make(map[T]bool, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func sortByName[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}

//go:embed starfleet.yaml
var defaultCatalog []byte

// DefaultCatalog is the built-in Starfleet organization: eight ranks, ten action
// types and five missions.
func DefaultCatalog() (Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalog))
}

// LoadCatalog decodes a YAML catalog. Unknown keys are rejected.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, errs.Validation("Invalid catalog: %s", err.Error())
	}
	if strings.TrimSpace(c.Organization.FederationID) == "" {
		c.Organization.FederationID = strings.ToUpper(utils.Slugify(c.Organization.Name))
	}
	return c, nil
}
