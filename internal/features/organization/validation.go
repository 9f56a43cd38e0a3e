package organization

import (
	"strings"
	"unicode/utf8"

	"go-gamifier/internal/common/errs"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/rules"
)

const (
	maxNameLength     = 100
	maxRankNameLength = 50
	maxSymbolLength   = 10
)

func validateOrganization(in OrganizationInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errs.Validation("Organization name is required")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		return errs.Validation("Organization name must be at most %d characters", maxNameLength)
	}
	if strings.TrimSpace(in.FederationID) == "" {
		return errs.Validation("Federation ID is required")
	}
	return nil
}

func (s *OrganizationServiceImpl) validateActionType(in ActionTypeInput) error {
	if err := validateName("Action type", in.Name, maxNameLength); err != nil {
		return err
	}
	if in.Points < 1 || in.Points > s.MaxActionPoints {
		return errs.Validation("Points must be between 1 and %d", s.MaxActionPoints)
	}
	if len(in.CaptureMethods) == 0 {
		return errs.Validation("At least one capture method must be specified")
	}
	for _, m := range in.CaptureMethods {
		if m != models.CaptureUI && m != models.CaptureImport {
			return errs.Validation("Unknown capture method: %s", m)
		}
	}
	if len(in.AllowedReporters) == 0 {
		return errs.Validation("At least one reporter type must be specified")
	}
	for _, r := range in.AllowedReporters {
		if r != models.ReporterSelf && r != models.ReporterPeer && r != models.ReporterManager {
			return errs.Validation("Unknown reporter type: %s", r)
		}
	}
	if in.CaptureRule != "" {
		if err := rules.Compile(in.CaptureRule); err != nil {
			return errs.Validation("%s", err.Error())
		}
	}
	return nil
}

func (s *OrganizationServiceImpl) validateMissionType(org *models.Organization, in *MissionTypeInput) error {
	if err := validateName("Mission type", in.Name, maxNameLength); err != nil {
		return err
	}
	if err := validateSymbol("Badge", in.Badge); err != nil {
		return err
	}
	if in.BonusPoints < 0 || in.BonusPoints > s.MaxBonusPoints {
		return errs.Validation("Bonus points must be between 0 and %d", s.MaxBonusPoints)
	}

	ids := make([]string, 0, len(in.RequiredActionTypeIDs)+len(in.RequiredActionTypeNames))
	seen := map[string]bool{}
	for _, id := range in.RequiredActionTypeIDs {
		if _, ok := org.ActionType(id); !ok {
			return errs.NotFound("Action type not found: %s", id)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, name := range in.RequiredActionTypeNames {
		at, ok := org.ActionTypeByName(name)
		if !ok {
			return errs.NotFound("Action type not found: %s", name)
		}
		if !seen[at.ID] {
			seen[at.ID] = true
			ids = append(ids, at.ID)
		}
	}
	if len(ids) == 0 {
		return errs.Validation("At least one required action type must be specified")
	}
	in.RequiredActionTypeIDs = ids
	return nil
}

func validateRank(in RankInput) error {
	if err := validateName("Rank", in.Name, maxRankNameLength); err != nil {
		return err
	}
	if in.PointsThreshold < 0 {
		return errs.Validation("Points threshold cannot be negative")
	}
	if err := validateSymbol("Insignia", in.Insignia); err != nil {
		return err
	}
	if in.Order < 1 {
		return errs.Validation("Order must be at least 1")
	}
	return nil
}

func validateName(kind, name string, max int) error {
	if strings.TrimSpace(name) == "" {
		return errs.Validation("%s name is required", kind)
	}
	if utf8.RuneCountInString(name) > max {
		return errs.Validation("%s name must be at most %d characters", kind, max)
	}
	return nil
}

func validateSymbol(kind, v string) error {
	if strings.TrimSpace(v) == "" {
		return errs.Validation("%s is required", kind)
	}
	if utf8.RuneCountInString(v) > maxSymbolLength {
		return errs.Validation("%s must be at most %d characters", kind, maxSymbolLength)
	}
	return nil
}
