package domain

import (
	"fmt"
	"log/slog"
)

// RequiredApproval is the approval tier a project's jurisdiction demands.
// A fallback tier, when set, is considered only if the primary tier is missing,
// and never satisfies a mandatory requirement.
type RequiredApproval struct {
	Tier        ApprovalTier `json:"tier"`
	Description string       `json:"description"`
	Mandatory   bool         `json:"mandatory"`
	Fallback    ApprovalTier `json:"fallback,omitempty"`
}

// ApprovalUsed is the approval a match was accepted on.
type ApprovalUsed struct {
	Tier     ApprovalTier `json:"tier"`
	Approval Approval     `json:"data"`
}

// MatchResult is one manufacturer accepted for the project.
type MatchResult struct {
	ManufacturerKey  ManufacturerKey `json:"manufacturer_key"`
	ManufacturerName string          `json:"manufacturer_name"`
	ApprovalUsed     ApprovalUsed    `json:"approval_used"`
	PressureMargin   float64         `json:"pressure_margin"`
	Products         Products        `json:"products"`
}

// RejectionReason explains why a requested manufacturer was excluded.
type RejectionReason string

const (
	RejectNotInCatalog         RejectionReason = "not_in_catalog"
	RejectNoSuitableApproval   RejectionReason = "no_suitable_approval"
	RejectInsufficientPressure RejectionReason = "insufficient_pressure"
)

// Rejection records an excluded manufacturer.
type Rejection struct {
	ManufacturerKey ManufacturerKey `json:"manufacturer_key"`
	Reason          RejectionReason `json:"reason"`
	Detail          string          `json:"detail"`
}

// MatchOutcome is the result of matching one project against the catalog.
// Matches follow the order of Requirements.Manufacturers.
type MatchOutcome struct {
	Required    RequiredApproval `json:"required_approval"`
	MaxPressure float64          `json:"max_pressure"`
	Matches     []MatchResult    `json:"matches"`
	Rejections  []Rejection      `json:"rejections,omitempty"`
}

// DetermineRequiredApproval picks the approval tier for a location. HVHZ sites
// need a Miami-Dade NOA; the rest of Florida needs a Florida product approval
// with ICC-ES as a fallback that cannot satisfy it; elsewhere ICC-ES is
// recommended but optional.
func DetermineRequiredApproval(loc Location) RequiredApproval {
	switch {
	case loc.Region != nil && loc.Region.HVHZ:
		return RequiredApproval{
			Tier:        TierMiamiDade,
			Description: "Miami-Dade NOA required for HVHZ",
			Mandatory:   true,
		}
	case loc.State == "FL":
		return RequiredApproval{
			Tier:        TierFloridaStatewide,
			Description: "Florida Product Approval required",
			Mandatory:   true,
			Fallback:    TierICCES,
		}
	default:
		return RequiredApproval{
			Tier:        TierICCES,
			Description: "ICC-ES Report recommended",
			Mandatory:   false,
		}
	}
}

// Matcher filters catalog manufacturers by approval and pressure capacity.
type Matcher struct {
	catalog *Catalog
	logger  *slog.Logger
}

// NewMatcher creates a Matcher over catalog. A nil catalog uses DefaultCatalog
// and a nil logger uses slog.Default.
func NewMatcher(catalog *Catalog, logger *slog.Logger) *Matcher {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{catalog: catalog, logger: logger}
}

// Match checks each requested manufacturer in order. Manufacturers missing
// from the catalog, lacking a suitable approval, or rated below the peak zone
// pressure are excluded and reported as rejections. An empty manufacturer
// list yields an empty outcome.
func (m *Matcher) Match(req Requirements, wind WindData) (MatchOutcome, error) {
	if wind.DesignPressures == nil {
		return MatchOutcome{}, stageErr(StageMatch, "design_pressures", ErrMissingStage)
	}

	maxPressure := wind.MaxPressure()
	required := DetermineRequiredApproval(req.Location)

	outcome := MatchOutcome{
		Required:    required,
		MaxPressure: maxPressure,
		Matches:     make([]MatchResult, 0, len(req.Manufacturers)),
	}

	for _, key := range req.Manufacturers {
		entry, ok := m.catalog.Lookup(key)
		if !ok {
			m.logger.Warn("manufacturer not in catalog", "manufacturer", key)
			outcome.Rejections = append(outcome.Rejections, Rejection{
				ManufacturerKey: key,
				Reason:          RejectNotInCatalog,
				Detail:          fmt.Sprintf("manufacturer not found: %s", key),
			})
			continue
		}

		used, satisfied := checkApproval(entry, required)
		if !satisfied {
			m.logger.Info("no suitable approval", "manufacturer", key, "required_tier", required.Tier)
			outcome.Rejections = append(outcome.Rejections, Rejection{
				ManufacturerKey: key,
				Reason:          RejectNoSuitableApproval,
				Detail:          fmt.Sprintf("no valid %s approval found", required.Tier),
			})
			continue
		}

		mdp := used.Approval.MaxDesignPressure
		if mdp < maxPressure {
			m.logger.Info("insufficient pressure capacity",
				"manufacturer", key,
				"tier", used.Tier,
				"mdp", mdp,
				"max_pressure", maxPressure,
			)
			outcome.Rejections = append(outcome.Rejections, Rejection{
				ManufacturerKey: key,
				Reason:          RejectInsufficientPressure,
				Detail:          fmt.Sprintf("%s rated %.1f psf, design requires %.1f psf", used.Tier, mdp, maxPressure),
			})
			continue
		}

		m.logger.Info("manufacturer compatible", "manufacturer", key, "tier", used.Tier, "margin", mdp-maxPressure)
		outcome.Matches = append(outcome.Matches, MatchResult{
			ManufacturerKey:  key,
			ManufacturerName: entry.Name,
			ApprovalUsed:     used,
			PressureMargin:   mdp - maxPressure,
			Products:         entry.Products,
		})
	}

	return outcome, nil
}

// checkApproval returns the approval to use and whether it satisfies the
// requirement. A fallback tier is returned for disclosure even when it does
// not satisfy a mandatory requirement.
func checkApproval(entry ManufacturerEntry, required RequiredApproval) (ApprovalUsed, bool) {
	if a, ok := entry.Approval(required.Tier); ok {
		return ApprovalUsed{Tier: required.Tier, Approval: a}, true
	}
	if required.Fallback != "" {
		if a, ok := entry.Approval(required.Fallback); ok {
			return ApprovalUsed{Tier: required.Fallback, Approval: a}, !required.Mandatory
		}
	}
	return ApprovalUsed{}, false
}
