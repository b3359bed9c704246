package domain

// ManufacturerKey is the canonical identifier of a roofing manufacturer.
type ManufacturerKey string

const (
	JohnsManville ManufacturerKey = "johns_manville"
	Elevate       ManufacturerKey = "elevate"
	Carlisle      ManufacturerKey = "carlisle"
	GAF           ManufacturerKey = "gaf"
	Firestone     ManufacturerKey = "firestone"
	Versico       ManufacturerKey = "versico"
)

// DeckType is the structural roof deck named in a description.
type DeckType string

const (
	DeckSteel    DeckType = "steel"
	DeckConcrete DeckType = "concrete"
	DeckWood     DeckType = "wood"
)

// MembraneType is the requested roof membrane, stored uppercased.
type MembraneType string

const (
	MembraneTPO             MembraneType = "TPO"
	MembranePVC             MembraneType = "PVC"
	MembraneEPDM            MembraneType = "EPDM"
	MembraneModifiedBitumen MembraneType = "MODIFIED BITUMEN"
	MembraneBuiltUp         MembraneType = "BUILT-UP"
)

// AttachmentMethod is how the membrane is secured to the deck.
type AttachmentMethod string

const (
	AttachmentFullyAdhered         AttachmentMethod = "fully_adhered"
	AttachmentMechanicallyAttached AttachmentMethod = "mechanically_attached"
	AttachmentBallasted            AttachmentMethod = "ballasted"
)

// ClimateZone is the coarse climate bucket of a state.
type ClimateZone string

const (
	ClimateCold      ClimateZone = "cold"
	ClimateHot       ClimateZone = "hot"
	ClimateTemperate ClimateZone = "temperate"
)

// ASCE7_22 is the only load standard the wind tables and catalog are calibrated to.
const ASCE7_22 = "asce_7_22"

// Requirements is the structured form of a free-text project description.
// It is built once per description by ExtractRequirements and treated as
// read-only afterwards.
type Requirements struct {
	Manufacturers       []ManufacturerKey   `json:"manufacturers"`
	Building            Building            `json:"building"`
	Location            Location            `json:"location"`
	RoofSystem          RoofSystem          `json:"roof_system"`
	Compliance          Compliance          `json:"compliance"`
	SpecialRequirements SpecialRequirements `json:"special_requirements"`
}

// Building holds the geometry extracted from the description. Dimensions are in feet.
type Building struct {
	Height   *int     `json:"height,omitempty"`
	Width    *int     `json:"width,omitempty"`
	DeckType DeckType `json:"deck_type,omitempty"`
}

// Location is the project site. Region is set iff State is set.
type Location struct {
	City    string         `json:"city,omitempty"`
	State   string         `json:"state,omitempty"`
	Address string         `json:"address,omitempty"`
	Region  *RegionProfile `json:"region,omitempty"`
}

// RegionProfile describes the wind and climate hazards of a state/city pair.
type RegionProfile struct {
	IsCoastal     bool        `json:"is_coastal"`
	HurricaneRisk bool        `json:"hurricane_risk"`
	HVHZ          bool        `json:"hvhz"`
	County        string      `json:"county,omitempty"`
	ClimateZone   ClimateZone `json:"climate_zone"`
}

// RoofSystem holds the membrane and attachment preferences.
type RoofSystem struct {
	MembraneType     MembraneType     `json:"membrane_type,omitempty"`
	AttachmentMethod AttachmentMethod `json:"attachment_method,omitempty"`
}

// Compliance holds explicitly requested approvals and the load standard.
type Compliance struct {
	MiamiDadeNOA bool   `json:"miami_dade_noa,omitempty"`
	ICCES        bool   `json:"icc_es,omitempty"`
	ASCEStandard string `json:"asce_standard"`
}

// SpecialRequirements flags performance requirements beyond wind uplift.
type SpecialRequirements struct {
	HailResistance      bool `json:"hail_resistance,omitempty"`
	SeismicRequirements bool `json:"seismic_requirements,omitempty"`
}

// HasRegion reports whether the location resolved to a state.
func (l Location) HasRegion() bool {
	return l.Region != nil
}
