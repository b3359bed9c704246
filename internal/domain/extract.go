package domain

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// manufacturerAliases is scanned in order; a manufacturer's position in the
// result is the position of its first matching alias here, not its position
// in the input text.
var manufacturerAliases = []struct {
	alias string
	key   ManufacturerKey
}{
	{"jm", JohnsManville},
	{"johns manville", JohnsManville},
	{"johns-manville", JohnsManville},
	{"elevate", Elevate},
	{"holcim", Elevate},
	{"holcim/elevate", Elevate},
	{"holcim elevate", Elevate},
	{"carlisle", Carlisle},
	{"carlisle syntec", Carlisle},
	{"gaf", GAF},
	{"firestone", Firestone},
	{"versico", Versico},
}

var stateAbbreviations = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR", "california": "CA",
	"colorado": "CO", "connecticut": "CT", "delaware": "DE", "florida": "FL", "georgia": "GA",
	"hawaii": "HI", "idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV", "new hampshire": "NH", "new jersey": "NJ",
	"new mexico": "NM", "new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
}

var (
	heightPatterns = compileAll(
		`(?i)(\d+)\s*ft\s*high`,
		`(?i)(\d+)\s*foot\s*high`,
		`(?i)(\d+)\s*feet\s*high`,
		`(?i)height\s*:\s*(\d+)`,
		`(?i)(\d+)\s*ft\s*h`,
		`(?i)(\d+)\s*ft\b`,
	)

	// Width has no bare "<N> ft" fallback; that form is read as height.
	widthPatterns = compileAll(
		`(?i)(\d+)\s*ft\s*wide`,
		`(?i)(\d+)\s*foot\s*wide`,
		`(?i)(\d+)\s*feet\s*wide`,
		`(?i)width\s*:\s*(\d+)`,
		`(?i)(\d+)\s*ft\s*w`,
	)

	deckTypes = []keywordRule[DeckType]{
		{keywords: []string{"steel deck"}, value: DeckSteel},
		{keywords: []string{"concrete deck"}, value: DeckConcrete},
		{keywords: []string{"wood deck"}, value: DeckWood},
	}

	membraneTypes = []keywordRule[MembraneType]{
		{keywords: []string{"tpo"}, value: MembraneTPO},
		{keywords: []string{"pvc"}, value: MembranePVC},
		{keywords: []string{"epdm"}, value: MembraneEPDM},
		{keywords: []string{"modified bitumen"}, value: MembraneModifiedBitumen},
		{keywords: []string{"built-up"}, value: MembraneBuiltUp},
	}

	attachmentMethods = []keywordRule[AttachmentMethod]{
		{keywords: []string{"fully adhered"}, value: AttachmentFullyAdhered},
		{keywords: []string{"mechanically attached"}, value: AttachmentMechanicallyAttached},
		{keywords: []string{"ballasted"}, value: AttachmentBallasted},
	}

	noaKeywords      = []string{"miami dade noa", "miami-dade noa", "noa"}
	iccESKeywords    = []string{"icc-es", "icc es"}
	hailKeywords     = []string{"hail resistant", "class 3", "class 4"}
	seismicKeywords  = []string{"seismic", "earthquake"}
	cityFillerPrefix = regexp.MustCompile(`(?i)^(?:ft|\d+|high|building|tpo|noa|with)\b\s*`)
	cityStopword     = regexp.MustCompile(`(?i)^(?:ft|\d+|high|building|tpo|noa|with|and|or)$`)
)

// locationPatterns are tried in order. Candidates with a city score 3, bare
// states score 1; a later candidate replaces the best only with a strictly
// higher score, so the first candidate at the top score wins.
var locationPatterns = []struct {
	re      *regexp.Regexp
	hasCity bool
}{
	// "Miami FL", "Dallas TX"
	{re: regexp.MustCompile(`\b((?i:[a-z\s]+?))\s+([A-Z]{2})\b`), hasCity: true},
	// "Miami, FL", "Austin, Texas"
	{re: regexp.MustCompile(`((?i:[a-z\s]+)),\s*([A-Z]{2}|(?i:` + stateNameAlternation() + `))\b`), hasCity: true},
	// "FL"
	{re: regexp.MustCompile(`\b([A-Z]{2})\b`), hasCity: false},
}

// keywordRule maps any of its keywords to a value. Rules are evaluated in
// slice order with early exit.
type keywordRule[T any] struct {
	keywords []string
	value    T
}

// ExtractRequirements parses a free-text project description. Every
// sub-extraction is independent; a missing match leaves the field at its zero
// value. The only failure is text that is not valid UTF-8.
func ExtractRequirements(text string) (Requirements, error) {
	if !utf8.ValidString(text) {
		return Requirements{}, stageErr(StageExtract, "input", ErrInvalidInput)
	}

	lower := strings.ToLower(text)

	return Requirements{
		Manufacturers:       extractManufacturers(lower),
		Building:            extractBuilding(text, lower),
		Location:            extractLocation(text),
		RoofSystem:          extractRoofSystem(lower),
		Compliance:          extractCompliance(lower),
		SpecialRequirements: extractSpecialRequirements(lower),
	}, nil
}

func extractManufacturers(lower string) []ManufacturerKey {
	found := make([]ManufacturerKey, 0, 2)
	seen := make(map[ManufacturerKey]bool)
	for _, a := range manufacturerAliases {
		if seen[a.key] || !strings.Contains(lower, a.alias) {
			continue
		}
		seen[a.key] = true
		found = append(found, a.key)
	}
	return found
}

func extractBuilding(text, lower string) Building {
	var b Building
	if h, ok := firstInt(text, heightPatterns); ok {
		b.Height = &h
	}
	if w, ok := firstInt(text, widthPatterns); ok {
		b.Width = &w
	}
	b.DeckType, _ = firstKeyword(lower, deckTypes)
	return b
}

type locationCandidate struct {
	city  string
	state string
	score int
}

func extractLocation(text string) Location {
	var best locationCandidate
	for _, p := range locationPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		candidate := locationCandidate{state: strings.TrimSpace(m[1]), score: 1}
		if p.hasCity {
			city, ok := cleanCity(m[1])
			if !ok {
				continue
			}
			candidate = locationCandidate{city: city, state: strings.TrimSpace(m[2]), score: 3}
		}

		if candidate.score > best.score {
			best = candidate
		}
	}

	if best.score == 0 {
		return Location{}
	}

	state := normalizeState(best.state)
	loc := Location{City: best.city, State: state, Address: state}
	if loc.City != "" {
		loc.Address = loc.City + ", " + state
	}
	region := ClassifyRegion(state, loc.City)
	loc.Region = &region
	return loc
}

// cleanCity strips one leading filler token and rejects residues that cannot
// be a city name.
func cleanCity(raw string) (string, bool) {
	city := strings.TrimSpace(raw)
	city = strings.TrimSpace(cityFillerPrefix.ReplaceAllString(city, ""))
	if len(city) < 2 || cityStopword.MatchString(city) {
		return "", false
	}
	return city, true
}

func normalizeState(token string) string {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if len(normalized) == 2 {
		return strings.ToUpper(normalized)
	}
	if abbr, ok := stateAbbreviations[normalized]; ok {
		return abbr
	}
	return strings.ToUpper(token)
}

func extractRoofSystem(lower string) RoofSystem {
	var rs RoofSystem
	rs.MembraneType, _ = firstKeyword(lower, membraneTypes)
	rs.AttachmentMethod, _ = firstKeyword(lower, attachmentMethods)
	return rs
}

func extractCompliance(lower string) Compliance {
	return Compliance{
		MiamiDadeNOA: containsAny(lower, noaKeywords),
		ICCES:        containsAny(lower, iccESKeywords),
		ASCEStandard: ASCE7_22,
	}
}

func extractSpecialRequirements(lower string) SpecialRequirements {
	return SpecialRequirements{
		HailResistance:      containsAny(lower, hailKeywords),
		SeismicRequirements: containsAny(lower, seismicKeywords),
	}
}

// firstInt returns the first capture group of the first pattern that matches.
// A capture that overflows int falls through to the next pattern.
func firstInt(text string, patterns []*regexp.Regexp) (int, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

func firstKeyword[T any](lower string, rules []keywordRule[T]) (T, bool) {
	for _, r := range rules {
		if containsAny(lower, r.keywords) {
			return r.value, true
		}
	}
	var zero T
	return zero, false
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// stateNameAlternation lists full state names longest first so that
// "west virginia" is preferred over "virginia".
func stateNameAlternation() string {
	names := make([]string, 0, len(stateAbbreviations))
	for name := range stateAbbreviations {
		names = append(names, regexp.QuoteMeta(name))
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return strings.Join(names, "|")
}
