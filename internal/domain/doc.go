// Package domain turns free-text commercial roofing project descriptions into
// a wind load estimate and a list of manufacturer systems that can be
// specified for the site.
//
// # Stages
//
// Region classification, requirement extraction, wind estimation and
// approval matching run in that order. Each stage is pure: the only shared
// state is the read-only manufacturer catalog and the package clock.
//
//	text ─▶ ExtractRequirements ─▶ EstimateWindLoads ─▶ Matcher.Match ─▶ Analysis
//	              │
//	              └─▶ ClassifyRegion
//
// # Description Conventions
//
// Descriptions are short, informal project summaries such as
// "JM and Carlisle TPO 45ft Miami FL with NOA". Extraction follows these
// conventions:
//
//	Manufacturers: alias substrings ("jm", "holcim", "carlisle syntec"),
//	  reported once each in alias-table order.
//	Height: "<N> ft high", "height: <N>", or a bare "<N>ft" as last resort.
//	Width: "<N> ft wide" or "width: <N>". A bare "<N>ft" is never a width.
//	Location: "<City> <ST>" or "<City>, <ST|State Name>". State codes must
//	  be uppercase so lowercase words like "or" and "in" are not read as states.
//
// # Regions
//
// The Florida High-Velocity Hurricane Zone (HVHZ) covers Miami-Dade, Broward
// and Palm Beach counties. HVHZ is detected from city keywords only and only
// for FL.
//
// # Wind Loads
//
// Wind speeds are a nominal regional estimate, not a certified ASCE 7
// calculation. Every WindData carries WindSpeedSource "fallback_estimation"
// and every Analysis carries a warning saying so.
//
//	HVHZ 175 mph | hurricane state 140 | coastal state 110 | otherwise 90
//	qz = 0.00256 · V²   (Kz, Kzt, Kd fixed at 1.0)
//	zone1' 1.2·qz | zone2 1.8·qz | zone3 2.8·qz
//
// # Approvals
//
// HVHZ sites require a Miami-Dade Notice of Acceptance (NOA). The rest of
// Florida requires a Florida Product Approval. Everywhere else an ICC-ES
// evaluation report is recommended. A matched system's rated maximum design
// pressure must cover the zone 3 pressure.
//
// # ID Generation
//
// Analysis IDs are UUIDv5 values of the trimmed description, so replays of
// the same description produce the same ID downstream. See [AnalysisID].
package domain
