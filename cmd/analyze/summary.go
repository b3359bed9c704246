package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/roof-spec-etl/internal/domain"
)

// writeSummary prints a human-readable digest of an analysis.
func writeSummary(w io.Writer, a domain.Analysis) {
	fmt.Fprintf(w, "Input:      %s\n", a.Input)
	fmt.Fprintf(w, "Location:   %s\n", location(a.Requirements.Location))
	fmt.Fprintf(w, "Wind:       %.0f mph (%s), max pressure %.1f psf\n",
		a.Wind.WindSpeed, a.Wind.WindSpeedSource, a.MaxPressure)
	fmt.Fprintf(w, "Approval:   %s\n", a.RequiredApproval.Description)

	if len(a.Matches) == 0 {
		fmt.Fprintln(w, "Matches:    none")
	} else {
		fmt.Fprintln(w, "Matches:")
		for _, m := range a.Matches {
			fmt.Fprintf(w, "  - %s via %s %s (margin %.1f psf)\n",
				m.ManufacturerName, m.ApprovalUsed.Tier, m.ApprovalUsed.Approval.Identifier, m.PressureMargin)
		}
	}

	if len(a.Rejections) > 0 {
		fmt.Fprintln(w, "Rejected:")
		for _, r := range a.Rejections {
			fmt.Fprintf(w, "  - %s: %s (%s)\n", r.ManufacturerKey, r.Reason, r.Detail)
		}
	}

	for _, warning := range a.Warnings {
		fmt.Fprintf(w, "Warning:    %s\n", warning)
	}
}

func location(loc domain.Location) string {
	if loc.State == "" {
		return "unknown"
	}
	parts := make([]string, 0, 3)
	if loc.City != "" {
		parts = append(parts, loc.City)
	}
	parts = append(parts, loc.State)
	s := strings.Join(parts, ", ")
	if loc.Region != nil && loc.Region.HVHZ {
		s += " (HVHZ)"
	}
	return s
}
