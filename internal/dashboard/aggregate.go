// Package dashboard cross-references sites, assignments and persisted
// reports into per-region progress counts.
package dashboard

import (
	"sort"

	"github.com/gregori0101/infrasites-sub001/internal/assignment"
	"github.com/gregori0101/infrasites-sub001/internal/report"
	"github.com/gregori0101/infrasites-sub001/internal/site"
)

// RegionSummary is the per-region rollup shown on the supervisor dashboard.
type RegionSummary struct {
	Region     string `json:"region"`
	Sites      int    `json:"sites"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"in_progress"`
	Completed  int    `json:"completed"`
	Unassigned int    `json:"unassigned"`
}

// Aggregate computes the per-region summaries from three independently
// fetched collections. Completed counts come from persisted reports keyed
// by the site code's region prefix, not from assignment status, because a
// report can exist without a formal assignment. When a site carries
// several assignments the most advanced status wins (done > in_progress >
// pending). Regions appearing only in reports are still listed, with zero
// site counts.
func Aggregate(sites []site.Site, assignments []assignment.Assignment, reports []report.Summary) []RegionSummary {
	bySite := map[string]assignment.Status{}
	for _, a := range assignments {
		if current, ok := bySite[a.SiteCode]; !ok || statusRank(a.Status) > statusRank(current) {
			bySite[a.SiteCode] = a.Status
		}
	}

	summaries := map[string]*RegionSummary{}
	regionFor := func(code string) *RegionSummary {
		s, ok := summaries[code]
		if !ok {
			s = &RegionSummary{Region: code}
			summaries[code] = s
		}
		return s
	}

	for _, st := range sites {
		s := regionFor(string(st.Region))
		s.Sites++
		status, assigned := bySite[st.Code]
		if !assigned {
			s.Unassigned++
			continue
		}
		switch status {
		case assignment.StatusPending:
			s.Pending++
		case assignment.StatusInProgress:
			s.InProgress++
		}
	}

	for _, rep := range reports {
		code := rep.RegionCode()
		if code == "" {
			continue
		}
		regionFor(code).Completed++
	}

	out := make([]RegionSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}

func statusRank(status assignment.Status) int {
	switch status {
	case assignment.StatusDone:
		return 3
	case assignment.StatusInProgress:
		return 2
	case assignment.StatusPending:
		return 1
	default:
		return 0
	}
}
