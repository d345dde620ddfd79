package member

import (
	"math"
	"sort"
	"time"

	"github.com/ministerio-jovenes/asistencia/core"
)

// Filter selects members for the directory listing.
type Filter struct {
	GroupID      int    // 0 means every group
	Search       string // case-insensitive name substring
	ShowInactive bool
}

// Apply returns the members matching the filter, keeping the input order.
func (f Filter) Apply(members []Member) []Member {
	filtered := make([]Member, 0, len(members))
	for _, mem := range members {
		if !f.ShowInactive && !mem.IsActive {
			continue
		}
		if f.GroupID > 0 && mem.GroupID != f.GroupID {
			continue
		}
		if !core.ContainsFold(mem.Name, f.Search) {
			continue
		}
		filtered = append(filtered, mem)
	}
	return filtered
}

type (
	GroupCount struct {
		GroupID int    `json:"group_id"`
		Name    string `json:"name"`
		Color   string `json:"color"`
		Count   int    `json:"count"`
	}

	GenderDistribution struct {
		Male         int `json:"male"`
		Female       int `json:"female"`
		MalePct      int `json:"male_pct"`
		FemalePct    int `json:"female_pct"`
		TotalMembers int `json:"total"`
	}

	Summary struct {
		TotalActive  int                `json:"total_active"`
		NewThisMonth int                `json:"new_this_month"`
		ByGroup      []GroupCount       `json:"by_group"`
		Gender       GenderDistribution `json:"gender"`
	}

	// GroupInfo is the subset of a group the summary needs.
	GroupInfo struct {
		ID    int
		Name  string
		Color string
	}
)

// Summarize computes the directory totals over active members.
// `now` picks the current month, which starts at midnight UTC on the 1st.
func Summarize(members []Member, groups []GroupInfo, now time.Time) Summary {
	active := Filter{}.Apply(members)
	return Summary{
		TotalActive:  len(active),
		NewThisMonth: newThisMonth(active, now),
		ByGroup:      byGroup(active, groups),
		Gender:       genderDistribution(active),
	}
}

func newThisMonth(active []Member, now time.Time) int {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var count int
	for _, mem := range active {
		if !mem.CreatedAt.Before(monthStart) {
			count++
		}
	}
	return count
}

func byGroup(active []Member, groups []GroupInfo) []GroupCount {
	counts := make(map[int]int, len(groups))
	for _, mem := range active {
		counts[mem.GroupID]++
	}

	result := make([]GroupCount, 0, len(groups))
	for _, grp := range groups {
		result = append(result, GroupCount{
			GroupID: grp.ID,
			Name:    grp.Name,
			Color:   grp.Color,
			Count:   counts[grp.ID],
		})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result
}

func genderDistribution(active []Member) GenderDistribution {
	var dist GenderDistribution
	for _, mem := range active {
		switch mem.Gender {
		case GenderMale:
			dist.Male++
		case GenderFemale:
			dist.Female++
		}
	}
	dist.TotalMembers = dist.Male + dist.Female
	if dist.TotalMembers == 0 {
		dist.MalePct, dist.FemalePct = 50, 50
		return dist
	}
	dist.MalePct = int(math.Round(float64(dist.Male) * 100 / float64(dist.TotalMembers)))
	dist.FemalePct = int(math.Round(float64(dist.Female) * 100 / float64(dist.TotalMembers)))
	return dist
}
