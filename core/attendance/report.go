package attendance

import "github.com/ministerio-jovenes/asistencia/core"

// ReportView is the presented attendance report.
type ReportView struct {
	Start             core.Date      `json:"start"`
	End               core.Date      `json:"end"`
	SelectedGroupName string         `json:"selected_group_name,omitempty"`
	Items             []ReportItem   `json:"items"`
	TotalCount        int            `json:"total_count"`
	AlertCount        int            `json:"alert_count"`
	CountByGroup      map[string]int `json:"count_by_group"`
}

// NewReportView filters the displayed `items` by name. Totals are computed over every row.
// `groupNames` lists every known group, so groups without attendance count 0.
func NewReportView(q ReportQuery, items []ReportItem, search, selectedGroupName string, groupNames []string) ReportView {
	rv := ReportView{
		Start:             q.Start,
		End:               q.End,
		SelectedGroupName: selectedGroupName,
		Items:             make([]ReportItem, 0, len(items)),
		CountByGroup:      make(map[string]int, len(groupNames)),
	}
	for _, name := range groupNames {
		rv.CountByGroup[name] = 0
	}

	for _, item := range items {
		if item.AttendanceCount > 0 {
			rv.TotalCount++
			if _, ok := rv.CountByGroup[item.GroupName]; ok {
				rv.CountByGroup[item.GroupName]++
			}
		}
		if item.NeedsAlert {
			rv.AlertCount++
		}
		if core.ContainsFold(item.FullName, search) {
			rv.Items = append(rv.Items, item)
		}
	}
	return rv
}

// Alerts returns the rows flagged as needing follow-up.
func Alerts(items []ReportItem) []ReportItem {
	alerts := make([]ReportItem, 0)
	for _, item := range items {
		if item.NeedsAlert {
			alerts = append(alerts, item)
		}
	}
	return alerts
}
