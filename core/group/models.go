package group

// DefaultColor is displayed for groups without a color, or unknown groups.
const DefaultColor = "#6B7280"

// Categories used by the dashboard aggregation.
const (
	CategoryJovenes    = "jovenes"
	CategoryPrejovenes = "prejovenes"
)

type Group struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Category string `json:"category,omitempty"`
}

// DisplayColor returns the group color or DefaultColor.
func (g Group) DisplayColor() string {
	if g.Color == "" {
		return DefaultColor
	}
	return g.Color
}
