package track

const (
	// MaxCategory is the highest storm category.
	MaxCategory = 5
)

// categories is ordered by ascending lower bound in mph. A speed belongs to
// the last row whose bound it reaches; the final row is unbounded above.
var categories = []struct {
	minMPH int
	color  string
}{
	{0, "white"},
	{74, "blue"},
	{96, "green"},
	{111, "yellow"},
	{130, "orange"},
	{157, "red"},
}

// CategoryFromSpeed returns the storm category (0-5) for the max sustained
// wind speed. Category 0 is below hurricane strength.
func CategoryFromSpeed(mph int) int {
	cat := 0
	for i, c := range categories {
		if mph >= c.minMPH {
			cat = i
		}
	}
	return cat
}

// Color returns the draw color for category. Out of range values clamp.
func Color(category int) string {
	return categories[clamp(category)].color
}

// LineWidth returns the pen thickness for category.
func LineWidth(category int) int {
	return clamp(category) + 1
}

func clamp(category int) int {
	if category < 0 {
		return 0
	}
	if category > MaxCategory {
		return MaxCategory
	}
	return category
}
