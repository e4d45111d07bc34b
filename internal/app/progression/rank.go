package progression

// rankTier maps a level lower bound to a named tier.
type rankTier struct {
	MinLevel int
	Label    string
}

// rankTable is ordered by ascending MinLevel. Resolution is the highest
// tier whose lower bound the level meets; ties resolve to the higher
// tier because the scan keeps the last match.
var rankTable = []rankTier{
	{0, "Beginner"},
	{5, "Intermediate"},
	{10, "Advanced"},
	{20, "Expert"},
	{30, "Master"},
	{50, "Legendary"},
}

// RankForLevel returns the display rank for a level.
func RankForLevel(level int) string {
	label := rankTable[0].Label
	for _, tier := range rankTable {
		if level >= tier.MinLevel {
			label = tier.Label
		}
	}
	return label
}
