package projection

import "strings"

// rivalries holds the protected annual matchups whose results run closer
// than ratings suggest. Keys are canonicalized pair strings; see rivalryKey.
var rivalries = map[string]bool{}

func init() {
	pairs := [][2]string{
		{"Michigan", "Ohio State"},
		{"Alabama", "Auburn"},
		{"Oklahoma", "Texas"},
		{"Army", "Navy"},
		{"Florida", "Georgia"},
		{"Notre Dame", "USC"},
		{"Oregon", "Oregon State"},
		{"Michigan", "Michigan State"},
		{"Florida State", "Miami"},
		{"Clemson", "South Carolina"},
		{"Ole Miss", "Mississippi State"},
		{"Utah", "BYU"},
		{"Washington", "Washington State"},
		{"Iowa", "Iowa State"},
	}
	for _, p := range pairs {
		rivalries[rivalryKey(p[0], p[1])] = true
	}
}

// rivalryKey canonicalizes a matchup so lookups ignore home/away order
// and letter case.
func rivalryKey(a, b string) string {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// IsRivalryGame reports whether the matchup is a protected rivalry.
func IsRivalryGame(home, away string) bool {
	return rivalries[rivalryKey(home, away)]
}
