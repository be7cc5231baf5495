package schedule

import (
	"sort"
	"strings"
)

// Sentinel filter values used by the area and mosque dropdowns.
const (
	AllAreas   = "All Areas"
	AllMosques = "All Mosques"
)

// Filter narrows the mosque list. Empty fields behave like AllAreas/AllMosques.
type Filter struct {
	Area   string
	Mosque string
}

func (f Filter) matchesArea(m Mosque) bool {
	return f.Area == "" || f.Area == AllAreas || m.Area == f.Area
}

func (f Filter) matchesMosque(m Mosque) bool {
	return f.Mosque == "" || f.Mosque == AllMosques || m.NameEn == f.Mosque
}

// AreaGroup is a block of mosques sharing an area.
type AreaGroup struct {
	Area    string   `json:"area"`
	Mosques []Mosque `json:"mosques"`
}

// Areas returns the distinct areas, sorted.
func Areas(mosques []Mosque) []string {
	return distinctSorted(mosques, func(m Mosque) (string, bool) { return m.Area, true })
}

// MosqueNames returns the distinct mosque names within area, sorted.
// Pass AllAreas or "" for every area.
func MosqueNames(mosques []Mosque, area string) []string {
	f := Filter{Area: area}
	return distinctSorted(mosques, func(m Mosque) (string, bool) { return m.NameEn, f.matchesArea(m) })
}

// GroupByArea applies f and groups the remaining mosques by area.
// Groups appear in the order their area is first seen in the sheet.
func GroupByArea(mosques []Mosque, f Filter) []AreaGroup {
	var groups []AreaGroup
	index := make(map[string]int)
	for _, m := range FilterMosques(mosques, f) {
		i, ok := index[m.Area]
		if !ok {
			i = len(groups)
			index[m.Area] = i
			groups = append(groups, AreaGroup{Area: m.Area})
		}
		groups[i].Mosques = append(groups[i].Mosques, m)
	}
	return groups
}

// FilterMosques returns the mosques matching f in sheet order.
func FilterMosques(mosques []Mosque, f Filter) []Mosque {
	out := make([]Mosque, 0, len(mosques))
	for _, m := range mosques {
		if f.matchesArea(m) && f.matchesMosque(m) {
			out = append(out, m)
		}
	}
	return out
}

// NormalizeFilter resets the mosque selection when it does not belong to the
// selected area, the same way the dropdowns do when the area changes.
func NormalizeFilter(mosques []Mosque, f Filter) Filter {
	f.Area = strings.TrimSpace(f.Area)
	f.Mosque = strings.TrimSpace(f.Mosque)
	if f.Area == "" {
		f.Area = AllAreas
	}
	if f.Mosque == "" || f.Mosque == AllMosques {
		f.Mosque = AllMosques
		return f
	}
	for _, name := range MosqueNames(mosques, f.Area) {
		if name == f.Mosque {
			return f
		}
	}
	f.Mosque = AllMosques
	return f
}

func distinctSorted(mosques []Mosque, key func(Mosque) (string, bool)) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range mosques {
		k, ok := key(m)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
