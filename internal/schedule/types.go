package schedule

// RawGrid is a tokenized CSV document: rows of cells, not necessarily of equal width.
type RawGrid [][]string

// PrayerKey identifies one of the five published prayers.
type PrayerKey string

const (
	Fajr  PrayerKey = "fajr"
	Zuhar PrayerKey = "zuhar"
	Asr   PrayerKey = "asr"
	Isha  PrayerKey = "isha"
	Juma  PrayerKey = "juma"
)

// PrayerKeys lists the prayers in column order (columns 1-5 of the sheet).
var PrayerKeys = [5]PrayerKey{Fajr, Zuhar, Asr, Isha, Juma}

// Title returns the English display name of the prayer.
func (k PrayerKey) Title() string {
	switch k {
	case Fajr:
		return "Fajr"
	case Zuhar:
		return "Zuhar"
	case Asr:
		return "Asr"
	case Isha:
		return "Isha"
	case Juma:
		return "Juma"
	default:
		return string(k)
	}
}

// PrayerContext maps each prayer to the localized label taken from the header row.
type PrayerContext map[PrayerKey]string

// PrayerSlot is one prayer time at one mosque. An empty Time means not published.
type PrayerSlot struct {
	Time  string `json:"time"`
	Label string `json:"label"`
}

// Mosque is a single schedule row.
type Mosque struct {
	Area   string                   `json:"area"`
	NameEn string                   `json:"name_en"`
	NameUr string                   `json:"name_ur"`
	Times  map[PrayerKey]PrayerSlot `json:"times"`
}

// Slots returns the mosque's published slots in column order, skipping empty times.
func (m Mosque) Slots() []NamedSlot {
	slots := make([]NamedSlot, 0, len(PrayerKeys))
	for _, key := range PrayerKeys {
		slot := m.Times[key]
		if slot.Time == "" {
			continue
		}
		slots = append(slots, NamedSlot{Key: key, PrayerSlot: slot})
	}
	return slots
}

// NamedSlot pairs a slot with its prayer key.
type NamedSlot struct {
	Key PrayerKey
	PrayerSlot
}

// ParseResult is everything extracted from one grid.
type ParseResult struct {
	LastUpdated   *string       `json:"last_updated,omitempty"`
	PrayerContext PrayerContext `json:"prayer_context"`
	Mosques       []Mosque      `json:"mosques"`
	FooterNotes   []string      `json:"footer_notes"`
}
