package scheduling

// Virtual station identifiers mark day-care ("garden") columns on the
// manager schedule. They are drag targets in the UI, not physical
// stations, and must never be stored as station references.
var virtualStations = map[string]struct{}{
	"garden":          {},
	"garden-full-day": {},
	"garden-hourly":   {},
	"garden-trial":    {},
}

// IsVirtualStation reports whether id denotes a day-care column rather
// than a physical grooming station.
func IsVirtualStation(id string) bool {
	_, ok := virtualStations[id]
	return ok
}

// NormalizeStation maps virtual day-care columns and empty values to a
// null station reference; physical station ids pass through unchanged.
func NormalizeStation(id string) *string {
	if id == "" || IsVirtualStation(id) {
		return nil
	}
	normalized := id
	return &normalized
}
