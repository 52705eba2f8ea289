package gazetteer

import "strings"

// Level is the administrative level implied by a region code's segment count.
type Level string

const (
	LevelUnknown  Level = "unknown"
	LevelProvince Level = "province"
	LevelRegency  Level = "regency"
	LevelDistrict Level = "district"
	LevelVillage  Level = "village"

	// LevelAll is only meaningful as a search filter.
	LevelAll Level = "all"
)

// Classify derives the level from a dot-separated code. Malformed codes are
// reported as LevelUnknown rather than rejected.
func Classify(code string) Level {
	if code == "" {
		return LevelUnknown
	}
	switch segments(code) {
	case 1:
		if len(code) == 2 {
			return LevelProvince
		}
		return LevelUnknown
	case 2:
		return LevelRegency
	case 3:
		return LevelDistrict
	case 4:
		return LevelVillage
	default:
		return LevelUnknown
	}
}

// Label returns the Indonesian display label used in tool responses.
func (l Level) Label() string {
	switch l {
	case LevelProvince:
		return "Provinsi"
	case LevelRegency:
		return "Kabupaten/Kota"
	case LevelDistrict:
		return "Kecamatan"
	case LevelVillage:
		return "Kelurahan/Desa"
	default:
		return "Unknown"
	}
}

// levelAliases maps accepted filter spellings, English and Indonesian, to levels.
var levelAliases = map[string]Level{
	"all":       LevelAll,
	"province":  LevelProvince,
	"provinsi":  LevelProvince,
	"regency":   LevelRegency,
	"kabkota":   LevelRegency,
	"district":  LevelDistrict,
	"kecamatan": LevelDistrict,
	"village":   LevelVillage,
	"desa":      LevelVillage,
}

// ParseLevelFilter resolves a search filter. Unrecognized values fall back to
// LevelAll; ok reports whether the value was recognized.
func ParseLevelFilter(s string) (level Level, ok bool) {
	level, ok = levelAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return LevelAll, false
	}
	return level, true
}

// Accepts reports whether a code at level other passes l used as a filter.
func (l Level) Accepts(other Level) bool {
	return l == LevelAll || l == other
}

func segments(code string) int {
	return strings.Count(code, ".") + 1
}

// prefix returns the code made of the first k segments.
func prefix(parts []string, k int) string {
	return strings.Join(parts[:k], ".")
}
