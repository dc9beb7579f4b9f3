package submission

import "strings"

type enumValue struct {
	code  string
	label string
}

var sessionTypes = []enumValue{
	{"Practice1", "Practice 1"},
	{"Practice2", "Practice 2"},
	{"Practice3", "Practice 3"},
	{"Practice4", "Practice 4"},
	{"Practice5", "Practice 5"},
	{"Practice6", "Practice 6"},
	{"HappyHour", "Happy Hour"},
	{"WarmUp", "Warm Up"},
	{"Qualifying", "Qualifying"},
	{"Race1", "Race 1"},
	{"Race2", "Race 2"},
	{"PreFinal", "Pre Final"},
	{"Final", "Final"},
	{"Heat1", "Heat 1"},
	{"Heat2", "Heat 2"},
	{"Heat3", "Heat 3"},
	{"Heat4", "Heat 4"},
	{"Heat5", "Heat 5"},
	{"Heat6", "Heat 6"},
	{"Heat7", "Heat 7"},
	{"SuperHeat1", "Super Heat 1"},
	{"SuperHeat2", "Super Heat 2"},
}

var (
	hubMaterials = []enumValue{{"Aluminium", "Aluminium"}, {"Magnesium", "Magnesium"}}
	heights      = []enumValue{{"Low", "Low"}, {"Medium", "Medium"}, {"High", "High"}, {"Standard", "Standard"}}
	frontBars    = []enumValue{{"Nylon", "Nylon"}, {"Standard", "Standard"}, {"Black", "Black"}, {"None", "None"}}
	spindles     = []enumValue{{"Blue", "Blue"}, {"Standard", "Standard"}, {"Red", "Red"}, {"Green", "Green"}, {"Gold", "Gold"}}
)

var enumsByField = map[string][]enumValue{
	"sessionType":       sessionTypes,
	"rearHubsMaterial":  hubMaterials,
	"frontHeight":       heights,
	"backHeight":        heights,
	"frontHubsMaterial": hubMaterials,
	"frontBar":          frontBars,
	"spindle":           spindles,
}

type enumTable struct {
	toCode  map[string]string
	toLabel map[string]string
}

var enumTables = buildEnumTables()

func buildEnumTables() map[string]enumTable {
	tables := make(map[string]enumTable, len(enumsByField))
	for field, values := range enumsByField {
		t := enumTable{
			toCode:  make(map[string]string, len(values)*2),
			toLabel: make(map[string]string, len(values)),
		}
		for _, v := range values {
			t.toCode[v.label] = v.code
			t.toCode[v.code] = v.code
			t.toLabel[v.code] = v.label
		}
		tables[field] = t
	}
	return tables
}

// Normalize maps a human-readable label (or an already canonical code) of an
// enum field to its stored code. Unknown values and non-enum fields pass
// through unchanged apart from surrounding whitespace.
func Normalize(field, value string) string {
	value = strings.TrimSpace(value)
	t, ok := enumTables[field]
	if !ok {
		return value
	}
	if code, ok := t.toCode[value]; ok {
		return code
	}
	return value
}

// Label maps a stored code back to its display label.
func Label(field, code string) string {
	if t, ok := enumTables[field]; ok {
		if label, ok := t.toLabel[code]; ok {
			return label
		}
	}
	return code
}

// Options returns the display labels of an enum field in form order, or nil
// when field is not an enum.
func Options(field string) []string {
	values, ok := enumsByField[field]
	if !ok {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.label
	}
	return out
}
