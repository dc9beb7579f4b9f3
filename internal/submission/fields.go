package submission

// Field describes one setup attribute: its JSON name, its column and how to
// reach it on a Setup or a Patch.
type Field struct {
	Name    string
	Column  string
	Label   string
	Section string
	Enum    bool

	value func(*Setup) *string
	patch func(*Patch) **string
}

// Value returns the field's value on s.
func (f Field) Value(s *Setup) string {
	return *f.value(s)
}

// Section names used when grouping fields for display.
const (
	SectionGeneral    = "General"
	SectionEngine     = "Engine"
	SectionTyres      = "Tyres"
	SectionChassis    = "Chassis"
	SectionConclusion = "Conclusion"
)

// Fields lists every setup field in form order.
var Fields = []Field{
	{"sessionType", "session_type", "Session Type", SectionGeneral, true,
		func(s *Setup) *string { return &s.SessionType }, func(p *Patch) **string { return &p.SessionType }},
	{"classCode", "class_code", "Class", SectionGeneral, false,
		func(s *Setup) *string { return &s.ClassCode }, func(p *Patch) **string { return &p.ClassCode }},
	{"track", "track", "Track", SectionGeneral, false,
		func(s *Setup) *string { return &s.Track }, func(p *Patch) **string { return &p.Track }},
	{"championship", "championship", "Championship", SectionGeneral, false,
		func(s *Setup) *string { return &s.Championship }, func(p *Patch) **string { return &p.Championship }},
	{"division", "division", "Division", SectionGeneral, false,
		func(s *Setup) *string { return &s.Division }, func(p *Patch) **string { return &p.Division }},
	{"engineNumber", "engine_number", "Engine Number", SectionEngine, false,
		func(s *Setup) *string { return &s.EngineNumber }, func(p *Patch) **string { return &p.EngineNumber }},
	{"gearRatio", "gear_ratio", "Gear Ratio", SectionEngine, false,
		func(s *Setup) *string { return &s.GearRatio }, func(p *Patch) **string { return &p.GearRatio }},
	{"driveSprocket", "drive_sprocket", "Drive Sprocket", SectionEngine, false,
		func(s *Setup) *string { return &s.DriveSprocket }, func(p *Patch) **string { return &p.DriveSprocket }},
	{"drivenSprocket", "driven_sprocket", "Driven Sprocket", SectionEngine, false,
		func(s *Setup) *string { return &s.DrivenSprocket }, func(p *Patch) **string { return &p.DrivenSprocket }},
	{"carburatorNumber", "carburator_number", "Carburator Number", SectionEngine, false,
		func(s *Setup) *string { return &s.CarburatorNumber }, func(p *Patch) **string { return &p.CarburatorNumber }},
	{"tyreModel", "tyre_model", "Tyre Model", SectionTyres, false,
		func(s *Setup) *string { return &s.TyreModel }, func(p *Patch) **string { return &p.TyreModel }},
	{"tyreAge", "tyre_age", "Tyre Age", SectionTyres, false,
		func(s *Setup) *string { return &s.TyreAge }, func(p *Patch) **string { return &p.TyreAge }},
	{"tyreColdPressure", "tyre_cold_pressure", "Cold Pressure", SectionTyres, false,
		func(s *Setup) *string { return &s.TyreColdPressure }, func(p *Patch) **string { return &p.TyreColdPressure }},
	{"chassis", "chassis", "Chassis", SectionChassis, false,
		func(s *Setup) *string { return &s.Chassis }, func(p *Patch) **string { return &p.Chassis }},
	{"axle", "axle", "Axle", SectionChassis, false,
		func(s *Setup) *string { return &s.Axle }, func(p *Patch) **string { return &p.Axle }},
	{"rearHubsMaterial", "rear_hubs_material", "Rear Hubs Material", SectionChassis, true,
		func(s *Setup) *string { return &s.RearHubsMaterial }, func(p *Patch) **string { return &p.RearHubsMaterial }},
	{"rearHubsLength", "rear_hubs_length", "Rear Hubs Length", SectionChassis, false,
		func(s *Setup) *string { return &s.RearHubsLength }, func(p *Patch) **string { return &p.RearHubsLength }},
	{"frontHeight", "front_height", "Front Height", SectionChassis, true,
		func(s *Setup) *string { return &s.FrontHeight }, func(p *Patch) **string { return &p.FrontHeight }},
	{"backHeight", "back_height", "Back Height", SectionChassis, true,
		func(s *Setup) *string { return &s.BackHeight }, func(p *Patch) **string { return &p.BackHeight }},
	{"frontHubsMaterial", "front_hubs_material", "Front Hubs Material", SectionChassis, true,
		func(s *Setup) *string { return &s.FrontHubsMaterial }, func(p *Patch) **string { return &p.FrontHubsMaterial }},
	{"frontBar", "front_bar", "Front Bar", SectionChassis, true,
		func(s *Setup) *string { return &s.FrontBar }, func(p *Patch) **string { return &p.FrontBar }},
	{"spindle", "spindle", "Spindle", SectionChassis, true,
		func(s *Setup) *string { return &s.Spindle }, func(p *Patch) **string { return &p.Spindle }},
	{"caster", "caster", "Caster", SectionChassis, false,
		func(s *Setup) *string { return &s.Caster }, func(p *Patch) **string { return &p.Caster }},
	{"seatPosition", "seat_position", "Seat Position", SectionChassis, false,
		func(s *Setup) *string { return &s.SeatPosition }, func(p *Patch) **string { return &p.SeatPosition }},
	{"lapTime", "lap_time", "Best Lap Time", SectionConclusion, false,
		func(s *Setup) *string { return &s.LapTime }, func(p *Patch) **string { return &p.LapTime }},
	{"observation", "observation", "Observation", SectionConclusion, false,
		func(s *Setup) *string { return &s.Observation }, func(p *Patch) **string { return &p.Observation }},
}

// FieldsIn returns the fields of one display section, in form order.
func FieldsIn(section string) []Field {
	var out []Field
	for _, f := range Fields {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}

// Apply copies the non-nil fields of p onto s.
func (p *Patch) Apply(s *Setup) {
	for _, f := range Fields {
		if v := *f.patch(p); v != nil {
			*f.value(s) = *v
		}
	}
}

// Empty reports whether p changes nothing.
func (p *Patch) Empty() bool {
	if p.IsFavorite != nil {
		return false
	}
	for _, f := range Fields {
		if *f.patch(p) != nil {
			return false
		}
	}
	return true
}
