package team

import "github.com/google/uuid"

// DefaultPrimaryColor is used for branding when a team has not set one.
const DefaultPrimaryColor = "#dc2626"

// ResolvedConfig is the effective branding and form shape for one team.
type ResolvedConfig struct {
	ID              uuid.UUID
	Slug            string
	Name            string
	LogoURL         *string
	PrimaryColor    string
	FormConfig      FormConfig
	DropdownOptions DropdownOptions
}

// DefaultFormConfig returns a fresh copy of the built-in form configuration.
func DefaultFormConfig() FormConfig {
	return FormConfig{
		EnabledFields: []string{
			"sessionType", "track", "championship", "division",
			"engineNumber", "gearRatio", "driveSprocket", "drivenSprocket", "carburatorNumber",
			"tyreModel", "tyreAge", "tyreColdPressure",
			"chassis", "axle", "rearHubsMaterial", "rearHubsLength",
			"frontHeight", "backHeight", "frontHubsMaterial", "frontBar",
			"spindle", "caster", "seatPosition", "lapTime", "observation",
		},
		RequiredFields: []string{
			"sessionType", "track", "championship", "division",
			"engineNumber", "tyreModel", "tyreAge", "tyreColdPressure",
			"chassis", "axle", "rearHubsMaterial", "rearHubsLength",
			"frontHeight", "backHeight", "frontBar", "spindle", "caster", "seatPosition",
		},
	}
}

// DefaultDropdownOptions returns a fresh copy of the built-in dropdown lists.
func DefaultDropdownOptions() DropdownOptions {
	return DropdownOptions{
		"tracks": {
			"AMR Motorplex", "AMR Motorplex CCW", "Orlando", "Orlando CCW", "Speedsportz Piquet",
			"St Pete", "New Castle", "New Castle Sharkfin", "New Castle CCW", "ROK Rio 2024",
			"Las Vegas Motor Speedway 2023", "Charlotte Speedway", "MCC Cinccinati", "PittRace Trackhouse",
			"Supernats 2024", "Quaker City", "ROK Rio 2025", "Supernats 2025",
			"Hamilton", "Tremblant", "Icar SH Karting", "Mosport", "Portimao",
		},
		"championships": {
			"Skusa Winter Series", "Florida Winter Tour", "Rotax Winter Trophy", "Pro Tour",
			"Skusa Vegas", "ROK Vegas", "Stars Championship Series", "Rotax US East Trophy",
			"Rotax US Final", "Canada National", "Champions of the Future", "World Championship",
			"Supernats 2024", "Coupe de Montreal", "Canadian Open", "Supernats 2025",
		},
		"divisions": {
			"Micro", "Mini", "KA100 Jr", "KA100 Sr", "KA100 Master", "Pro Shifter", "Shifter Master",
			"X30 Junior", "X30 Senior", "ROK Micro", "ROK Mini", "VLR Junior", "VLR Senior",
			"VLR Master", "ROK Shifter", "ROK Master", "ROK Junior", "ROK PRO GP",
			"ROK SV", "Micro Max", "Mini Max", "Junior Max", "Senior Max", "Master Max", "DD2",
			"DD2 Master", "206 Cadet", "206 Junior", "206 Senior", "OKN", "OKNJ", "KZ2", "KZ1", "KZM", "OK", "OKJ",
		},
		"tyreModels": {
			"Mg Red", "Mg Yellow", "MG Wet", "Evinco Blue", "Evinco Blue SKH2", "Evinco Red SKM2",
			"Evinco WET", "Levanto", "Levanto WET", "Bridgestone", "Vega Red", "Vega Blue",
			"Vega Yellow", "Mojo D5", "Mojo D2", "Dunlop", "Dunlop WET",
		},
	}
}

// ResolveConfig merges the team's overrides over the defaults, key by key.
// An override key that is present wins even when its list is empty.
func ResolveConfig(t *Team) ResolvedConfig {
	form := DefaultFormConfig()
	if t.FormConfig != nil {
		if t.FormConfig.EnabledFields != nil {
			form.EnabledFields = append([]string(nil), t.FormConfig.EnabledFields...)
		}
		if t.FormConfig.RequiredFields != nil {
			form.RequiredFields = append([]string(nil), t.FormConfig.RequiredFields...)
		}
	}

	options := DefaultDropdownOptions()
	for key, values := range t.DropdownOptions {
		options[key] = append([]string{}, values...)
	}

	return ResolvedConfig{
		ID:              t.ID,
		Slug:            t.Slug,
		Name:            t.Name,
		LogoURL:         t.LogoURL,
		PrimaryColor:    t.Color(),
		FormConfig:      form,
		DropdownOptions: options,
	}
}

// Color returns the team's primary color or the default one.
func (t *Team) Color() string {
	if t.PrimaryColor == "" {
		return DefaultPrimaryColor
	}
	return t.PrimaryColor
}
