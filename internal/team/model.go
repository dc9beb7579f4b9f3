package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table. A team is the tenant boundary:
// every submission and every non-superadmin manager belongs to exactly one.
type Team struct {
	ID              uuid.UUID
	Slug            string
	Name            string
	LogoURL         *string
	PrimaryColor    string
	EmailFromName   string
	ManagerEmails   []string
	FormConfig      *FormConfigOverride // nil means "use defaults"
	DropdownOptions DropdownOptions     // keys present here replace the defaults
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FormConfig controls which form fields are shown and which are mandatory.
type FormConfig struct {
	EnabledFields  []string `json:"enabledFields"`
	RequiredFields []string `json:"requiredFields"`
}

// FormConfigOverride is the per-team form_config column. A nil slice leaves
// the default list in place.
type FormConfigOverride struct {
	EnabledFields  []string `json:"enabledFields"`
	RequiredFields []string `json:"requiredFields"`
}

// DropdownOptions maps a dropdown key (tracks, championships, ...) to its values.
type DropdownOptions map[string][]string
