package submission

import (
	"time"

	"github.com/google/uuid"

	"github.com/kartsetup/setupsheet/internal/auth"
)

// Setup is the kart configuration a driver records for one session.
// Enum-valued fields hold canonical codes once stored.
type Setup struct {
	SessionType       string `json:"sessionType"`
	ClassCode         string `json:"classCode"`
	Track             string `json:"track"`
	Championship      string `json:"championship"`
	Division          string `json:"division"`
	EngineNumber      string `json:"engineNumber"`
	GearRatio         string `json:"gearRatio"`
	DriveSprocket     string `json:"driveSprocket"`
	DrivenSprocket    string `json:"drivenSprocket"`
	CarburatorNumber  string `json:"carburatorNumber"`
	TyreModel         string `json:"tyreModel"`
	TyreAge           string `json:"tyreAge"`
	TyreColdPressure  string `json:"tyreColdPressure"`
	Chassis           string `json:"chassis"`
	Axle              string `json:"axle"`
	RearHubsMaterial  string `json:"rearHubsMaterial"`
	RearHubsLength    string `json:"rearHubsLength"`
	FrontHeight       string `json:"frontHeight"`
	BackHeight        string `json:"backHeight"`
	FrontHubsMaterial string `json:"frontHubsMaterial"`
	FrontBar          string `json:"frontBar"`
	Spindle           string `json:"spindle"`
	Caster            string `json:"caster"`
	SeatPosition      string `json:"seatPosition"`
	LapTime           string `json:"lapTime"`
	Observation       string `json:"observation"`
}

// Patch carries a partial Setup. Nil fields are left untouched.
type Patch struct {
	SessionType       *string `json:"sessionType"`
	ClassCode         *string `json:"classCode"`
	Track             *string `json:"track"`
	Championship      *string `json:"championship"`
	Division          *string `json:"division"`
	EngineNumber      *string `json:"engineNumber"`
	GearRatio         *string `json:"gearRatio"`
	DriveSprocket     *string `json:"driveSprocket"`
	DrivenSprocket    *string `json:"drivenSprocket"`
	CarburatorNumber  *string `json:"carburatorNumber"`
	TyreModel         *string `json:"tyreModel"`
	TyreAge           *string `json:"tyreAge"`
	TyreColdPressure  *string `json:"tyreColdPressure"`
	Chassis           *string `json:"chassis"`
	Axle              *string `json:"axle"`
	RearHubsMaterial  *string `json:"rearHubsMaterial"`
	RearHubsLength    *string `json:"rearHubsLength"`
	FrontHeight       *string `json:"frontHeight"`
	BackHeight        *string `json:"backHeight"`
	FrontHubsMaterial *string `json:"frontHubsMaterial"`
	FrontBar          *string `json:"frontBar"`
	Spindle           *string `json:"spindle"`
	Caster            *string `json:"caster"`
	SeatPosition      *string `json:"seatPosition"`
	LapTime           *string `json:"lapTime"`
	Observation       *string `json:"observation"`
	IsFavorite        *bool   `json:"isFavorite"`
}

// Submission represents a row in the submissions table joined with its owner.
type Submission struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TeamID     uuid.UUID
	Setup      Setup
	IsFavorite bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	User       *auth.User
}

// CreateInput is what a driver sends when submitting the form.
type CreateInput struct {
	UserEmail string
	FirstName string
	LastName  string
	TeamSlug  string
	Setup     Setup
}

// ListFilter narrows a team's submission list. Zero values match everything.
type ListFilter struct {
	SessionType   string
	Track         string
	Championship  string
	Division      string
	Email         string // case-insensitive substring of the driver email
	FavoritesOnly bool
}
