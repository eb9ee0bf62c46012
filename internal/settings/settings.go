package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

type Sensitivity string

const (
	SensitivityNone    Sensitivity = "none"
	SensitivityChild   Sensitivity = "child"
	SensitivityElderly Sensitivity = "elderly"
	SensitivityAsthma  Sensitivity = "asthma"
	SensitivityAthlete Sensitivity = "athlete"
)

var Sensitivities = []Sensitivity{SensitivityNone, SensitivityChild, SensitivityElderly, SensitivityAsthma, SensitivityAthlete}

// Sensitive reports whether advice should use the sensitive-group wording.
func (s Sensitivity) Sensitive() bool {
	return s != SensitivityNone && s != ""
}

type UseCase string

const (
	UseCaseOutdoorActivities UseCase = "plan_outdoor_activities"
	UseCaseIndoorAir         UseCase = "manage_indoor_air"
	UseCasePublicWarnings    UseCase = "issue_public_warnings"
	UseCaseTransportation    UseCase = "adjust_transportation"
	UseCasePublicEvents      UseCase = "plan_public_events"
	UseCaseAdviseTourists    UseCase = "advise_tourists"
)

var UseCases = []UseCase{UseCaseOutdoorActivities, UseCaseIndoorAir, UseCasePublicWarnings, UseCaseTransportation, UseCasePublicEvents, UseCaseAdviseTourists}

type Settings struct {
	Location        string
	Sensitivity     Sensitivity
	Persona         Persona
	PrimaryUseCases []UseCase
}

func Default() Settings {
	return Settings{
		Location:    "Los Angeles, CA",
		Sensitivity: SensitivityAsthma,
		Persona:     Resident{},
	}
}

func (s Settings) Validate() error {
	if !slices.Contains(Sensitivities, s.Sensitivity) {
		return fmt.Errorf("unknown sensitivity %q", s.Sensitivity)
	}
	if s.Persona == nil {
		return errors.New("persona is required")
	}
	for _, u := range s.PrimaryUseCases {
		if !slices.Contains(UseCases, u) {
			return fmt.Errorf("unknown use case %q", u)
		}
	}
	return s.Persona.validate()
}

type settingsJSON struct {
	Location        string          `json:"location"`
	Sensitivity     Sensitivity     `json:"sensitivity"`
	Persona         json.RawMessage `json:"persona"`
	PrimaryUseCases []UseCase       `json:"primaryUseCases"`
}

func (s Settings) MarshalJSON() ([]byte, error) {
	persona, err := MarshalPersona(s.Persona)
	if err != nil {
		return nil, err
	}
	useCases := s.PrimaryUseCases
	if useCases == nil {
		useCases = []UseCase{}
	}
	return json.Marshal(settingsJSON{
		Location:        s.Location,
		Sensitivity:     s.Sensitivity,
		Persona:         persona,
		PrimaryUseCases: useCases,
	})
}

// UnmarshalJSON rejects unknown keys at every level, persona included.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw settingsJSON
	if err := strictUnmarshal(data, &raw); err != nil {
		return err
	}
	persona, err := UnmarshalPersona(raw.Persona)
	if err != nil {
		return err
	}
	*s = Settings{
		Location:        raw.Location,
		Sensitivity:     raw.Sensitivity,
		Persona:         persona,
		PrimaryUseCases: raw.PrimaryUseCases,
	}
	return nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
