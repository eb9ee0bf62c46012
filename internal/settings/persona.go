package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

type PersonaKind string

const (
	KindHealthGuardian PersonaKind = "health_guardian"
	KindPublicOfficial PersonaKind = "public_official"
	KindTourismPro     PersonaKind = "tourism_pro"
	KindResident       PersonaKind = "resident"
)

// Persona is one of HealthGuardian, PublicOfficial, TourismPro or Resident.
// Each variant carries only the fields that apply to it.
type Persona interface {
	Kind() PersonaKind
	validate() error
}

type PopulationGroup string

const (
	GroupChildren            PopulationGroup = "children"
	GroupElderly             PopulationGroup = "elderly"
	GroupAthletes            PopulationGroup = "athletes"
	GroupRespiratoryPatients PopulationGroup = "respiratory_patients"
	GroupGeneralCommunity    PopulationGroup = "general_community"
)

var PopulationGroups = []PopulationGroup{GroupChildren, GroupElderly, GroupAthletes, GroupRespiratoryPatients, GroupGeneralCommunity}

type PublicSector string

const (
	SectorTransportation          PublicSector = "transportation"
	SectorParksRecreation         PublicSector = "parks_recreation"
	SectorMunicipalGovernance     PublicSector = "municipal_governance"
	SectorEnvironmentalProtection PublicSector = "environmental_protection"
)

var PublicSectors = []PublicSector{SectorTransportation, SectorParksRecreation, SectorMunicipalGovernance, SectorEnvironmentalProtection}

type TourismFocus string

const (
	FocusItineraryPlanning TourismFocus = "itinerary_planning"
	FocusVisitorAdvisories TourismFocus = "visitor_advisories"
	FocusHotelOperations   TourismFocus = "hotel_operations"
)

var TourismFoci = []TourismFocus{FocusItineraryPlanning, FocusVisitorAdvisories, FocusHotelOperations}

// Professional holds the fields shared by every non-resident persona.
type Professional struct {
	JobTitle     string `json:"jobTitle,omitempty"`
	Organization string `json:"organization,omitempty"`
}

type HealthGuardian struct {
	Professional
	PopulationGroups []PopulationGroup `json:"populationGroups,omitempty"`
}

func (HealthGuardian) Kind() PersonaKind { return KindHealthGuardian }

func (p HealthGuardian) validate() error {
	for _, g := range p.PopulationGroups {
		if !slices.Contains(PopulationGroups, g) {
			return fmt.Errorf("unknown population group %q", g)
		}
	}
	return nil
}

// ToggleGroup adds g if absent and removes it otherwise.
func (p HealthGuardian) ToggleGroup(g PopulationGroup) HealthGuardian {
	if i := slices.Index(p.PopulationGroups, g); i >= 0 {
		p.PopulationGroups = slices.Delete(slices.Clone(p.PopulationGroups), i, i+1)
		return p
	}
	p.PopulationGroups = append(slices.Clone(p.PopulationGroups), g)
	return p
}

type PublicOfficial struct {
	Professional
	Sector PublicSector `json:"sector,omitempty"`
}

func (PublicOfficial) Kind() PersonaKind { return KindPublicOfficial }

func (p PublicOfficial) validate() error {
	if p.Sector != "" && !slices.Contains(PublicSectors, p.Sector) {
		return fmt.Errorf("unknown public sector %q", p.Sector)
	}
	return nil
}

type TourismPro struct {
	Professional
	Focus TourismFocus `json:"focus,omitempty"`
}

func (TourismPro) Kind() PersonaKind { return KindTourismPro }

func (p TourismPro) validate() error {
	if p.Focus != "" && !slices.Contains(TourismFoci, p.Focus) {
		return fmt.Errorf("unknown tourism focus %q", p.Focus)
	}
	return nil
}

type Resident struct{}

func (Resident) Kind() PersonaKind { return KindResident }

func (Resident) validate() error { return nil }

// Describe returns a one-line description used in advice prompts and logs.
func Describe(p Persona) string {
	switch v := p.(type) {
	case HealthGuardian:
		return fmt.Sprintf("health and safety guardian (%s) protecting %v", orUnknown(v.JobTitle), v.PopulationGroups)
	case PublicOfficial:
		return fmt.Sprintf("public official (%s) in %s", orUnknown(v.JobTitle), orUnknown(string(v.Sector)))
	case TourismPro:
		return fmt.Sprintf("tourism professional (%s) focused on %s", orUnknown(v.JobTitle), orUnknown(string(v.Focus)))
	default:
		return "general resident"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}

type envelope struct {
	Kind PersonaKind     `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalPersona encodes p with a kind discriminator.
func MarshalPersona(p Persona) ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil persona")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Kind: p.Kind(), Data: data})
}

// UnmarshalPersona decodes the output of MarshalPersona.
func UnmarshalPersona(data []byte) (Persona, error) {
	var env envelope
	if err := strictUnmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode persona: %w", err)
	}
	switch env.Kind {
	case KindHealthGuardian:
		var v HealthGuardian
		if err := decodeData(env.Data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindPublicOfficial:
		var v PublicOfficial
		if err := decodeData(env.Data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindTourismPro:
		var v TourismPro
		if err := decodeData(env.Data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case KindResident:
		var v Resident
		if err := decodeData(env.Data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown persona kind %q", env.Kind)
}

func decodeData(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := strictUnmarshal(data, v); err != nil {
		return fmt.Errorf("decode persona data: %w", err)
	}
	return nil
}
