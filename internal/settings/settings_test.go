package settings

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.Location != "Los Angeles, CA" {
		t.Errorf("Location = %q", s.Location)
	}
	if s.Sensitivity != SensitivityAsthma {
		t.Errorf("Sensitivity = %q", s.Sensitivity)
	}
	if s.Persona.Kind() != KindResident {
		t.Errorf("Persona = %q", s.Persona.Kind())
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"default is valid", func(*Settings) {}, ""},
		{"unknown sensitivity", func(s *Settings) { s.Sensitivity = "pets" }, "unknown sensitivity"},
		{"missing persona", func(s *Settings) { s.Persona = nil }, "persona is required"},
		{"unknown use case", func(s *Settings) { s.PrimaryUseCases = []UseCase{"skydiving"} }, "unknown use case"},
		{"valid use cases", func(s *Settings) { s.PrimaryUseCases = []UseCase{UseCaseIndoorAir, UseCasePublicEvents} }, ""},
		{"unknown population group", func(s *Settings) {
			s.Persona = HealthGuardian{PopulationGroups: []PopulationGroup{"pets"}}
		}, "unknown population group"},
		{"unknown sector", func(s *Settings) { s.Persona = PublicOfficial{Sector: "defense"} }, "unknown public sector"},
		{"empty sector allowed", func(s *Settings) { s.Persona = PublicOfficial{} }, ""},
		{"unknown focus", func(s *Settings) { s.Persona = TourismPro{Focus: "cruises"} }, "unknown tourism focus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsJSON_PersonaVariants(t *testing.T) {
	personas := []Persona{
		Resident{},
		HealthGuardian{
			Professional:     Professional{JobTitle: "School Nurse", Organization: "Cairo Public Schools"},
			PopulationGroups: []PopulationGroup{GroupChildren, GroupRespiratoryPatients},
		},
		PublicOfficial{Professional: Professional{JobTitle: "Planner"}, Sector: SectorTransportation},
		TourismPro{Focus: FocusHotelOperations},
	}

	for _, p := range personas {
		t.Run(string(p.Kind()), func(t *testing.T) {
			in := Default()
			in.Persona = p
			in.PrimaryUseCases = []UseCase{UseCaseAdviseTourists}

			data, err := json.Marshal(in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(data), `"kind":"`+string(p.Kind())+`"`) {
				t.Errorf("missing kind discriminator in %s", data)
			}

			var out Settings
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(in, out) {
				t.Errorf("got %+v, want %+v", out, in)
			}
		})
	}
}

func TestResidentCarriesNoProfessionalFields(t *testing.T) {
	data, err := MarshalPersona(Resident{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "jobTitle") {
		t.Errorf("resident persona encoded professional fields: %s", data)
	}
}

func TestUnmarshalPersona_UnknownKind(t *testing.T) {
	if _, err := UnmarshalPersona([]byte(`{"kind":"astronaut"}`)); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSettingsJSON_RejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"top level", `{"location":"Paris","sensitivity":"none","persona":{"kind":"resident"},"extra":1}`},
		{"envelope", `{"location":"Paris","sensitivity":"none","persona":{"kind":"resident","extra":1}}`},
		{"persona data", `{"location":"Paris","sensitivity":"none","persona":{"kind":"tourism_pro","data":{"focus":"hotel_operations","stars":5}}}`},
		{"resident data", `{"location":"Paris","sensitivity":"none","persona":{"kind":"resident","data":{"jobTitle":"Nurse"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Settings
			if err := json.Unmarshal([]byte(tt.data), &s); err == nil {
				t.Errorf("accepted %s", tt.data)
			}
		})
	}
}

func TestToggleGroup(t *testing.T) {
	hg := HealthGuardian{}
	hg = hg.ToggleGroup(GroupElderly)
	hg = hg.ToggleGroup(GroupAthletes)
	if !reflect.DeepEqual(hg.PopulationGroups, []PopulationGroup{GroupElderly, GroupAthletes}) {
		t.Fatalf("groups = %v", hg.PopulationGroups)
	}
	before := hg
	hg = hg.ToggleGroup(GroupElderly)
	if !reflect.DeepEqual(hg.PopulationGroups, []PopulationGroup{GroupAthletes}) {
		t.Errorf("groups = %v", hg.PopulationGroups)
	}
	if len(before.PopulationGroups) != 2 {
		t.Error("toggle mutated the previous value")
	}
}

func TestSensitive(t *testing.T) {
	if SensitivityNone.Sensitive() {
		t.Error("none should not be sensitive")
	}
	if !SensitivityChild.Sensitive() {
		t.Error("child should be sensitive")
	}
}
