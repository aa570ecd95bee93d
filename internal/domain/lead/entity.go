package lead

import (
	"encoding/json"
	"fmt"
	"time"
)

// FunnelStage is the sales pipeline position of a lead.
type FunnelStage string

const (
	StageProspect     FunnelStage = "Prospect"
	StageContacted    FunnelStage = "Contacted"
	StageQualified    FunnelStage = "Qualified"
	StageDemoBooked   FunnelStage = "Demo/Presentation Agendada"
	StageProposalSent FunnelStage = "Propuesta Enviada"
	StageNegotiation  FunnelStage = "Negociación"
	StageWon          FunnelStage = "Ganado/Cerrado"
	StageLost         FunnelStage = "Perdido"
	StageNurturing    FunnelStage = "En Nurturing"
)

// Stages lists every funnel stage in pipeline order.
var Stages = []FunnelStage{
	StageProspect,
	StageContacted,
	StageQualified,
	StageDemoBooked,
	StageProposalSent,
	StageNegotiation,
	StageWon,
	StageLost,
	StageNurturing,
}

// Index returns the position of s in Stages, or -1.
func (s FunnelStage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

func (s FunnelStage) Valid() bool { return s.Index() >= 0 }

// Open reports whether a lead in this stage still counts toward the pipeline.
func (s FunnelStage) Open() bool { return s != StageWon && s != StageLost }

func (s *FunnelStage) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, s, "funnel_stage")
}

// ProductionLevel buckets a realtor by yearly production volume.
type ProductionLevel string

const (
	ProductionLow    ProductionLevel = "$50k-$100k"
	ProductionMedium ProductionLevel = "$100k-$250k"
	ProductionHigh   ProductionLevel = "$250k+"
)

var ProductionLevels = []ProductionLevel{ProductionLow, ProductionMedium, ProductionHigh}

func (p ProductionLevel) Valid() bool { return contains(ProductionLevels, p) }

func (p *ProductionLevel) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, p, "production_level")
}

type TeamSize string

const (
	TeamIndividual TeamSize = "Individual"
	TeamSmall      TeamSize = "Equipo Pequeño (2-5)"
	TeamLarge      TeamSize = "Equipo Grande (6+)"
)

var TeamSizes = []TeamSize{TeamIndividual, TeamSmall, TeamLarge}

func (t TeamSize) Valid() bool { return contains(TeamSizes, t) }

func (t *TeamSize) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, t, "team_size")
}

type TechAdoption string

const (
	TechLow    TechAdoption = "Bajo"
	TechMedium TechAdoption = "Medio"
	TechHigh   TechAdoption = "Alto"
)

var TechAdoptionLevels = []TechAdoption{TechLow, TechMedium, TechHigh}

func (t TechAdoption) Valid() bool { return contains(TechAdoptionLevels, t) }

func (t *TechAdoption) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, t, "tech_adoption")
}

type AIInterest string

const (
	AIInterestLow    AIInterest = "Bajo"
	AIInterestMedium AIInterest = "Medio"
	AIInterestHigh   AIInterest = "Alto"
)

var AIInterestLevels = []AIInterest{AIInterestLow, AIInterestMedium, AIInterestHigh}

func (a AIInterest) Valid() bool { return contains(AIInterestLevels, a) }

func (a *AIInterest) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, a, "ai_interest")
}

// Lead is a realtor prospect owned by exactly one user.
type Lead struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	FullName            string  `json:"full_name"`
	Agency              *string `json:"agency"`
	Role                *string `json:"role"`
	Phone               *string `json:"phone"`
	Email               *string `json:"email"`
	Location            *string `json:"location"`
	InstagramProfileURL *string `json:"instagram_profile_url"`
	Specialization      *string `json:"specialization"`

	ProductionLevel ProductionLevel `json:"production_level"`
	TeamSize        TeamSize        `json:"team_size"`
	TechAdoption    TechAdoption    `json:"tech_adoption"`
	AIInterest      AIInterest      `json:"ai_interest"`

	ExperienceYears        *int     `json:"experience_years"`
	AnnualTransactions     *int     `json:"annual_transactions"`
	PotentialContractValue *float64 `json:"potential_contract_value"`

	PainPoints       *string  `json:"pain_points"`
	PainPointTags    []string `json:"pain_point_tags"`
	CurrentTools     *string  `json:"current_tools"`
	Notes            *string  `json:"notes"`
	ProposedSolution *string  `json:"proposed_solution"`
	NextAction       *string  `json:"next_action"`

	FunnelStage      FunnelStage `json:"funnel_stage"`
	LeadSource       *string     `json:"lead_source"`
	FirstContactDate *time.Time  `json:"first_contact_date"`
	LastActivityDate *time.Time  `json:"last_activity_date"`
}

// Defaults is the blank lead every create starts from.
func Defaults() Lead {
	return Lead{
		ProductionLevel: ProductionLow,
		TeamSize:        TeamIndividual,
		TechAdoption:    TechLow,
		AIInterest:      AIInterestLow,
		FunnelStage:     StageProspect,
	}
}

// ContractValue treats an unknown value as zero.
func (l Lead) ContractValue() float64 {
	if l.PotentialContractValue == nil {
		return 0
	}
	return *l.PotentialContractValue
}

// Clone returns a copy that shares no pointers with l.
func (l Lead) Clone() Lead {
	c := l
	c.Agency = clonePtr(l.Agency)
	c.Role = clonePtr(l.Role)
	c.Phone = clonePtr(l.Phone)
	c.Email = clonePtr(l.Email)
	c.Location = clonePtr(l.Location)
	c.InstagramProfileURL = clonePtr(l.InstagramProfileURL)
	c.Specialization = clonePtr(l.Specialization)
	c.ExperienceYears = clonePtr(l.ExperienceYears)
	c.AnnualTransactions = clonePtr(l.AnnualTransactions)
	c.PotentialContractValue = clonePtr(l.PotentialContractValue)
	c.PainPoints = clonePtr(l.PainPoints)
	c.CurrentTools = clonePtr(l.CurrentTools)
	c.Notes = clonePtr(l.Notes)
	c.ProposedSolution = clonePtr(l.ProposedSolution)
	c.NextAction = clonePtr(l.NextAction)
	c.LeadSource = clonePtr(l.LeadSource)
	c.FirstContactDate = clonePtr(l.FirstContactDate)
	c.LastActivityDate = clonePtr(l.LastActivityDate)
	if l.PainPointTags != nil {
		c.PainPointTags = append([]string{}, l.PainPointTags...)
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

type enum interface {
	~string
	Valid() bool
}

func unmarshalEnum[T enum](b []byte, dst *T, field string) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	v := T(raw)
	if !v.Valid() {
		return &EnumError{Field: field, Value: raw}
	}
	*dst = v
	return nil
}

func before(a, b *time.Time) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	}
	return a.Before(*b)
}
