package lead

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Nullable distinguishes an absent field (Set=false) from an explicit null
// (Set=true, Valid=false) in a partial update.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func Value[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Valid: true, Value: v} }

func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(b, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns nil for null, a fresh pointer otherwise.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Tags accepts either a JSON array or one comma separated string.
type Tags []string

func (t *Tags) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("pain_point_tags: expected array or string")
	}
	*t = strings.Split(s, ",")
	return nil
}

// LeadInput is the body of a create or update. Only fields present in the
// JSON are applied.
type LeadInput struct {
	ID        Nullable[string] `json:"id"`
	UserID    Nullable[string] `json:"user_id"`
	CreatedAt Nullable[string] `json:"created_at"`

	FullName            Nullable[string] `json:"full_name"`
	Agency              Nullable[string] `json:"agency"`
	Role                Nullable[string] `json:"role"`
	Phone               Nullable[string] `json:"phone"`
	Email               Nullable[string] `json:"email"`
	Location            Nullable[string] `json:"location"`
	InstagramProfileURL Nullable[string] `json:"instagram_profile_url"`
	Specialization      Nullable[string] `json:"specialization"`

	ProductionLevel Nullable[ProductionLevel] `json:"production_level"`
	TeamSize        Nullable[TeamSize]        `json:"team_size"`
	TechAdoption    Nullable[TechAdoption]    `json:"tech_adoption"`
	AIInterest      Nullable[AIInterest]      `json:"ai_interest"`

	ExperienceYears        Nullable[int]     `json:"experience_years"`
	AnnualTransactions     Nullable[int]     `json:"annual_transactions"`
	PotentialContractValue Nullable[float64] `json:"potential_contract_value"`

	PainPoints       Nullable[string] `json:"pain_points"`
	PainPointTags    Nullable[Tags]   `json:"pain_point_tags"`
	CurrentTools     Nullable[string] `json:"current_tools"`
	Notes            Nullable[string] `json:"notes"`
	ProposedSolution Nullable[string] `json:"proposed_solution"`
	NextAction       Nullable[string] `json:"next_action"`

	FunnelStage      Nullable[FunnelStage] `json:"funnel_stage"`
	LeadSource       Nullable[string]      `json:"lead_source"`
	FirstContactDate Nullable[string]      `json:"first_contact_date"`
	LastActivityDate Nullable[string]      `json:"last_activity_date"`
}

// Normalize cleans tags and turns empty date strings into null.
func (in *LeadInput) Normalize() {
	if in.PainPointTags.Valid {
		in.PainPointTags.Value = NormalizeTags(in.PainPointTags.Value)
	}
	for _, d := range []*Nullable[string]{&in.FirstContactDate, &in.LastActivityDate} {
		if d.Valid && strings.TrimSpace(d.Value) == "" {
			*d = Null[string]()
		}
	}
}

// StripProtected drops the columns a client may never write.
func (in *LeadInput) StripProtected() {
	in.ID = Nullable[string]{}
	in.UserID = Nullable[string]{}
	in.CreatedAt = Nullable[string]{}
}

// Validate checks the fields that are present. Enum values are already
// checked while decoding.
func (in *LeadInput) Validate() error {
	if in.FullName.Set && strings.TrimSpace(in.FullName.Value) == "" {
		return ErrFullNameRequired
	}
	for _, f := range []struct {
		name string
		null bool
	}{
		{"production_level", in.ProductionLevel.Set && !in.ProductionLevel.Valid},
		{"team_size", in.TeamSize.Set && !in.TeamSize.Valid},
		{"tech_adoption", in.TechAdoption.Set && !in.TechAdoption.Valid},
		{"ai_interest", in.AIInterest.Set && !in.AIInterest.Valid},
		{"funnel_stage", in.FunnelStage.Set && !in.FunnelStage.Valid},
	} {
		if f.null {
			return &EnumError{Field: f.name, Value: "null"}
		}
	}
	if _, err := in.dates(); err != nil {
		return err
	}
	return nil
}

type inputDates struct {
	first, last Nullable[time.Time]
}

func (in *LeadInput) dates() (inputDates, error) {
	var out inputDates
	for _, d := range []struct {
		src  Nullable[string]
		dst  *Nullable[time.Time]
		name string
	}{
		{in.FirstContactDate, &out.first, "first_contact_date"},
		{in.LastActivityDate, &out.last, "last_activity_date"},
	} {
		if !d.src.Set {
			continue
		}
		if !d.src.Valid {
			*d.dst = Null[time.Time]()
			continue
		}
		t, err := ParseDate(d.src.Value)
		if err != nil {
			return out, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = Value(t)
	}
	return out, nil
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
}

// ApplyTo overlays the present fields on base. Protected columns are ignored.
// Call Validate first; unparseable dates are skipped.
func (in *LeadInput) ApplyTo(base Lead) Lead {
	l := base.Clone()
	setString(&l.FullName, in.FullName)
	setPtr(&l.Agency, in.Agency)
	setPtr(&l.Role, in.Role)
	setPtr(&l.Phone, in.Phone)
	setPtr(&l.Email, in.Email)
	setPtr(&l.Location, in.Location)
	setPtr(&l.InstagramProfileURL, in.InstagramProfileURL)
	setPtr(&l.Specialization, in.Specialization)
	setEnum(&l.ProductionLevel, in.ProductionLevel)
	setEnum(&l.TeamSize, in.TeamSize)
	setEnum(&l.TechAdoption, in.TechAdoption)
	setEnum(&l.AIInterest, in.AIInterest)
	setPtr(&l.ExperienceYears, in.ExperienceYears)
	setPtr(&l.AnnualTransactions, in.AnnualTransactions)
	setPtr(&l.PotentialContractValue, in.PotentialContractValue)
	setPtr(&l.PainPoints, in.PainPoints)
	if in.PainPointTags.Set {
		l.PainPointTags = tagsValue(in.PainPointTags)
	}
	setPtr(&l.CurrentTools, in.CurrentTools)
	setPtr(&l.Notes, in.Notes)
	setPtr(&l.ProposedSolution, in.ProposedSolution)
	setPtr(&l.NextAction, in.NextAction)
	setEnum(&l.FunnelStage, in.FunnelStage)
	setPtr(&l.LeadSource, in.LeadSource)
	if d, err := in.dates(); err == nil {
		setPtr(&l.FirstContactDate, d.first)
		setPtr(&l.LastActivityDate, d.last)
	}
	return l
}

// Patch lists the columns an update writes, keyed by column name.
type Patch map[string]any

// Stage returns the funnel stage the patch sets, if any.
func (p Patch) Stage() (FunnelStage, bool) {
	s, ok := p["funnel_stage"].(FunnelStage)
	return s, ok
}

// StagePatch moves a lead and stamps its last activity.
func StagePatch(stage FunnelStage, at time.Time) Patch {
	return Patch{"funnel_stage": stage, "last_activity_date": at}
}

// Patch converts the present fields into a column patch. Protected columns
// are never included. Call Validate first.
func (in *LeadInput) Patch() Patch {
	p := Patch{}
	putString(p, "full_name", in.FullName)
	putPtr(p, "agency", in.Agency)
	putPtr(p, "role", in.Role)
	putPtr(p, "phone", in.Phone)
	putPtr(p, "email", in.Email)
	putPtr(p, "location", in.Location)
	putPtr(p, "instagram_profile_url", in.InstagramProfileURL)
	putPtr(p, "specialization", in.Specialization)
	putEnum(p, "production_level", in.ProductionLevel)
	putEnum(p, "team_size", in.TeamSize)
	putEnum(p, "tech_adoption", in.TechAdoption)
	putEnum(p, "ai_interest", in.AIInterest)
	putPtr(p, "experience_years", in.ExperienceYears)
	putPtr(p, "annual_transactions", in.AnnualTransactions)
	putPtr(p, "potential_contract_value", in.PotentialContractValue)
	putPtr(p, "pain_points", in.PainPoints)
	if in.PainPointTags.Set {
		p["pain_point_tags"] = tagsValue(in.PainPointTags)
	}
	putPtr(p, "current_tools", in.CurrentTools)
	putPtr(p, "notes", in.Notes)
	putPtr(p, "proposed_solution", in.ProposedSolution)
	putPtr(p, "next_action", in.NextAction)
	putEnum(p, "funnel_stage", in.FunnelStage)
	putPtr(p, "lead_source", in.LeadSource)
	if d, err := in.dates(); err == nil {
		putPtr(p, "first_contact_date", d.first)
		putPtr(p, "last_activity_date", d.last)
	}
	return p
}

func tagsValue(n Nullable[Tags]) []string {
	if !n.Valid {
		return nil
	}
	return NormalizeTags(n.Value)
}

func setString(dst *string, n Nullable[string]) {
	if n.Set {
		*dst = strings.TrimSpace(n.Value)
	}
}

func setPtr[T any](dst **T, n Nullable[T]) {
	if n.Set {
		*dst = n.Ptr()
	}
}

func setEnum[T any](dst *T, n Nullable[T]) {
	if n.Set && n.Valid {
		*dst = n.Value
	}
}

func putString(p Patch, col string, n Nullable[string]) {
	if n.Set {
		p[col] = strings.TrimSpace(n.Value)
	}
}

func putPtr[T any](p Patch, col string, n Nullable[T]) {
	if !n.Set {
		return
	}
	if !n.Valid {
		p[col] = nil
		return
	}
	p[col] = n.Value
}

func putEnum[T any](p Patch, col string, n Nullable[T]) {
	if n.Set && n.Valid {
		p[col] = n.Value
	}
}
