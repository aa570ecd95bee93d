package lead

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"realtorcrm/internal/pkg/dberr"
	"realtorcrm/internal/pkg/tagcodec"
)

type leadModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:64;not null;index;uniqueIndex:idx_realtors_owner_email,priority:1"`
	CreatedAt time.Time `gorm:"not null"`

	FullName            string `gorm:"not null"`
	Agency              *string
	Role                *string
	Phone               *string
	Email               *string `gorm:"uniqueIndex:idx_realtors_owner_email,priority:2"`
	Location            *string
	InstagramProfileURL *string
	Specialization      *string

	ProductionLevel string `gorm:"not null"`
	TeamSize        string `gorm:"not null"`
	TechAdoption    string `gorm:"not null"`
	AIInterest      string `gorm:"column:ai_interest;not null"`

	ExperienceYears        *int
	AnnualTransactions     *int
	PotentialContractValue *float64

	PainPoints       *string
	PainPointTags    *string `gorm:"type:text"`
	CurrentTools     *string
	Notes            *string
	ProposedSolution *string
	NextAction       *string

	FunnelStage      string `gorm:"not null;index"`
	LeadSource       *string
	FirstContactDate *time.Time
	LastActivityDate *time.Time
}

func (leadModel) TableName() string { return "realtors" }

// Migrate creates or updates the realtors table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&leadModel{})
}

// Repository stores leads. Every query is scoped to the owning user, so a
// foreign id behaves exactly like a missing one.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all leads of ownerID ordered by full name.
func (r *Repository) List(ctx context.Context, ownerID string) ([]Lead, error) {
	var rows []leadModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("full_name ASC").
		Find(&rows).Error; err != nil {
		return nil, dberr.FromError(err)
	}

	out := make([]Lead, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainLead(&rows[i]))
	}
	return out, nil
}

// Get returns one lead of ownerID.
func (r *Repository) Get(ctx context.Context, ownerID, id string) (Lead, error) {
	var m leadModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return Lead{}, dberr.FromError(err)
	}
	return toDomainLead(&m), nil
}

// Insert stores l for ownerID and returns the canonical row. The id,
// owner and creation time are always assigned here.
func (r *Repository) Insert(ctx context.Context, ownerID string, l Lead) (Lead, error) {
	l.ID = uuid.NewString()
	l.UserID = ownerID
	l.CreatedAt = time.Now().UTC()

	m := toLeadModel(l)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return Lead{}, dberr.FromError(err)
	}
	return toDomainLead(m), nil
}

// Update applies patch and returns the row as stored plus the number of rows
// matched. Zero rows means the lead is missing or not owned by ownerID.
func (r *Repository) Update(ctx context.Context, ownerID, id string, patch Patch) (Lead, int64, error) {
	if len(patch) == 0 {
		l, err := r.Get(ctx, ownerID, id)
		if errors.Is(err, ErrLeadNotFound) {
			return Lead{}, 0, nil
		}
		if err != nil {
			return Lead{}, 0, err
		}
		return l, 1, nil
	}

	res := r.db.WithContext(ctx).
		Model(&leadModel{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(toColumns(patch))
	if res.Error != nil {
		return Lead{}, 0, dberr.FromError(res.Error)
	}
	if res.RowsAffected == 0 {
		return Lead{}, 0, nil
	}

	l, err := r.Get(ctx, ownerID, id)
	if err != nil {
		return Lead{}, res.RowsAffected, err
	}
	return l, res.RowsAffected, nil
}

// Delete removes the lead and reports whether anything was actually deleted.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) (DeleteOutcome, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&leadModel{})
	if res.Error != nil {
		return NotFound, dberr.FromError(res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound, nil
	}
	return Confirmed(res.RowsAffected), nil
}

func toColumns(p Patch) map[string]any {
	cols := make(map[string]any, len(p))
	for k, v := range p {
		switch tv := v.(type) {
		case []string:
			cols[k] = tagcodec.Encode(tv)
		case FunnelStage:
			cols[k] = string(tv)
		case ProductionLevel:
			cols[k] = string(tv)
		case TeamSize:
			cols[k] = string(tv)
		case TechAdoption:
			cols[k] = string(tv)
		case AIInterest:
			cols[k] = string(tv)
		default:
			cols[k] = v
		}
	}
	return cols
}

func toLeadModel(l Lead) *leadModel {
	return &leadModel{
		ID:                     l.ID,
		UserID:                 l.UserID,
		CreatedAt:              l.CreatedAt,
		FullName:               l.FullName,
		Agency:                 l.Agency,
		Role:                   l.Role,
		Phone:                  l.Phone,
		Email:                  l.Email,
		Location:               l.Location,
		InstagramProfileURL:    l.InstagramProfileURL,
		Specialization:         l.Specialization,
		ProductionLevel:        string(l.ProductionLevel),
		TeamSize:               string(l.TeamSize),
		TechAdoption:           string(l.TechAdoption),
		AIInterest:             string(l.AIInterest),
		ExperienceYears:        l.ExperienceYears,
		AnnualTransactions:     l.AnnualTransactions,
		PotentialContractValue: l.PotentialContractValue,
		PainPoints:             l.PainPoints,
		PainPointTags:          tagcodec.Encode(l.PainPointTags),
		CurrentTools:           l.CurrentTools,
		Notes:                  l.Notes,
		ProposedSolution:       l.ProposedSolution,
		NextAction:             l.NextAction,
		FunnelStage:            string(l.FunnelStage),
		LeadSource:             l.LeadSource,
		FirstContactDate:       l.FirstContactDate,
		LastActivityDate:       l.LastActivityDate,
	}
}

func toDomainLead(m *leadModel) Lead {
	return Lead{
		ID:                     m.ID,
		UserID:                 m.UserID,
		CreatedAt:              m.CreatedAt,
		FullName:               m.FullName,
		Agency:                 m.Agency,
		Role:                   m.Role,
		Phone:                  m.Phone,
		Email:                  m.Email,
		Location:               m.Location,
		InstagramProfileURL:    m.InstagramProfileURL,
		Specialization:         m.Specialization,
		ProductionLevel:        ProductionLevel(m.ProductionLevel),
		TeamSize:               TeamSize(m.TeamSize),
		TechAdoption:           TechAdoption(m.TechAdoption),
		AIInterest:             AIInterest(m.AIInterest),
		ExperienceYears:        m.ExperienceYears,
		AnnualTransactions:     m.AnnualTransactions,
		PotentialContractValue: m.PotentialContractValue,
		PainPoints:             m.PainPoints,
		PainPointTags:          tagcodec.Decode(m.PainPointTags),
		CurrentTools:           m.CurrentTools,
		Notes:                  m.Notes,
		ProposedSolution:       m.ProposedSolution,
		NextAction:             m.NextAction,
		FunnelStage:            FunnelStage(m.FunnelStage),
		LeadSource:             m.LeadSource,
		FirstContactDate:       m.FirstContactDate,
		LastActivityDate:       m.LastActivityDate,
	}
}
