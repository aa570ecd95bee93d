package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"realtorcrm/internal/pkg/dberr"
)

type activityModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	RealtorID    string    `gorm:"size:36;not null;index"`
	UserID       string    `gorm:"size:64;not null;index"`
	CreatedAt    time.Time `gorm:"not null"`
	ActivityType string    `gorm:"not null"`
	Details      string    `gorm:"type:text;not null"`
}

func (activityModel) TableName() string { return "realtor_activities" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&activityModel{})
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends a for ownerID. Id and timestamp are assigned here.
func (r *Repository) Insert(ctx context.Context, ownerID string, a Activity) (Activity, error) {
	m := &activityModel{
		ID:           uuid.NewString(),
		RealtorID:    a.RealtorID,
		UserID:       ownerID,
		CreatedAt:    time.Now().UTC(),
		ActivityType: string(a.ActivityType),
		Details:      a.Details,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return Activity{}, dberr.FromError(err)
	}
	return toDomainActivity(m), nil
}

// List returns the activities of one lead, newest first.
func (r *Repository) List(ctx context.Context, ownerID, leadID string) ([]Activity, error) {
	var rows []activityModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND realtor_id = ?", ownerID, leadID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, dberr.FromError(err)
	}

	out := make([]Activity, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainActivity(&rows[i]))
	}
	return out, nil
}

func toDomainActivity(m *activityModel) Activity {
	return Activity{
		ID:           m.ID,
		RealtorID:    m.RealtorID,
		UserID:       m.UserID,
		CreatedAt:    m.CreatedAt,
		ActivityType: Type(m.ActivityType),
		Details:      m.Details,
	}
}
