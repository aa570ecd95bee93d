package activity

import (
	"fmt"
	"time"

	"realtorcrm/internal/domain/lead"
)

// Type classifies an activity entry.
type Type string

const (
	TypeStageChanged Type = "CAMBIO DE ETAPA"
	TypeLeadCreated  Type = "REALTOR CREADO"
)

// Activity is one append-only audit entry attached to a lead.
type Activity struct {
	ID           string    `json:"id"`
	RealtorID    string    `json:"realtor_id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	ActivityType Type      `json:"activity_type"`
	Details      string    `json:"details"`
}

func LeadCreated(l lead.Lead) Activity {
	return Activity{
		RealtorID:    l.ID,
		ActivityType: TypeLeadCreated,
		Details:      fmt.Sprintf(`El realtor "%s" fue añadido al CRM.`, l.FullName),
	}
}

func StageChanged(leadID string, from, to lead.FunnelStage) Activity {
	return Activity{
		RealtorID:    leadID,
		ActivityType: TypeStageChanged,
		Details:      fmt.Sprintf("La etapa cambió de '%s' a '%s'.", from, to),
	}
}
