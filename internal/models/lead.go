// internal/models/lead.go
package models

import "github.com/google/uuid"

type PropertyLead struct {
	BaseModel
	PropertyID uuid.UUID  `json:"property_id" gorm:"type:uuid;not null;index"`
	AgentID    *uuid.UUID `json:"agent_id" gorm:"type:uuid;index"`

	CustomerName  string   `json:"customer_name" gorm:"size:100"`
	CustomerEmail string   `json:"customer_email" gorm:"size:120"`
	CustomerPhone string   `json:"customer_phone" gorm:"size:20"`
	LeadType      LeadType `json:"lead_type" gorm:"type:varchar(20)"`
	Message       string   `json:"message" gorm:"type:text"`

	Status   LeadStatus   `json:"status" gorm:"type:varchar(20);default:'new'"`
	Priority LeadPriority `json:"priority" gorm:"type:varchar(10);default:'medium'"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Agent    *Agent    `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
}
