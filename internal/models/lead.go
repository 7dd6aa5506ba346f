package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead represents one landing-page submission in MongoDB.
type Lead struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                  string             `bson:"name" json:"name"`
	Email                 string             `bson:"email" json:"email"`
	Broker                *string            `bson:"broker,omitempty" json:"broker"`
	ExpectedMonthlyVolume *float64           `bson:"expected_monthly_volume,omitempty" json:"expected_monthly_volume"`
	Message               *string            `bson:"message,omitempty" json:"message"`
	Consent               bool               `bson:"consent" json:"consent"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
}

// Volume returns the expected monthly volume, treating an unknown volume as zero.
func (l *Lead) Volume() float64 {
	if l.ExpectedMonthlyVolume == nil {
		return 0
	}
	return *l.ExpectedMonthlyVolume
}

// BrokerName returns the broker or an empty string when none was given.
func (l *Lead) BrokerName() string {
	if l.Broker == nil {
		return ""
	}
	return *l.Broker
}

// LeadInput is the create-lead request body.
type LeadInput struct {
	Name                  string   `json:"name" binding:"required,min=2,max=100"`
	Email                 string   `json:"email" binding:"required,email"`
	Broker                *string  `json:"broker" binding:"omitempty,max=120"`
	ExpectedMonthlyVolume *float64 `json:"expected_monthly_volume" binding:"omitempty,gte=0"`
	Message               *string  `json:"message" binding:"omitempty,max=1000"`
	Consent               *bool    `json:"consent"`
}

// UnmarshalJSON trims text fields while decoding so binding rules apply to the
// values that are stored.
func (in *LeadInput) UnmarshalJSON(data []byte) error {
	type plain LeadInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Broker = trimmedOrNil(p.Broker)
	p.Message = trimmedOrNil(p.Message)
	*in = LeadInput(p)
	return nil
}

// ToLead normalizes the input into a storable lead. Consent defaults to true and
// blank optional text fields are dropped.
func (in *LeadInput) ToLead() *Lead {
	lead := &Lead{
		Name:                  strings.TrimSpace(in.Name),
		Email:                 strings.TrimSpace(in.Email),
		Broker:                trimmedOrNil(in.Broker),
		ExpectedMonthlyVolume: in.ExpectedMonthlyVolume,
		Message:               trimmedOrNil(in.Message),
		Consent:               true,
	}
	if in.Consent != nil {
		lead.Consent = *in.Consent
	}
	return lead
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
