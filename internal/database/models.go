package database

import (
	"fmt"
	"strings"
	"time"
)

// RadioUser is one RID-to-callsign registration, generalized from the
// teacher's DMR-only user record to carry a protocol tag so the same
// table backs DMR, P25 and NXDN RID lookups.
type RadioUser struct {
	RadioID   uint32    `gorm:"primarykey;not null" json:"radio_id"`
	Protocol  string    `gorm:"primarykey;size:8" json:"protocol"` // "DMR", "P25", "NXDN"
	Callsign  string    `gorm:"index;size:20" json:"callsign"`
	FirstName string    `gorm:"size:50" json:"first_name"`
	LastName  string    `gorm:"size:50" json:"last_name"`
	City      string    `gorm:"size:50" json:"city"`
	State     string    `gorm:"size:50" json:"state"`
	Country   string    `gorm:"size:50" json:"country"`
	Allowed   bool      `gorm:"default:true" json:"allowed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (RadioUser) TableName() string { return "radio_users" }

// FullName returns the formatted full name.
func (u RadioUser) FullName() string {
	parts := []string{}
	if u.FirstName != "" {
		parts = append(parts, u.FirstName)
	}
	if u.LastName != "" {
		parts = append(parts, u.LastName)
	}
	return strings.Join(parts, " ")
}

// Location returns the formatted location string.
func (u RadioUser) Location() string {
	parts := []string{}
	if u.City != "" {
		parts = append(parts, u.City)
	}
	if u.State != "" {
		parts = append(parts, u.State)
	}
	if u.Country != "" {
		parts = append(parts, u.Country)
	}
	return strings.Join(parts, ", ")
}

// String returns a formatted string representation.
func (u RadioUser) String() string {
	fullName := u.FullName()
	location := u.Location()

	result := fmt.Sprintf("%s (%d)", u.Callsign, u.RadioID)
	if fullName != "" {
		result += fmt.Sprintf(" - %s", fullName)
	}
	if location != "" {
		result += fmt.Sprintf(" [%s]", location)
	}
	return result
}

// IsValid checks if the user record has required fields.
func (u RadioUser) IsValid() bool {
	return u.RadioID > 0 && u.Callsign != "" && u.Protocol != ""
}

// SanitizeCallsign cleans up the callsign format.
func (u *RadioUser) SanitizeCallsign() {
	u.Callsign = strings.ToUpper(strings.TrimSpace(u.Callsign))
}

// SanitizeFields cleans up all user fields.
func (u *RadioUser) SanitizeFields() {
	u.SanitizeCallsign()
	u.Protocol = strings.ToUpper(strings.TrimSpace(u.Protocol))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.City = strings.TrimSpace(u.City)
	u.State = strings.TrimSpace(u.State)
	u.Country = strings.TrimSpace(u.Country)
}

// TGRule is one talkgroup ACL rule: whether dstID is permitted at all,
// and whether a unit must be affiliated before it may originate traffic
// to it. Supplements the spec's RID-only ACL with the TG rule table
// §4.5's precondition chain requires.
type TGRule struct {
	DstID              uint32 `gorm:"primarykey;not null" json:"dst_id"`
	Protocol           string `gorm:"primarykey;size:8" json:"protocol"`
	Name               string `gorm:"size:50" json:"name"`
	Allowed            bool   `gorm:"default:true" json:"allowed"`
	RequireAffiliation bool   `gorm:"default:false" json:"require_affiliation"`
}

// TableName specifies the table name for GORM.
func (TGRule) TableName() string { return "tg_rules" }
