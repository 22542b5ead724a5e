package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// MasterFinding is a reusable finding write-up that is not tied to a project.
type MasterFinding struct {
	ID                uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title             string     `json:"title" gorm:"not null"`
	TechnicalAnalysis *string    `json:"technical_analysis" gorm:"type:text"`
	Impact            *string    `json:"impact" gorm:"type:text"`
	Frameworks        StringList `json:"frameworks" gorm:"type:text"`
	Recommendations   *string    `json:"recommendations" gorm:"type:text"`
	References        *string    `json:"references" gorm:"type:text"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// StringList is an ordered list of strings stored as a single comma-separated column,
// e.g. framework ids like "NIST AC-2,MITRE T1078".
type StringList []string

// listSeparator separates the stored values.
const listSeparator = ","

// Value implements the driver.Valuer interface for database serialization.
func (s StringList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil // Return nil if the list is empty
	}
	for _, v := range s {
		if strings.Contains(v, listSeparator) {
			return nil, fmt.Errorf("StringList Value error: %q contains %q", v, listSeparator)
		}
	}
	return strings.Join(s, listSeparator), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (s *StringList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("StringList Scan error: expected string or []byte, got %T", value)
	}

	if raw == "" {
		*s = nil
		return nil
	}
	parts := strings.Split(raw, listSeparator)
	list := make(StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	*s = list
	return nil
}
