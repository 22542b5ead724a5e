package model

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Project{},
		&Tag{},
		&Finding{},
		&Attachment{},
		&AuditLog{},
		&MasterFinding{},
		&ReportTemplate{},
	}
}
