package models

// All lists every persisted model in migration order
func All() []any {
	return []any{
		&Category{},
		&Lead{},
		&Video{},
		&UserActivityLog{},
		&UserRole{},
		&ChatLocation{},
		&SaleStatus{},
		&LeadSource{},
		&Designer{},
		&SalesRecord{},
		&MFAFactor{},
		&MFAChallenge{},
	}
}
