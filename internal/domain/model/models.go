package model

// AutoMigrate対象
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Category{},
		&Seller{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Address{},
		&Enquiry{},
		&Order{},
		&OrderItem{},
		&RefreshToken{},
		&AuditLog{},
	}
}
