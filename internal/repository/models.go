package repository

// AllModels lists every GORM model for schema migration in development.
func AllModels() []interface{} {
	return []interface{}{
		&AccountModel{},
		&UserProfileModel{},
		&OwnerProfileModel{},
		&LotModel{},
		&SlotModel{},
		&BookingModel{},
		&PaymentModel{},
		&WashTypeModel{},
		&WashAddonModel{},
		&WashBookingModel{},
		&EmployeeModel{},
		&ReviewModel{},
	}
}
