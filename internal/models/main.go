package models

// ModelRegistry lists the models handled by gorm AutoMigrate in dev and tests.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
	&Article{},
}
