// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - org.go: sectors, zones and groups
//   - actor.go: actors
//   - household.go: households and their member rows
//   - contribution.go: reports, report splits and the contribution ledger
//   - fortuna.go: Fortuna purchases and issues
//   - notification.go: in-app notifications
//
// Every model has a TableName, a ToDomain mapper and a <Model>FromDomain constructor.
package models
