package models

// AllModels lists every model for AutoMigrate in tests and development
func AllModels() []any {
	return []any{
		&SectorModel{},
		&ZoneModel{},
		&GroupModel{},
		&ActorModel{},
		&HouseholdModel{},
		&HouseholdMemberModel{},
		&ContributionReportModel{},
		&ContributionReportSplitModel{},
		&ContributionModel{},
		&FortunaPurchaseModel{},
		&FortunaIssueModel{},
		&NotificationModel{},
	}
}
