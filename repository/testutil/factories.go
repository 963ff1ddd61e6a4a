package testutil

import (
	"time"

	"dicey/models"
)

// CreateTestRollRecord creates a roll record with a previous roll and two saved rolls
func CreateTestRollRecord(userID string) *models.UserRollRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)
	previous := "2d6+5"
	return &models.UserRollRecord{
		UserID:       userID,
		PreviousRoll: &previous,
		SavedRolls: map[string]string{
			"attack":    "1d20+3",
			"Fire Bolt": "2d10",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateEmptyRollRecord creates the default record of a first-time user
func CreateEmptyRollRecord(userID string) *models.UserRollRecord {
	return models.NewUserRollRecord(userID)
}
