package models

import (
	"sort"
	"strings"
	"time"
)

// UserRollRecord is the persisted roll state of a single chat user
type UserRollRecord struct {
	UserID       string            `db:"user_id" json:"user_id"`
	PreviousRoll *string           `db:"previous_roll" json:"previous_roll,omitempty"`
	SavedRolls   map[string]string `db:"saved_rolls" json:"saved_rolls"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// NewUserRollRecord returns the default record for a user seen for the first time
func NewUserRollRecord(userID string) *UserRollRecord {
	now := time.Now().UTC()
	return &UserRollRecord{
		UserID:     userID,
		SavedRolls: make(map[string]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy so callers never share the saved rolls map
func (r *UserRollRecord) Clone() *UserRollRecord {
	clone := *r
	if r.PreviousRoll != nil {
		previous := *r.PreviousRoll
		clone.PreviousRoll = &previous
	}
	clone.SavedRolls = make(map[string]string, len(r.SavedRolls))
	for label, rollstring := range r.SavedRolls {
		clone.SavedRolls[label] = rollstring
	}
	return &clone
}

// SetPreviousRoll overwrites the previous roll slot
func (r *UserRollRecord) SetPreviousRoll(rollstring string) {
	r.PreviousRoll = &rollstring
	r.UpdatedAt = time.Now().UTC()
}

// SavedRoll looks up a saved roll by label, ignoring case
func (r *UserRollRecord) SavedRoll(label string) (string, bool) {
	if rollstring, ok := r.SavedRolls[label]; ok {
		return rollstring, true
	}
	for existing, rollstring := range r.SavedRolls {
		if strings.EqualFold(existing, label) {
			return rollstring, true
		}
	}
	return "", false
}

// SetSavedRoll stores rollstring under label. An existing label that differs
// only in case is replaced so that lookups stay unambiguous.
func (r *UserRollRecord) SetSavedRoll(label, rollstring string) {
	if r.SavedRolls == nil {
		r.SavedRolls = make(map[string]string)
	}
	for existing := range r.SavedRolls {
		if existing != label && strings.EqualFold(existing, label) {
			delete(r.SavedRolls, existing)
		}
	}
	r.SavedRolls[label] = rollstring
	r.UpdatedAt = time.Now().UTC()
}

// MatchSavedRoll finds the saved roll whose label occurs in input, ignoring
// case. The longest matching label wins; equal lengths are ordered by the
// lower-cased label.
func (r *UserRollRecord) MatchSavedRoll(input string) (label, rollstring string, ok bool) {
	lowered := strings.ToLower(input)
	for candidate, value := range r.SavedRolls {
		key := strings.ToLower(candidate)
		if key == "" || !strings.Contains(lowered, key) {
			continue
		}
		if ok && !preferLabel(key, strings.ToLower(label)) {
			continue
		}
		label, rollstring, ok = candidate, value, true
	}
	return label, rollstring, ok
}

func preferLabel(candidate, current string) bool {
	if len(candidate) != len(current) {
		return len(candidate) > len(current)
	}
	return candidate < current
}

// SavedRollLabels returns the saved labels sorted case-insensitively
func (r *UserRollRecord) SavedRollLabels() []string {
	labels := make([]string, 0, len(r.SavedRolls))
	for label := range r.SavedRolls {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})
	return labels
}
