package infrastructure

import (
	"fmt"

	"dicey/events"
	"dicey/models"
)

// EventStreamName is the JetStream stream holding every published event
const EventStreamName = "dicey_events"

// MapEventToSubject converts an event to its NATS subject
func MapEventToSubject(event events.Event) string {
	switch ev := event.(type) {
	case events.RollEvent:
		return fmt.Sprintf("dicey.rolls.%s", ev.Kind)
	case events.SavedRollEvent:
		return "dicey.saved_rolls.stored"
	default:
		return fmt.Sprintf("dicey.unknown.%s", event.Type())
	}
}

// AllSubjects lists the subjects the event stream must capture
func AllSubjects() []string {
	return []string{
		"dicey.rolls." + string(models.RollKindRoll),
		"dicey.rolls." + string(models.RollKindReroll),
		"dicey.rolls." + string(models.RollKindAdvantage),
		"dicey.rolls." + string(models.RollKindDisadvantage),
		"dicey.saved_rolls.stored",
	}
}
