package liftcontrol

import (
	"fmt"
	"strings"

	"github.com/OpenStreetlifting/openstreetlifting-backend/internal/canonical"
)

// MovementMapper translates a source platform's movement labels into the
// canonical movement vocabulary. Implementations are pure lookups; a miss
// means the label is unknown and the caller must treat it as a hard
// transformation error rather than importing a mis-categorized lift.
type MovementMapper interface {
	Map(rawName string) (string, bool)
}

// UnknownMovementError reports a movement label no mapper entry covers.
type UnknownMovementError struct {
	RawName string
}

func (e *UnknownMovementError) Error() string {
	return fmt.Sprintf("unknown movement: %q", e.RawName)
}

// Mapper is the MovementMapper for LiftControl payloads. The platform
// labels movements in French with inconsistent spelling of "Muscle-up".
type Mapper struct{}

func (Mapper) Map(rawName string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(rawName)) {
	case "traction", "tractions", "pull-up", "pull up", "pullup":
		return canonical.MovementPullUp, true
	case "dips":
		return canonical.MovementDips, true
	case "muscle-up", "muscle up", "muscleup":
		return canonical.MovementMuscleUp, true
	case "squat":
		return canonical.MovementSquat, true
	default:
		return "", false
	}
}
