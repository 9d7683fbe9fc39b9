package domain

import "fmt"

// ActivityType tags the variant carried by an Activity.
type ActivityType string

const (
	ActivityWeightlifting ActivityType = "weightlifting"
	ActivityCardio        ActivityType = "cardio"
	ActivityMobility      ActivityType = "mobility"
)

// IsValid returns true if the type is a recognized activity type.
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityWeightlifting, ActivityCardio, ActivityMobility:
		return true
	default:
		return false
	}
}

// Set is a single weightlifting set.
type Set struct {
	ID       string  `json:"id"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
	RPE      float64 `json:"rpe,omitempty"`
	IsWarmup bool    `json:"isWarmup,omitempty"`
}

// WeightliftingDetail carries the fields specific to weightlifting entries.
type WeightliftingDetail struct {
	Sets []Set `json:"sets"`
}

// CardioDetail carries the fields specific to cardio entries.
// Duration is in seconds; distance unit follows the user's preference.
type CardioDetail struct {
	DurationSec  int     `json:"duration,omitempty"`
	Distance     float64 `json:"distance,omitempty"`
	HeartRateAvg int     `json:"heartRateAvg,omitempty"`
	Pace         string  `json:"pace,omitempty"`
}

// MobilityDetail carries the fields specific to mobility entries.
type MobilityDetail struct {
	DurationSec int    `json:"duration"`
	FlowType    string `json:"flowType,omitempty"`
}

// Activity is a tagged union over the three entry variants. Exactly one of
// the detail pointers matching Type is set; dispatch on Type, not on which
// pointers happen to be non-nil.
type Activity struct {
	ID    string       `json:"id"`
	Type  ActivityType `json:"type"`
	Name  string       `json:"name"`
	Notes string       `json:"notes,omitempty"`

	Weightlifting *WeightliftingDetail `json:"weightlifting,omitempty"`
	Cardio        *CardioDetail        `json:"cardio,omitempty"`
	Mobility      *MobilityDetail      `json:"mobility,omitempty"`
}

// NewWeightliftingActivity constructs a weightlifting entry.
func NewWeightliftingActivity(id, name string, sets []Set) Activity {
	return Activity{
		ID:            id,
		Type:          ActivityWeightlifting,
		Name:          name,
		Weightlifting: &WeightliftingDetail{Sets: sets},
	}
}

// NewCardioActivity constructs a cardio entry.
func NewCardioActivity(id, name string, durationSec int, distance float64) Activity {
	return Activity{
		ID:     id,
		Type:   ActivityCardio,
		Name:   name,
		Cardio: &CardioDetail{DurationSec: durationSec, Distance: distance},
	}
}

// NewMobilityActivity constructs a mobility entry.
func NewMobilityActivity(id, name string, durationSec int, flowType string) Activity {
	return Activity{
		ID:       id,
		Type:     ActivityMobility,
		Name:     name,
		Mobility: &MobilityDetail{DurationSec: durationSec, FlowType: flowType},
	}
}

// Validate checks that the tag is known and that exactly the matching detail
// is present.
func (a Activity) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("activity has no id")
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("unknown activity type %q", a.Type)
	}
	want := map[ActivityType]bool{
		ActivityWeightlifting: a.Weightlifting != nil,
		ActivityCardio:        a.Cardio != nil,
		ActivityMobility:      a.Mobility != nil,
	}
	for typ, present := range want {
		if typ == a.Type && !present {
			return fmt.Errorf("activity %s missing %s detail", a.ID, typ)
		}
		if typ != a.Type && present {
			return fmt.Errorf("activity %s carries stray %s detail", a.ID, typ)
		}
	}
	return nil
}

// AddSet appends a set to a weightlifting activity. No-op for other variants.
func (a *Activity) AddSet(set Set) {
	if a.Type != ActivityWeightlifting || a.Weightlifting == nil {
		return
	}
	a.Weightlifting.Sets = append(a.Weightlifting.Sets, set)
}

// UpdateSet replaces the weight and reps of the set with the given id.
// No-op for other variants or an unknown set id.
func (a *Activity) UpdateSet(setID string, weight float64, reps int) {
	if a.Type != ActivityWeightlifting || a.Weightlifting == nil {
		return
	}
	for i := range a.Weightlifting.Sets {
		if a.Weightlifting.Sets[i].ID == setID {
			a.Weightlifting.Sets[i].Weight = weight
			a.Weightlifting.Sets[i].Reps = reps
			return
		}
	}
}
