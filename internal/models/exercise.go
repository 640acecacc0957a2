package models

// ExerciseType classifies a catalog exercise.
type ExerciseType string

// The recognized exercise types. A stored type outside this set is treated
// as data corruption, not silently skipped.
const (
	ExerciseStrength    ExerciseType = "Strength"
	ExerciseEndurance   ExerciseType = "Endurance"
	ExerciseFlexibility ExerciseType = "Flexibility"
	ExerciseBalance     ExerciseType = "Balance"
)

// Valid reports whether t is a recognized exercise type.
func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseStrength, ExerciseEndurance, ExerciseFlexibility, ExerciseBalance:
		return true
	}
	return false
}

// Exercise is a globally shared catalog entity referenced by id from posts.
type Exercise struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Type ExerciseType `json:"type"`
}

// ExerciseDocument is the persisted shape of a catalog exercise. Type is a
// foreign key into the exercise-types collection.
type ExerciseDocument struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
	Type string `bson:"type"`
}

// ExerciseTypeDocument is the persisted shape of an exercise type.
type ExerciseTypeDocument struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

// ExerciseRef is a junction document linking a post to a catalog exercise.
type ExerciseRef struct {
	ExerciseID string `bson:"exercise"`
}
