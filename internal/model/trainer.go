package model

// Trainer (Ausbilder) is a person joined with its ausbilder row.
type Trainer struct {
	ID int64 `json:"ausbilder_id"`
	Person
}

// TrainerSummary is one entry of the trainer listing.
type TrainerSummary struct {
	Email string `json:"email"`
	ID    int64  `json:"ausbilder_id"`
}

// NewTrainer is the payload for creating a trainer. A trainer has no
// fields beyond the person record.
type NewTrainer struct {
	NewPerson
}
