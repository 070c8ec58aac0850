package model

// Trainee (Auszubildender, Azubi) is a person joined with its
// auszubildender row.
type Trainee struct {
	ID int64 `json:"azubi_id"`
	Person
	AusbilderID       int64  `json:"ausbilder_id"`
	Ausbildungsbeginn Date   `json:"ausbildungsbeginn"`
	Ausbildungsberuf  string `json:"ausbildungsberuf"`
}

// TraineeSummary is one entry of the trainee listing.
type TraineeSummary struct {
	Email string `json:"email"`
	ID    int64  `json:"azubi_id"`
}

// NewTrainee is the payload for creating a trainee.
type NewTrainee struct {
	NewPerson
	AusbilderID       int64  `json:"ausbilder_id" validate:"required,min=1"`
	Ausbildungsbeginn Date   `json:"ausbildungsbeginn"`
	Ausbildungsberuf  string `json:"ausbildungsberuf" validate:"required,max=100"`
}
