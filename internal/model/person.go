package model

// Person is a row of an_user. Every trainer and trainee owns exactly one.
//
// The password hash is write-only and never serialized.
type Person struct {
	ID        int64  `json:"user_id"`
	PwHash    string `json:"-"`
	Vorname   string `json:"vorname"`
	Nachname  string `json:"nachname"`
	Email     string `json:"email"`
	Abteilung string `json:"abteilung"`
}

// NewPerson carries the person fields of a create request.
type NewPerson struct {
	PwHash    string `json:"pw_hash" validate:"required"`
	Vorname   string `json:"vorname" validate:"required,max=100"`
	Nachname  string `json:"nachname" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Abteilung string `json:"abteilung" validate:"required,max=100"`
}
