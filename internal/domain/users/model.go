package users

import "time"

// User representa a una persona que registra medicamentos y dosis.
// Todo log y schedule del sistema referencia exactamente un User.
type User struct {
	ID string

	FirstName string
	LastName  string

	CreatedAt time.Time
}
