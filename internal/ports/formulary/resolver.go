package formulary

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured indica que el servicio corre sin directorio de
	// medicamentos (modo dev / standalone). El caller decide el fallback.
	ErrNotConfigured = errors.New("formulary not configured")

	// ErrUnknownMedication indica que el directorio no reconoce el nombre.
	ErrUnknownMedication = errors.New("unknown medication")
)

// Resolver consulta un directorio externo de medicamentos (formulario)
// para canonicalizar nombres al momento de crear un Medication.
// Puede ser nil en el servicio: en ese caso el lookup se salta.
type Resolver interface {
	Lookup(ctx context.Context, name string) (Entry, error)
}
