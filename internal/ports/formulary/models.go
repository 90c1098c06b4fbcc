package formulary

// Entry es la ficha mínima que nos interesa del directorio externo.
type Entry struct {
	Code   string // identificador en el directorio (ej. código RxNorm)
	Name   string // nombre canónico del medicamento
	Active bool   // false si el producto fue retirado del mercado
}
