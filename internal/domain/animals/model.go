package animals

import "time"

// Species define las especies con envelope fisiológico conocido.
// Cualquier otro valor se acepta y usa el envelope por defecto.
// @Enum cattle, sheep, pig, horse, dog, cat, chicken, duck
type Species string

const (
	SpeciesCattle  Species = "cattle"
	SpeciesSheep   Species = "sheep"
	SpeciesPig     Species = "pig"
	SpeciesHorse   Species = "horse"
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesChicken Species = "chicken"
	SpeciesDuck    Species = "duck"
)

// Sex define el sexo del animal.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Animal es el sujeto monitoreado. Pertenece a un único usuario.
type Animal struct {
	ID          string
	OwnerUserID string

	Name    string
	Species Species
	Sex     Sex

	WeightKg float64
	AgeYears int

	BirthDate *time.Time
	DeviceID  string // collar/sensor vinculado (opcional)

	LastSyncAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
