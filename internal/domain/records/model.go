package records

import "time"

// RecordType tipo de registro médico.
// @Enum vaccination, physical_exam, blood_test, diagnosis, surgery, medication
type RecordType string

const (
	TypeVaccination  RecordType = "vaccination"
	TypePhysicalExam RecordType = "physical_exam"
	TypeBloodTest    RecordType = "blood_test"
	TypeDiagnosis    RecordType = "diagnosis"
	TypeSurgery      RecordType = "surgery"
	TypeMedication   RecordType = "medication"
)

func (t RecordType) Valid() bool {
	switch t {
	case TypeVaccination, TypePhysicalExam, TypeBloodTest, TypeDiagnosis, TypeSurgery, TypeMedication:
		return true
	}
	return false
}

// MedicalRecord es un registro clínico de un animal (vacuna, examen, etc.).
type MedicalRecord struct {
	ID       string
	AnimalID string

	Type RecordType

	Date       time.Time // cuándo ocurrió
	RecordedAt time.Time

	Title        string
	Description  string
	Veterinarian string
	Clinic       string

	RecordedBy string // userID que lo cargó ("" = sistema/seed)
	UpdatedAt  time.Time
}
