package syncs

import "time"

// Type tipo de sincronización.
// @Enum full, incremental, manual
type Type string

const (
	TypeFull        Type = "full"
	TypeIncremental Type = "incremental"
	TypeManual      Type = "manual"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFull, TypeIncremental, TypeManual:
		return true
	}
	return false
}

// Direction sentido de la sincronización.
// @Enum upload, download
type Direction string

const (
	DirectionUpload   Direction = "upload"
	DirectionDownload Direction = "download"
)

func (d Direction) Valid() bool {
	return d == DirectionUpload || d == DirectionDownload
}

// Status estado del registro. Solo pending es no-final.
// @Enum pending, success, failed, cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Record es una ejecución de sincronización de un usuario.
type Record struct {
	ID        string
	UserID    string
	Type      Type
	Direction Direction
	Status    Status

	StartTime time.Time
	EndTime   *time.Time

	RecordCount  int
	ErrorMessage string

	// intento actual (1..MaxAttempts) y cuándo arrancó
	Attempts         int
	AttemptStartedAt time.Time
}
