package devices

import "time"

// PaymentType
// @Enum monthly, yearly, lifetime
type PaymentType string

const (
	PaymentMonthly  PaymentType = "monthly"
	PaymentYearly   PaymentType = "yearly"
	PaymentLifetime PaymentType = "lifetime"
)

func (p PaymentType) Valid() bool {
	switch p {
	case "", PaymentMonthly, PaymentYearly, PaymentLifetime:
		return true
	}
	return false
}

// Device es el collar/sensor. Pertenece a un usuario y opcionalmente a un animal.
type Device struct {
	ID       string
	Code     string // identificador impreso en el equipo, único
	UserID   string
	AnimalID string

	IsActivated bool
	IsPaid      bool
	PaymentType PaymentType

	BatteryLevel       int // 0..100
	BluetoothConnected bool

	LastSyncAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
