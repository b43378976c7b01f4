package health

import "time"

// SetClock fija el reloj del Service en tests del paquete health_test.
func SetClock(s *Service, now func() time.Time) { s.now = now }
