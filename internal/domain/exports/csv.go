package exports

import (
	"bytes"
	"encoding/csv"
	"time"
)

var csvHeader = []string{"Type", "ID", "Name", "Date"}

// EncodeCSV exporta la versión plana: una fila por usuario y por animal.
func EncodeCSV(ds Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, u := range ds.Users {
		if err := w.Write([]string{"User", u.ID, u.Username, u.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			return nil, err
		}
	}
	for _, a := range ds.Animals {
		if err := w.Write([]string{"Animal", a.ID, a.Name, a.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
