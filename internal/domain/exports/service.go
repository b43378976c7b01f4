package exports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/accounts"
	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/devices"
	"pet-health-monitor/internal/domain/health"
	"pet-health-monitor/internal/domain/records"
	"pet-health-monitor/internal/domain/reports"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Format formato de salida.
// @Enum json, csv, xlsx
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", ErrUnknownFormat
}

// Dataset es la foto completa que se exporta.
type Dataset struct {
	Users          []accounts.User
	Animals        []animals.Animal
	Devices        []devices.Device
	MedicalRecords []records.MedicalRecord
	Readings       []health.Reading
	Scores         []health.HealthScore
	Reports        []reports.Report
	ExportDate     time.Time
}

type Users interface {
	ListUsers(ctx context.Context, filter accounts.UserFilter) ([]accounts.User, error)
}

type Animals interface {
	ListAll(ctx context.Context) ([]animals.Animal, error)
}

type Devices interface {
	List(ctx context.Context, filter devices.ListFilter) ([]devices.Device, error)
}

type Records interface {
	ListAll(ctx context.Context) ([]records.MedicalRecord, error)
}

type Telemetry interface {
	AllReadings(ctx context.Context) ([]health.Reading, error)
	AllScores(ctx context.Context) ([]health.HealthScore, error)
}

type Reports interface {
	ListAll(ctx context.Context) ([]reports.Report, error)
}

// Sources agrupa de dónde sale cada colección.
type Sources struct {
	Users     Users
	Animals   Animals
	Devices   Devices
	Records   Records
	Telemetry Telemetry
	Reports   Reports
}

type Service struct {
	src Sources
	now func() time.Time
}

func NewService(src Sources) *Service {
	return &Service{src: src, now: time.Now}
}

// File es el resultado listo para descargar.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (s *Service) Collect(ctx context.Context) (Dataset, error) {
	var (
		ds  Dataset
		err error
	)
	if ds.Users, err = s.src.Users.ListUsers(ctx, accounts.UserFilter{}); err != nil {
		return Dataset{}, fmt.Errorf("users: %w", err)
	}
	if ds.Animals, err = s.src.Animals.ListAll(ctx); err != nil {
		return Dataset{}, fmt.Errorf("animals: %w", err)
	}
	if ds.Devices, err = s.src.Devices.List(ctx, devices.ListFilter{}); err != nil {
		return Dataset{}, fmt.Errorf("devices: %w", err)
	}
	if ds.MedicalRecords, err = s.src.Records.ListAll(ctx); err != nil {
		return Dataset{}, fmt.Errorf("medical records: %w", err)
	}
	if ds.Readings, err = s.src.Telemetry.AllReadings(ctx); err != nil {
		return Dataset{}, fmt.Errorf("readings: %w", err)
	}
	if ds.Scores, err = s.src.Telemetry.AllScores(ctx); err != nil {
		return Dataset{}, fmt.Errorf("scores: %w", err)
	}
	if ds.Reports, err = s.src.Reports.ListAll(ctx); err != nil {
		return Dataset{}, fmt.Errorf("reports: %w", err)
	}
	ds.ExportDate = s.now()
	return ds, nil
}

// Export arma el archivo en el formato pedido.
func (s *Service) Export(ctx context.Context, f Format) (File, error) {
	ds, err := s.Collect(ctx)
	if err != nil {
		return File{}, err
	}
	stamp := ds.ExportDate.Format("20060102-150405")

	switch f {
	case FormatJSON:
		data, err := EncodeJSON(ds)
		if err != nil {
			return File{}, err
		}
		return File{Filename: "export-" + stamp + ".json", ContentType: "application/json", Data: data}, nil
	case FormatCSV:
		data, err := EncodeCSV(ds)
		if err != nil {
			return File{}, err
		}
		return File{Filename: "export-" + stamp + ".csv", ContentType: "text/csv; charset=utf-8", Data: data}, nil
	case FormatXLSX:
		data, err := EncodeXLSX(ds)
		if err != nil {
			return File{}, err
		}
		return File{
			Filename:    "export-" + stamp + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	}
	return File{}, ErrUnknownFormat
}
