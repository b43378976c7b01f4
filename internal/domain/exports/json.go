package exports

import (
	"encoding/json"
	"time"
)

type jsonDump struct {
	Users          []jsonUser    `json:"users"`
	Animals        []jsonAnimal  `json:"animals"`
	Devices        []jsonDevice  `json:"devices"`
	MedicalRecords []jsonRecord  `json:"medicalRecords"`
	HealthData     []jsonReading `json:"healthData"`
	HealthScores   []jsonScore   `json:"healthScores"`
	Reports        []jsonReport  `json:"reports"`
	ExportDate     time.Time     `json:"exportDate"`
}

type jsonUser struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	OrganizationID string     `json:"organizationId,omitempty"`
	AnimalCount    int        `json:"animalCount"`
	DeviceCount    int        `json:"deviceCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

type jsonAnimal struct {
	ID          string     `json:"id"`
	OwnerUserID string     `json:"userId"`
	Name        string     `json:"name"`
	Species     string     `json:"type"`
	Sex         string     `json:"gender,omitempty"`
	WeightKg    float64    `json:"weight"`
	AgeYears    int        `json:"age"`
	DeviceID    string     `json:"deviceId,omitempty"`
	LastSyncAt  *time.Time `json:"lastSyncTime,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type jsonDevice struct {
	ID           string `json:"id"`
	Code         string `json:"deviceCode"`
	UserID       string `json:"userId"`
	AnimalID     string `json:"animalId,omitempty"`
	IsActivated  bool   `json:"isActivated"`
	IsPaid       bool   `json:"isPaid"`
	PaymentType  string `json:"paymentType,omitempty"`
	BatteryLevel int    `json:"batteryLevel"`
}

type jsonRecord struct {
	ID           string    `json:"id"`
	AnimalID     string    `json:"animalId"`
	Type         string    `json:"recordType"`
	Date         time.Time `json:"date"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Veterinarian string    `json:"veterinarian,omitempty"`
	Clinic       string    `json:"clinic,omitempty"`
}

type jsonReading struct {
	ID        string    `json:"id"`
	AnimalID  string    `json:"animalId"`
	Metric    string    `json:"dataType"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

type jsonScore struct {
	ID          string    `json:"id"`
	AnimalID    string    `json:"animalId"`
	Overall     float64   `json:"overallScore"`
	HeartRate   float64   `json:"heartRateScore"`
	Temperature float64   `json:"temperatureScore"`
	Activity    float64   `json:"activityScore"`
	Sleep       float64   `json:"sleepScore"`
	Stress      float64   `json:"stressScore"`
	Timestamp   time.Time `json:"timestamp"`
}

type jsonReport struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	AnimalID    string    `json:"animalId,omitempty"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// EncodeJSON vuelca el dataset con indentación de 2 espacios.
func EncodeJSON(ds Dataset) ([]byte, error) {
	out := jsonDump{
		Users:          make([]jsonUser, 0, len(ds.Users)),
		Animals:        make([]jsonAnimal, 0, len(ds.Animals)),
		Devices:        make([]jsonDevice, 0, len(ds.Devices)),
		MedicalRecords: make([]jsonRecord, 0, len(ds.MedicalRecords)),
		HealthData:     make([]jsonReading, 0, len(ds.Readings)),
		HealthScores:   make([]jsonScore, 0, len(ds.Scores)),
		Reports:        make([]jsonReport, 0, len(ds.Reports)),
		ExportDate:     ds.ExportDate,
	}
	for _, u := range ds.Users {
		out.Users = append(out.Users, jsonUser{
			ID: u.ID, Username: u.Username, Email: u.Email, Phone: u.Phone,
			Role: string(u.Role), Status: string(u.Status), OrganizationID: u.OrganizationID,
			AnimalCount: u.AnimalCount, DeviceCount: u.DeviceCount,
			CreatedAt: u.CreatedAt, LastLoginAt: u.LastLoginAt,
		})
	}
	for _, a := range ds.Animals {
		out.Animals = append(out.Animals, jsonAnimal{
			ID: a.ID, OwnerUserID: a.OwnerUserID, Name: a.Name, Species: string(a.Species),
			Sex: string(a.Sex), WeightKg: a.WeightKg, AgeYears: a.AgeYears, DeviceID: a.DeviceID,
			LastSyncAt: a.LastSyncAt, CreatedAt: a.CreatedAt,
		})
	}
	for _, d := range ds.Devices {
		out.Devices = append(out.Devices, jsonDevice{
			ID: d.ID, Code: d.Code, UserID: d.UserID, AnimalID: d.AnimalID,
			IsActivated: d.IsActivated, IsPaid: d.IsPaid, PaymentType: string(d.PaymentType),
			BatteryLevel: d.BatteryLevel,
		})
	}
	for _, r := range ds.MedicalRecords {
		out.MedicalRecords = append(out.MedicalRecords, jsonRecord{
			ID: r.ID, AnimalID: r.AnimalID, Type: string(r.Type), Date: r.Date,
			Title: r.Title, Description: r.Description, Veterinarian: r.Veterinarian, Clinic: r.Clinic,
		})
	}
	for _, r := range ds.Readings {
		out.HealthData = append(out.HealthData, jsonReading{
			ID: r.ID, AnimalID: r.AnimalID, Metric: string(r.Metric), Value: r.Value, Unit: r.Unit, Timestamp: r.Timestamp,
		})
	}
	for _, s := range ds.Scores {
		out.HealthScores = append(out.HealthScores, jsonScore{
			ID: s.ID, AnimalID: s.AnimalID, Overall: s.Overall, HeartRate: s.HeartRate,
			Temperature: s.Temperature, Activity: s.Activity, Sleep: s.Sleep, Stress: s.Stress,
			Timestamp: s.Timestamp,
		})
	}
	for _, r := range ds.Reports {
		out.Reports = append(out.Reports, jsonReport{
			ID: r.ID, UserID: r.UserID, AnimalID: r.AnimalID, Type: string(r.Type),
			Title: r.Title, Content: r.Content, GeneratedAt: r.GeneratedAt,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
