package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"pet-health-monitor/internal/domain/accounts"
	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/devices"
	"pet-health-monitor/internal/domain/health"
	"pet-health-monitor/internal/domain/records"
	"pet-health-monitor/internal/domain/syncs"
	"pet-health-monitor/internal/domain/tips"
	"pet-health-monitor/internal/platform/logger"
)

// Deps son los servicios que carga el dataset de demo.
type Deps struct {
	Accounts  *accounts.Service
	Animals   *animals.Service
	Devices   *devices.Service
	Records   *records.Service
	Syncs     *syncs.Service
	Tips      *tips.Service
	Simulator *health.Simulator
}

// Summary cuenta lo que se creó.
type Summary struct {
	Organizations int
	Users         int
	Animals       int
	Devices       int
	Records       int
	Syncs         int
	Tips          int
	Rules         int
	Readings      int
	Alerts        int
}

type seedUser struct {
	in       accounts.CreateUserInput
	animals  int
	paid     int
	clinic   bool
	loggedIn bool
}

var users = []seedUser{
	{in: accounts.CreateUserInput{ID: "user-1", Username: "admin", Email: "admin@petraq.com", Phone: "13800138000", FullName: "Administrator", Role: accounts.RoleAdmin}, clinic: true, loggedIn: true},
	{in: accounts.CreateUserInput{ID: "user-2", Username: "farmer1", Email: "farmer1@example.com", Phone: "13800138001", FullName: "Zhang Wei", OrganizationID: "org-1"}, animals: 20, paid: 18, loggedIn: true},
	{in: accounts.CreateUserInput{ID: "user-3", Username: "farmer2", Email: "farmer2@example.com", Phone: "13800138002", FullName: "Li Ming", OrganizationID: "org-1"}, animals: 15, paid: 10},
	{in: accounts.CreateUserInput{ID: "user-4", Username: "vet1", Email: "vet1@example.com", FullName: "Wang Fang", OrganizationID: "org-2"}, animals: 10, paid: 10, clinic: true},
	{in: accounts.CreateUserInput{ID: "user-5", Username: "viewer1", Email: "viewer1@example.com", FullName: "Zhao Lei", Role: accounts.RoleViewer}},
}

// la especie depende de la posición del usuario en la lista
var speciesCycle = []animals.Species{
	animals.SpeciesCattle, animals.SpeciesSheep, animals.SpeciesPig,
	animals.SpeciesHorse, animals.SpeciesDog, animals.SpeciesCat,
}

var speciesLabel = map[animals.Species]string{
	animals.SpeciesCattle: "Cattle",
	animals.SpeciesSheep:  "Sheep",
	animals.SpeciesPig:    "Pig",
	animals.SpeciesHorse:  "Horse",
	animals.SpeciesDog:    "Dog",
	animals.SpeciesCat:    "Cat",
}

var recordTypes = []records.RecordType{
	records.TypeVaccination,
	records.TypePhysicalExam,
	records.TypeBloodTest,
	records.TypeDiagnosis,
}

// Run carga organizaciones, usuarios, animales con su collar, registros médicos,
// historial de syncs, tips y reglas, y al final la pasada inicial del simulador.
func Run(ctx context.Context, d Deps, rnd *rand.Rand, now time.Time, log logger.Logger) (Summary, error) {
	if log == nil {
		log = logger.NewNop()
	}
	var sum Summary

	orgNames := map[string]string{}
	for _, o := range []accounts.CreateOrganizationInput{
		{ID: "org-1", Name: "Farm A", Description: "Large livestock farm"},
		{ID: "org-2", Name: "Pet Clinic B", Description: "Professional veterinary clinic"},
	} {
		created, err := d.Accounts.CreateOrganization(ctx, o)
		if err != nil {
			return sum, fmt.Errorf("seed organization %s: %w", o.ID, err)
		}
		orgNames[created.ID] = created.Name
		sum.Organizations++
	}

	for idx, su := range users {
		u, err := d.Accounts.CreateUser(ctx, su.in)
		if err != nil {
			return sum, fmt.Errorf("seed user %s: %w", su.in.ID, err)
		}
		sum.Users++
		if su.loggedIn {
			if err := d.Accounts.TouchLogin(ctx, u.ID); err != nil {
				return sum, fmt.Errorf("seed login %s: %w", u.ID, err)
			}
		}

		species := speciesCycle[idx%len(speciesCycle)]
		for i := 0; i < su.animals; i++ {
			animalID := fmt.Sprintf("animal-%s-%d", u.ID, i)
			deviceID := fmt.Sprintf("device-%s-%d", u.ID, i)
			birth := now.AddDate(-(rnd.Intn(10) + 1), 0, 0)
			sex := "male"
			if i%2 == 1 {
				sex = "female"
			}

			if _, err := d.Animals.Create(ctx, animals.CreateInput{
				ID:          animalID,
				OwnerUserID: u.ID,
				Name:        fmt.Sprintf("%s%03d", speciesLabel[species], i+1),
				Species:     string(species),
				Sex:         sex,
				WeightKg:    round1(50 + rnd.Float64()*500),
				BirthDate:   &birth,
				DeviceID:    deviceID,
			}); err != nil {
				return sum, fmt.Errorf("seed animal %s: %w", animalID, err)
			}
			sum.Animals++

			paid := i < su.paid
			pt := devices.PaymentType("")
			if paid {
				pt = devices.PaymentMonthly
			}
			if _, err := d.Devices.Create(ctx, devices.CreateInput{
				ID:                 deviceID,
				Code:               fmt.Sprintf("DEV%s%03d", u.ID[len(u.ID)-1:], i),
				UserID:             u.ID,
				AnimalID:           animalID,
				IsActivated:        true,
				IsPaid:             paid,
				PaymentType:        pt,
				BatteryLevel:       60 + rnd.Intn(41),
				BluetoothConnected: rnd.Float64() > 0.3,
			}); err != nil {
				return sum, fmt.Errorf("seed device %s: %w", deviceID, err)
			}
			sum.Devices++

			if rnd.Float64() > 0.7 {
				rt := recordTypes[rnd.Intn(len(recordTypes))]
				vet := "Dr. Zhang"
				if su.clinic {
					vet = u.FullName
				}
				if _, err := d.Records.Create(ctx, animalID, records.CreateInput{
					Type:         rt,
					Date:         now.Add(-time.Duration(rnd.Int63n(int64(180 * 24 * time.Hour)))),
					Title:        fmt.Sprintf("%s record", rt),
					Description:  fmt.Sprintf("%s record for %s", rt, animalID),
					Veterinarian: vet,
					Clinic:       orgNames[u.OrganizationID],
				}); err != nil {
					return sum, fmt.Errorf("seed record %s: %w", animalID, err)
				}
				sum.Records++
			}
		}

		if u.Role != accounts.RoleUser {
			continue
		}
		for i := 0; i < 5; i++ {
			start := now.Add(-time.Duration(i) * 24 * time.Hour)
			end := start.Add(2 * time.Second)
			typ := syncs.TypeIncremental
			if i == 0 {
				typ = syncs.TypeManual
			}
			dir := syncs.DirectionUpload
			if i%2 == 1 {
				dir = syncs.DirectionDownload
			}
			if _, err := d.Syncs.Import(ctx, syncs.Record{
				ID:          fmt.Sprintf("sync-%s-%d", u.ID, i),
				UserID:      u.ID,
				Type:        typ,
				Direction:   dir,
				Status:      syncs.StatusSuccess,
				StartTime:   start,
				EndTime:     &end,
				RecordCount: 10 + rnd.Intn(50),
			}); err != nil {
				return sum, fmt.Errorf("seed sync %s: %w", u.ID, err)
			}
			sum.Syncs++
		}
	}

	active := true
	for _, t := range []tips.CreateTipInput{
		{ID: "tip-1", Type: tips.TipTypeHealth, Content: "Your animal's health score looks good, keep it up!", Tags: []string{"health", "good"}, Active: &active},
		{ID: "tip-2", Type: tips.TipTypeCare, Content: "Schedule regular check-ups to keep your animal healthy.", Tags: []string{"care", "check-up"}, Active: &active},
		{ID: "tip-3", Type: tips.TipTypeAlert, Content: "Abnormal health indicators detected, please keep an eye on them.", Tags: []string{"alert", "abnormal"}, Active: &active},
	} {
		if _, err := d.Tips.CreateTip(ctx, t); err != nil {
			return sum, fmt.Errorf("seed tip %s: %w", t.ID, err)
		}
		sum.Tips++
	}
	for _, r := range []tips.CreateRuleInput{
		{ID: "rule-1", Name: "Low health score warning", TipType: tips.TipTypeAlert, MinScore: 0, MaxScore: 60, Content: "Your animal's health score is low, consider a check-up soon.", Active: &active, Priority: 1},
		{ID: "rule-2", Name: "Good health score notice", TipType: tips.TipTypeHealth, MinScore: 80, MaxScore: 100, Content: "Your animal is in good health, keep it up!", Active: &active, Priority: 2},
	} {
		if _, err := d.Tips.CreateRule(ctx, r); err != nil {
			return sum, fmt.Errorf("seed rule %s: %w", r.ID, err)
		}
		sum.Rules++
	}

	res, err := d.Simulator.Seed(ctx)
	if err != nil {
		return sum, fmt.Errorf("seed telemetry: %w", err)
	}
	sum.Readings = res.Readings
	sum.Alerts = res.Alerts

	log.Info("mock data seeded", map[string]any{
		"organizations": sum.Organizations,
		"users":         sum.Users,
		"animals":       sum.Animals,
		"devices":       sum.Devices,
		"records":       sum.Records,
		"syncs":         sum.Syncs,
		"readings":      sum.Readings,
		"alerts":        sum.Alerts,
	})
	return sum, nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
