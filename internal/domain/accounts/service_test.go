package accounts_test

import (
	"context"
	"testing"
	"time"

	"pet-health-monitor/internal/adapters/storage/memory"
	"pet-health-monitor/internal/domain/accounts"
	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/devices"
	"pet-health-monitor/internal/domain/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	accounts *accounts.Service
	animals  *animals.Service
	devices  *devices.Service
	records  *records.Service
}

// newStack arma accounts con animales, dispositivos y registros en memoria,
// cableados igual que en la app.
func newStack(t *testing.T) stack {
	t.Helper()
	animalRepo := memory.NewAnimalRepo()
	acc := accounts.NewService(memory.NewUserRepo(), memory.NewOrganizationRepo(), animalRepo)
	an := animals.NewService(animalRepo, acc)
	dev := devices.NewService(memory.NewDeviceRepo(), acc, an)
	rec := records.NewService(memory.NewRecordRepo())
	acc.SetDeviceCounter(dev)
	acc.SetAnimalRemover(an)
	an.AddCleaner(rec)
	an.AddCleaner(dev)
	return stack{accounts: acc, animals: an, devices: dev, records: rec}
}

func ptr[T any](v T) *T { return &v }

func (s stack) org(t *testing.T, id string) {
	t.Helper()
	_, err := s.accounts.CreateOrganization(context.Background(), accounts.CreateOrganizationInput{ID: id, Name: "Org " + id})
	require.NoError(t, err)
}

func (s stack) user(t *testing.T, id, orgID string) {
	t.Helper()
	_, err := s.accounts.CreateUser(context.Background(), accounts.CreateUserInput{ID: id, Username: id, OrganizationID: orgID})
	require.NoError(t, err)
}

func (s stack) animal(t *testing.T, id, owner string) {
	t.Helper()
	_, err := s.animals.Create(context.Background(), animals.CreateInput{ID: id, OwnerUserID: owner, Name: id, Species: "sheep"})
	require.NoError(t, err)
}

func (s stack) assertOrg(t *testing.T, id string, users, animalCount int) {
	t.Helper()
	o, err := s.accounts.GetOrganization(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, users, o.UserCount, "org %s users", id)
	assert.Equal(t, animalCount, o.AnimalCount, "org %s animals", id)
}

func (s stack) assertUserAnimals(t *testing.T, id string, n int) {
	t.Helper()
	u, err := s.accounts.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, n, u.AnimalCount, "user %s animals", id)
}

func TestService_AggregatesFollowMembershipChanges(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.org(t, "org-1")
	s.org(t, "org-2")
	s.user(t, "u1", "org-1")
	s.user(t, "u2", "org-1")
	s.user(t, "u3", "org-2")
	s.animal(t, "a1", "u1")
	s.animal(t, "a2", "u1")
	s.animal(t, "a3", "u2")
	s.animal(t, "a4", "u3")

	s.assertOrg(t, "org-1", 2, 3)
	s.assertOrg(t, "org-2", 1, 1)
	s.assertUserAnimals(t, "u1", 2)

	// u2 se muda con su animal
	_, err := s.accounts.UpdateUser(ctx, "u2", accounts.UpdateUserInput{OrganizationID: ptr("org-2")})
	require.NoError(t, err)
	s.assertOrg(t, "org-1", 1, 2)
	s.assertOrg(t, "org-2", 2, 2)
	s.assertUserAnimals(t, "u2", 1)

	// u3 queda sin organización
	_, err = s.accounts.UpdateUser(ctx, "u3", accounts.UpdateUserInput{OrganizationID: ptr("")})
	require.NoError(t, err)
	s.assertOrg(t, "org-2", 1, 1)

	_, err = s.accounts.UpdateUser(ctx, "u3", accounts.UpdateUserInput{OrganizationID: ptr("missing")})
	assert.ErrorIs(t, err, accounts.ErrOrganizationNotFound)
}

func TestService_AggregatesFollowAnimalChanges(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.org(t, "org-1")
	s.org(t, "org-2")
	s.user(t, "u1", "org-1")
	s.user(t, "u2", "org-2")
	s.animal(t, "a1", "u1")
	s.animal(t, "a2", "u1")

	_, err := s.animals.Update(ctx, "a2", animals.UpdateInput{OwnerUserID: ptr("u2")})
	require.NoError(t, err)
	s.assertUserAnimals(t, "u1", 1)
	s.assertUserAnimals(t, "u2", 1)
	s.assertOrg(t, "org-1", 1, 1)
	s.assertOrg(t, "org-2", 1, 1)

	require.NoError(t, s.animals.Delete(ctx, "a1"))
	s.assertUserAnimals(t, "u1", 0)
	s.assertOrg(t, "org-1", 1, 0)
	s.assertOrg(t, "org-2", 1, 1)
}

func TestService_DeleteUserCascadesAnimals(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.org(t, "org-1")
	s.user(t, "u1", "org-1")
	s.user(t, "u2", "org-1")
	s.animal(t, "a1", "u1")
	s.animal(t, "a2", "u1")
	s.animal(t, "a3", "u2")

	_, err := s.records.Create(ctx, "a1", records.CreateInput{Type: records.TypeVaccination, Date: time.Now()})
	require.NoError(t, err)
	_, err = s.devices.Create(ctx, devices.CreateInput{Code: "DEV1", UserID: "u1", AnimalID: "a1"})
	require.NoError(t, err)
	s.assertOrg(t, "org-1", 2, 3)

	require.NoError(t, s.accounts.DeleteUser(ctx, "u1"))

	_, err = s.accounts.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, accounts.ErrUserNotFound)
	left, err := s.animals.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, left)
	recs, err := s.records.ListByAnimal(ctx, "a1", records.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, recs)

	// el collar queda desvinculado
	devs, err := s.devices.List(ctx, devices.ListFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Empty(t, devs[0].AnimalID)

	s.assertOrg(t, "org-1", 1, 1)
	s.assertUserAnimals(t, "u2", 1)
}

func TestService_DeleteOrganizationDetachesMembers(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.org(t, "org-1")
	s.user(t, "u1", "org-1")
	s.animal(t, "a1", "u1")

	require.NoError(t, s.accounts.DeleteOrganization(ctx, "org-1"))

	_, err := s.accounts.GetOrganization(ctx, "org-1")
	assert.ErrorIs(t, err, accounts.ErrOrganizationNotFound)

	u, err := s.accounts.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.OrganizationID)
	assert.Equal(t, 1, u.AnimalCount)

	ids, err := s.accounts.MemberIDs(ctx, "org-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestService_DeviceCounters(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.user(t, "u1", "")
	s.user(t, "u2", "")

	paid, err := s.devices.Create(ctx, devices.CreateInput{Code: "DEV1", UserID: "u1", IsPaid: true, PaymentType: devices.PaymentYearly})
	require.NoError(t, err)
	unpaid, err := s.devices.Create(ctx, devices.CreateInput{Code: "DEV2", UserID: "u1"})
	require.NoError(t, err)

	assertDevices := func(id string, total, p, up int) {
		t.Helper()
		u, err := s.accounts.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, total, u.DeviceCount, "%s total", id)
		assert.Equal(t, p, u.PaidDeviceCount, "%s paid", id)
		assert.Equal(t, up, u.UnpaidDeviceCount, "%s unpaid", id)
	}
	assertDevices("u1", 2, 1, 1)

	_, err = s.devices.Update(ctx, unpaid.ID, devices.UpdateInput{IsPaid: ptr(true)})
	require.NoError(t, err)
	assertDevices("u1", 2, 2, 0)

	_, err = s.devices.Update(ctx, paid.ID, devices.UpdateInput{UserID: ptr("u2")})
	require.NoError(t, err)
	assertDevices("u1", 1, 1, 0)
	assertDevices("u2", 1, 1, 0)

	require.NoError(t, s.devices.Delete(ctx, paid.ID))
	assertDevices("u2", 0, 0, 0)
}

func TestService_CreateUserValidation(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.user(t, "u1", "")

	_, err := s.accounts.CreateUser(ctx, accounts.CreateUserInput{Username: "u1"})
	assert.ErrorIs(t, err, accounts.ErrUsernameTaken)

	_, err = s.accounts.CreateUser(ctx, accounts.CreateUserInput{Username: "  "})
	assert.ErrorIs(t, err, accounts.ErrInvalidInput)

	_, err = s.accounts.CreateUser(ctx, accounts.CreateUserInput{Username: "x", Role: "root"})
	assert.ErrorIs(t, err, accounts.ErrInvalidInput)

	_, err = s.accounts.CreateUser(ctx, accounts.CreateUserInput{Username: "y", OrganizationID: "nope"})
	assert.ErrorIs(t, err, accounts.ErrOrganizationNotFound)

	u, err := s.accounts.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, accounts.RoleUser, u.Role)
	assert.Equal(t, accounts.UserActive, u.Status)
}
