package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avakarimi/mechanic-shop-api/internal/model"
	"github.com/avakarimi/mechanic-shop-api/internal/queue"
	"github.com/avakarimi/mechanic-shop-api/internal/repository"
)

// pair keys the association maps: [ticket id, other id].
type pair [2]uint64

// fakeStore is an in-memory TicketStore mirroring the SQL repo's
// behavior: unresolved mechanics are skipped at creation, attach does
// the stock CAS and cost increment together, detach reverses nothing.
type fakeStore struct {
	nextID    uint64
	tickets   map[uint64]model.ServiceTicket
	customers map[uint64]model.Customer
	mechanics map[uint64]model.Mechanic
	parts     map[uint64]*model.Part
	assigned  map[pair]bool
	attached  map[pair]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickets:   map[uint64]model.ServiceTicket{},
		customers: map[uint64]model.Customer{},
		mechanics: map[uint64]model.Mechanic{},
		parts:     map[uint64]*model.Part{},
		assigned:  map[pair]bool{},
		attached:  map[pair]bool{},
	}
}

func (f *fakeStore) Create(_ context.Context, t *model.ServiceTicket, mechanicIDs []uint64) error {
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.tickets[t.ID] = *t
	for _, mid := range mechanicIDs {
		if _, ok := f.mechanics[mid]; ok {
			f.assigned[pair{t.ID, mid}] = true
		}
	}
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (model.ServiceTicket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return model.ServiceTicket{}, sql.ErrNoRows
	}
	return t, nil
}

func (f *fakeStore) ListByCustomer(_ context.Context, customerID uint64) ([]model.ServiceTicket, error) {
	out := []model.ServiceTicket{}
	for _, t := range f.tickets {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) List(_ context.Context, page, perPage int) ([]model.ServiceTicket, int, error) {
	all := []model.ServiceTicket{}
	for _, t := range f.tickets {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeStore) Update(_ context.Context, t model.ServiceTicket) error {
	stored, ok := f.tickets[t.ID]
	if !ok {
		return sql.ErrNoRows
	}
	t.TotalCost = stored.TotalCost // derived, never written by Update
	f.tickets[t.ID] = t
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.tickets[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.tickets, id)
	for k := range f.assigned {
		if k[0] == id {
			delete(f.assigned, k)
		}
	}
	for k := range f.attached {
		if k[0] == id {
			delete(f.attached, k)
		}
	}
	return nil
}

func (f *fakeStore) Mechanics(_ context.Context, ticketID uint64) ([]model.Mechanic, error) {
	ids := []uint64{}
	for k := range f.assigned {
		if k[0] == ticketID {
			ids = append(ids, k[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []model.Mechanic{}
	for _, id := range ids {
		out = append(out, f.mechanics[id])
	}
	return out, nil
}

func (f *fakeStore) Parts(_ context.Context, ticketID uint64) ([]model.Part, error) {
	ids := []uint64{}
	for k := range f.attached {
		if k[0] == ticketID {
			ids = append(ids, k[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []model.Part{}
	for _, id := range ids {
		out = append(out, *f.parts[id])
	}
	return out, nil
}

func (f *fakeStore) MechanicAssigned(_ context.Context, ticketID, mechanicID uint64) (bool, error) {
	return f.assigned[pair{ticketID, mechanicID}], nil
}

func (f *fakeStore) AssignMechanic(_ context.Context, ticketID, mechanicID uint64) error {
	f.assigned[pair{ticketID, mechanicID}] = true
	return nil
}

func (f *fakeStore) RemoveMechanic(_ context.Context, ticketID, mechanicID uint64) error {
	delete(f.assigned, pair{ticketID, mechanicID})
	return nil
}

func (f *fakeStore) PartAttached(_ context.Context, ticketID, partID uint64) (bool, error) {
	return f.attached[pair{ticketID, partID}], nil
}

func (f *fakeStore) AttachPart(_ context.Context, ticketID, partID uint64, quantity int, cost float64) error {
	p := f.parts[partID]
	if p.Quantity < quantity {
		return repository.ErrInsufficientStock
	}
	p.Quantity -= quantity
	t := f.tickets[ticketID]
	t.TotalCost += cost
	f.tickets[ticketID] = t
	f.attached[pair{ticketID, partID}] = true
	return nil
}

func (f *fakeStore) DetachPart(_ context.Context, ticketID, partID uint64) error {
	delete(f.attached, pair{ticketID, partID})
	return nil
}

// Narrow directory views over the shared fake state.

type fakeCustomers struct{ s *fakeStore }

func (d fakeCustomers) GetByID(_ context.Context, id uint64) (model.Customer, error) {
	c, ok := d.s.customers[id]
	if !ok {
		return model.Customer{}, sql.ErrNoRows
	}
	return c, nil
}

type fakeMechanics struct{ s *fakeStore }

func (d fakeMechanics) GetByID(_ context.Context, id uint64) (model.Mechanic, error) {
	m, ok := d.s.mechanics[id]
	if !ok {
		return model.Mechanic{}, sql.ErrNoRows
	}
	return m, nil
}

type fakeParts struct{ s *fakeStore }

func (d fakeParts) GetByID(_ context.Context, id uint64) (model.Part, error) {
	p, ok := d.s.parts[id]
	if !ok {
		return model.Part{}, sql.ErrNoRows
	}
	return *p, nil
}

type fakePublisher struct{ events []queue.TicketCompletedEvent }

func (p *fakePublisher) PublishTicketCompleted(_ context.Context, ev queue.TicketCompletedEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func newTestService() (*TicketService, *fakeStore, *fakePublisher) {
	store := newFakeStore()
	store.customers[1] = model.Customer{ID: 1, FirstName: "Ada", LastName: "Nguyen", Email: "ada@example.com", IsActive: true}
	store.customers[2] = model.Customer{ID: 2, FirstName: "Luis", LastName: "Mora", Email: "luis@example.com", IsActive: true}
	store.customers[3] = model.Customer{ID: 3, FirstName: "Gone", LastName: "Person", Email: "gone@example.com", IsActive: false}
	store.mechanics[10] = model.Mechanic{ID: 10, FirstName: "Mia", LastName: "Kim", Email: "mia@shop.test", IsActive: true}
	store.mechanics[11] = model.Mechanic{ID: 11, FirstName: "Tom", LastName: "Rossi", Email: "tom@shop.test", IsActive: true}
	store.parts[100] = &model.Part{ID: 100, PartName: "brake pad set", Quantity: 5, Price: 40}
	store.parts[101] = &model.Part{ID: 101, PartName: "oil filter", Quantity: 1, Price: 12.5}
	pub := &fakePublisher{}
	svc := NewTicketService(store, fakeCustomers{store}, fakeMechanics{store}, fakeParts{store}, pub)
	return svc, store, pub
}

func mustCreate(t *testing.T, svc *TicketService, customerID uint64, in CreateTicketInput) *TicketDetail {
	t.Helper()
	d, err := svc.Create(context.Background(), customerID, in)
	require.NoError(t, err)
	return d
}

func TestCreateAppliesDefaultsAndOwnership(t *testing.T) {
	svc, _, _ := newTestService()

	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "engine rattle"})
	assert.Equal(t, uint64(1), d.CustomerID)
	assert.Equal(t, model.StatusOpen, d.Status)
	assert.Equal(t, model.PriorityMedium, d.Priority)
	assert.Zero(t, d.TotalCost)
	assert.Empty(t, d.Mechanics)
	assert.Empty(t, d.Inventory)
}

func TestCreateSkipsUnresolvedMechanics(t *testing.T) {
	svc, _, _ := newTestService()

	d := mustCreate(t, svc, 1, CreateTicketInput{
		IssueDescription: "dead battery",
		MechanicIDs:      []uint64{10, 999},
	})
	require.Len(t, d.Mechanics, 1)
	assert.Equal(t, uint64(10), d.Mechanics[0].ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, CreateTicketInput{
		Status:         "broken",
		Priority:       "asap",
		EstimatedHours: -1,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "issue_description")
	assert.Contains(t, verr.Fields, "status")
	assert.Contains(t, verr.Fields, "priority")
	assert.Contains(t, verr.Fields, "estimated_hours")
}

func TestCreateRejectsInactiveCustomer(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), 3, CreateTicketInput{IssueDescription: "x"})
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestGetForCustomerOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "worn tires"})

	_, err := svc.GetForCustomer(context.Background(), d.ID, 2)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	got, err := svc.GetForCustomer(context.Background(), d.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestAssignMechanicIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "misfire"})

	first, err := svc.AssignMechanic(context.Background(), d.ID, 10)
	require.NoError(t, err)
	require.Len(t, first.Mechanics, 1)

	second, err := svc.AssignMechanic(context.Background(), d.ID, 10)
	require.NoError(t, err)
	assert.Len(t, second.Mechanics, 1)
	assert.True(t, store.assigned[pair{d.ID, 10}])
}

func TestAssignUnknownMechanic(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "misfire"})

	_, err := svc.AssignMechanic(context.Background(), d.ID, 999)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRemoveMechanicIsNoopWhenAbsent(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "misfire"})

	got, err := svc.RemoveMechanic(context.Background(), d.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, got.Mechanics)
}

func TestRemoveMechanic(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "misfire", MechanicIDs: []uint64{10, 11}})

	got, err := svc.RemoveMechanic(context.Background(), d.ID, 10)
	require.NoError(t, err)
	require.Len(t, got.Mechanics, 1)
	assert.Equal(t, uint64(11), got.Mechanics[0].ID)
}

func TestAttachPartConsumesStockAndAccumulatesCost(t *testing.T) {
	svc, store, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "brakes grinding"})

	got, err := svc.AttachPart(context.Background(), d.ID, 100, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, store.parts[100].Quantity)
	assert.InDelta(t, 80.0, got.TotalCost, 1e-9)
	require.Len(t, got.Inventory, 1)
	assert.Equal(t, uint64(100), got.Inventory[0].ID)
}

func TestAttachPartIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "brakes grinding"})

	_, err := svc.AttachPart(context.Background(), d.ID, 100, 2)
	require.NoError(t, err)

	// Re-attaching must not consume stock or grow the cost again.
	got, err := svc.AttachPart(context.Background(), d.ID, 100, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, store.parts[100].Quantity)
	assert.InDelta(t, 80.0, got.TotalCost, 1e-9)
}

func TestAttachPartInsufficientStock(t *testing.T) {
	svc, store, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "oil change"})

	_, err := svc.AttachPart(context.Background(), d.ID, 101, 2)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.Equal(t, 1, store.parts[101].Quantity)

	got, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalCost)
	assert.Empty(t, got.Inventory)
}

func TestAttachPartRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "oil change"})

	_, err := svc.AttachPart(context.Background(), d.ID, 100, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "quantity")
}

func TestDetachPartKeepsStockAndCost(t *testing.T) {
	svc, store, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "brakes grinding"})

	_, err := svc.AttachPart(context.Background(), d.ID, 100, 1)
	require.NoError(t, err)

	got, err := svc.DetachPart(context.Background(), d.ID, 100)
	require.NoError(t, err)
	assert.Empty(t, got.Inventory)
	assert.Equal(t, 4, store.parts[100].Quantity)
	assert.InDelta(t, 40.0, got.TotalCost, 1e-9)
}

func TestDeleteStatusGate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	open := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "a"})
	require.NoError(t, svc.Delete(ctx, open.ID))

	cancelled := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "b", Status: model.StatusCancelled})
	require.NoError(t, svc.Delete(ctx, cancelled.ID))

	for _, status := range []string{model.StatusInProgress, model.StatusCompleted} {
		d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "c", Status: status})
		err := svc.Delete(ctx, d.ID)
		assert.ErrorIs(t, err, repository.ErrInvalidState, "status %s", status)

		_, err = svc.Get(ctx, d.ID)
		assert.NoError(t, err, "ticket %d should survive", d.ID)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "squeaky belt", EstimatedHours: 2})

	status := model.StatusInProgress
	hours := 3.5
	got, err := svc.Update(context.Background(), d.ID, UpdateTicketInput{Status: &status, EstimatedHours: &hours})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, 3.5, got.EstimatedHours)
	assert.Equal(t, "squeaky belt", got.IssueDescription)
	assert.Equal(t, model.PriorityMedium, got.Priority)
}

func TestUpdateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "squeaky belt"})

	bad := "nope"
	empty := "   "
	_, err := svc.Update(context.Background(), d.ID, UpdateTicketInput{Status: &bad, IssueDescription: &empty})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")
	assert.Contains(t, verr.Fields, "issue_description")
}

func TestUpdatePublishesCompletedEventOnce(t *testing.T) {
	svc, _, pub := newTestService()
	d := mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "full service", MechanicIDs: []uint64{10}})

	_, err := svc.AttachPart(context.Background(), d.ID, 100, 1)
	require.NoError(t, err)

	done := model.StatusCompleted
	got, err := svc.Update(context.Background(), d.ID, UpdateTicketInput{Status: &done})
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, got.ID, ev.TicketID)
	assert.Equal(t, uint64(1), ev.CustomerID)
	assert.Equal(t, []string{"Mia Kim"}, ev.Mechanics)
	assert.Equal(t, []string{"brake pad set"}, ev.Parts)
	assert.InDelta(t, 40.0, ev.TotalCost, 1e-9)

	// Updating an already-completed ticket must not publish again.
	hours := 4.0
	_, err = svc.Update(context.Background(), d.ID, UpdateTicketInput{EstimatedHours: &hours})
	require.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestListForCustomerIsolation(t *testing.T) {
	svc, _, _ := newTestService()
	mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "a"})
	mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "b"})
	mustCreate(t, svc, 2, CreateTicketInput{IssueDescription: "c"})

	mine, err := svc.ListForCustomer(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, d := range mine {
		assert.Equal(t, uint64(1), d.CustomerID)
	}
}

func TestListPagination(t *testing.T) {
	svc, _, _ := newTestService()
	for i := 0; i < 5; i++ {
		mustCreate(t, svc, 1, CreateTicketInput{IssueDescription: "bulk"})
	}

	pageOne, total, err := svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, pageOne, 2)

	pageThree, _, err := svc.List(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Len(t, pageThree, 1)
}
