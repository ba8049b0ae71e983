package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	domainledger "driveshare/internal/domain/ledger"
	"driveshare/internal/domain/shared/events"
	"driveshare/internal/domain/shared/timeslot"
)

// CarRepository keeps listings in memory. Suitable for tests and the
// single-node dev mode.
type CarRepository struct {
	mu    sync.RWMutex
	items map[domaincar.ID]*domaincar.Car
}

func NewCarRepository() *CarRepository {
	return &CarRepository{items: make(map[domaincar.ID]*domaincar.Car)}
}

func (r *CarRepository) ByID(ctx context.Context, id domaincar.ID) (*domaincar.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, domaincar.ErrNotFound
	}
	return cloneCar(c), nil
}

func (r *CarRepository) Save(ctx context.Context, c *domaincar.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneCar(c)
	stored.Version = c.Version + 1
	c.Version = stored.Version
	r.items[c.ID] = stored
	return nil
}

func (r *CarRepository) ByOwner(ctx context.Context, owner domaincar.OwnerID) ([]*domaincar.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domaincar.Car, 0)
	for _, c := range r.items {
		if c.Owner == owner && !c.Removed {
			matches = append(matches, cloneCar(c))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *CarRepository) Search(ctx context.Context, params domaincar.SearchParams) (domaincar.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domaincar.Car, 0, len(r.items))
	for _, c := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return domaincar.SearchResult{}, ctx.Err()
			default:
			}
		}
		if c.Removed && !opts.IncludeRemoved {
			continue
		}
		if opts.Owner != "" && c.Owner != opts.Owner {
			continue
		}
		if opts.City != "" && !strings.EqualFold(c.Location.City, opts.City) {
			continue
		}
		if opts.Transmission != "" && c.Transmission != opts.Transmission {
			continue
		}
		if opts.FuelType != "" && c.FuelType != opts.FuelType {
			continue
		}
		if opts.MinSeats > 0 && c.Seats < opts.MinSeats {
			continue
		}
		if opts.MaxDailyRate > 0 && c.PricePerDay.Amount > opts.MaxDailyRate {
			continue
		}
		matches = append(matches, c)
	}

	sort.Slice(matches, func(i, j int) bool {
		switch opts.Sort {
		case domaincar.SortByPriceDesc:
			if matches[i].PricePerDay.Amount == matches[j].PricePerDay.Amount {
				return matches[i].CreatedAt.After(matches[j].CreatedAt)
			}
			return matches[i].PricePerDay.Amount > matches[j].PricePerDay.Amount
		case domaincar.SortByNewest:
			if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
				return matches[i].PricePerDay.Amount < matches[j].PricePerDay.Amount
			}
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		default:
			if matches[i].PricePerDay.Amount == matches[j].PricePerDay.Amount {
				return matches[i].CreatedAt.After(matches[j].CreatedAt)
			}
			return matches[i].PricePerDay.Amount < matches[j].PricePerDay.Amount
		}
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	page := make([]*domaincar.Car, 0, end-start)
	for _, c := range matches[start:end] {
		page = append(page, cloneCar(c))
	}
	return domaincar.SearchResult{Items: page, Total: total}, nil
}

func cloneCar(c *domaincar.Car) *domaincar.Car {
	if c == nil {
		return nil
	}
	copied := *c
	copied.Recorder = events.Recorder{}
	return &copied
}

// BookingRepository stores bookings in memory. InsertIfFree serializes
// writers per car so two overlapping creates cannot both land.
type BookingRepository struct {
	mu       sync.RWMutex
	items    map[domainbooking.ID]*domainbooking.Booking
	carLocks sync.Map // domaincar.ID -> *sync.Mutex
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.ID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneBooking(b)
	stored.Version = b.Version + 1
	b.Version = stored.Version
	r.items[b.ID] = stored
	return nil
}

func (r *BookingRepository) InsertIfFree(ctx context.Context, b *domainbooking.Booking) error {
	lock := r.carLock(b.CarID)
	lock.Lock()
	defer lock.Unlock()

	conflicts, err := r.FindOverlapping(ctx, b.CarID, b.Slot)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		slots := make([]timeslot.Slot, 0, len(conflicts))
		for _, c := range conflicts {
			slots = append(slots, c.Slot)
		}
		return &domainbooking.ConflictError{CarID: b.CarID, Conflicts: slots}
	}
	return r.Save(ctx, b)
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, carID domaincar.ID, slot timeslot.Slot) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.CarID != carID || !b.Status.Active() {
			continue
		}
		if b.Slot.Overlaps(slot) {
			matches = append(matches, cloneBooking(b))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Slot.PickupAt.Before(matches[j].Slot.PickupAt)
	})
	return matches, nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainbooking.Booking, error) {
	return r.list(func(b *domainbooking.Booking) bool { return b.RenterID == renterID })
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID domaincar.OwnerID) ([]*domainbooking.Booking, error) {
	return r.list(func(b *domainbooking.Booking) bool { return b.OwnerID == ownerID })
}

func (r *BookingRepository) list(match func(*domainbooking.Booking) bool) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if match(b) {
			matches = append(matches, cloneBooking(b))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *BookingRepository) carLock(id domaincar.ID) *sync.Mutex {
	if lock, ok := r.carLocks.Load(id); ok {
		return lock.(*sync.Mutex)
	}
	lock, _ := r.carLocks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	copied := *b
	copied.Recorder = events.Recorder{}
	if b.Completion != nil {
		completion := *b.Completion
		copied.Completion = &completion
	}
	return &copied
}

// LedgerRepository appends settlement lines in memory.
type LedgerRepository struct {
	mu    sync.RWMutex
	items []domainledger.Transaction
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{}
}

func (r *LedgerRepository) Append(ctx context.Context, tx domainledger.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, tx)
	return nil
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID string) ([]domainledger.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]domainledger.Transaction, 0)
	for _, tx := range r.items {
		if tx.RenterID == userID || string(tx.OwnerID) == userID {
			matches = append(matches, tx)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

var (
	_ domaincar.Repository     = (*CarRepository)(nil)
	_ domainbooking.Repository = (*BookingRepository)(nil)
	_ domainledger.Repository  = (*LedgerRepository)(nil)
)
