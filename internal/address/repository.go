package address

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	ErrNotFound       = errors.New("address not found")
	ErrInvalidAddress = errors.New("addressDesc or addressName required")
)

type Repository interface {
	GetAddresses(ctx context.Context, userID string) ([]Address, error)
	GetAddress(ctx context.Context, userID string, addressID int64) (Address, error)
	AddAddress(ctx context.Context, a Address) (Address, error)
	UpdateAddress(ctx context.Context, a Address) (Address, error)
	DeleteAddress(ctx context.Context, userID string, addressID int64) error
}

// InMemoryRepository keeps addresses per user. Ids are unique across users.
type InMemoryRepository struct {
	mu     sync.Mutex
	data   map[string][]Address
	nextID int64
}

func NewInMemoryRepository(seed map[string][]Address) *InMemoryRepository {
	r := &InMemoryRepository{data: make(map[string][]Address, len(seed))}
	for userID, addrs := range seed {
		r.data[userID] = slices.Clone(addrs)
		for _, a := range addrs {
			r.nextID = max(r.nextID, a.AddressID)
		}
	}
	return r
}

func (r *InMemoryRepository) GetAddresses(_ context.Context, userID string) ([]Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.data[userID])
	if out == nil {
		out = []Address{}
	}
	return out, nil
}

func (r *InMemoryRepository) GetAddress(_ context.Context, userID string, addressID int64) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.data[userID] {
		if a.AddressID == addressID {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) AddAddress(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.AddressID = r.nextID
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	r.data[a.UserID] = append(r.data[a.UserID], a)
	return a, nil
}

func (r *InMemoryRepository) UpdateAddress(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.data[a.UserID]
	for i := range addrs {
		if addrs[i].AddressID == a.AddressID {
			addrs[i].AddressDesc = a.AddressDesc
			addrs[i].Phone = a.Phone
			addrs[i].AddressName = a.AddressName
			addrs[i].UpdatedAt = time.Now().UTC()
			return addrs[i], nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) DeleteAddress(_ context.Context, userID string, addressID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.data[userID]
	for i, a := range addrs {
		if a.AddressID == addressID {
			r.data[userID] = slices.Delete(addrs, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}
