package address

import "context"

// Service manages a user's address book.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetAddresses(ctx context.Context, userID string) ([]Address, error) {
	if userID == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetAddresses(ctx, userID)
}

func (s *Service) AddAddress(ctx context.Context, userID, desc, phone, name string) (Address, error) {
	if userID == "" {
		return Address{}, ErrNotFound
	}
	if desc == "" && name == "" {
		return Address{}, ErrInvalidAddress
	}
	return s.repo.AddAddress(ctx, Address{UserID: userID, AddressDesc: desc, Phone: phone, AddressName: name})
}

func (s *Service) UpdateAddress(ctx context.Context, userID string, addressID int64, desc, phone, name string) (Address, error) {
	if userID == "" || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	if desc == "" && name == "" {
		return Address{}, ErrInvalidAddress
	}
	return s.repo.UpdateAddress(ctx, Address{AddressID: addressID, UserID: userID, AddressDesc: desc, Phone: phone, AddressName: name})
}

func (s *Service) DeleteAddress(ctx context.Context, userID string, addressID int64) error {
	if userID == "" || addressID <= 0 {
		return ErrNotFound
	}
	return s.repo.DeleteAddress(ctx, userID, addressID)
}

// Resolve returns the text of one of the user's saved addresses, for use as
// an order's shipping address.
func (s *Service) Resolve(ctx context.Context, userID string, addressID int64) (string, error) {
	if userID == "" || addressID <= 0 {
		return "", ErrNotFound
	}
	a, err := s.repo.GetAddress(ctx, userID, addressID)
	if err != nil {
		return "", err
	}
	return a.Text(), nil
}
