package servicepoint

// slot is the single owner of a value behind a public handle. Moving the value
// into another structure or destroying it empties the slot for good, after
// which every access fails with a ConsumedError naming the handle type.
//
// Slots are not locked: a handle must not be used from two goroutines at once.
type slot[T any] struct {
	v *T
}

func (s *slot[T]) get(typ string) (*T, error) {
	if s == nil || s.v == nil {
		return nil, &ConsumedError{Type: typ}
	}
	return s.v, nil
}

// take moves the value out of the slot.
func (s *slot[T]) take(typ string) (*T, error) {
	v, err := s.get(typ)
	if err != nil {
		return nil, err
	}
	s.v = nil
	return v, nil
}

func (s *slot[T]) valid() bool {
	return s != nil && s.v != nil
}
