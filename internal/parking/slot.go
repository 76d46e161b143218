package parking

type ParkingSlot struct {
	Number int
	Floor  int
	Car    *Car
}

func NewParkingSlot(number, floor int) *ParkingSlot {
	return &ParkingSlot{
		Number: number,
		Floor:  floor,
	}
}

func (s *ParkingSlot) IsOccupied() bool {
	return s.Car != nil
}

func (s *ParkingSlot) Reserve(car *Car) {
	s.Car = car
}

// Clear empties the slot and returns the car that was parked there, if any.
func (s *ParkingSlot) Clear() *Car {
	car := s.Car
	s.Car = nil
	return car
}

// snapshot returns a copy that shares no memory with the slot.
func (s *ParkingSlot) snapshot() ParkingSlot {
	cp := ParkingSlot{Number: s.Number, Floor: s.Floor}
	if s.Car != nil {
		car := *s.Car
		cp.Car = &car
	}
	return cp
}
