package parking

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/emirpasic/gods/sets/treeset"
)

const defaultFloor = 1

// ParkingLot allocates numbered slots on a single floor. Every operation
// is safe for concurrent use.
type ParkingLot struct {
	mu        sync.RWMutex
	numSlots  int
	numFloors int

	// availableSlots holds slot numbers in ascending order so the nearest
	// free slot is always the first element.
	availableSlots      *treeset.Set
	occupiedSlots       map[int]struct{}
	slotIndex           map[int]*ParkingSlot
	parkedRegistrations map[string]struct{}
}

func NewParkingLot(numSlots int) (*ParkingLot, error) {
	if numSlots <= 0 {
		return nil, errors.WithHintf(
			errors.Wrapf(ErrInvalidConfiguration, "number of slots %d", numSlots),
			"the number of slots must be greater than zero",
		)
	}

	pl := &ParkingLot{
		numSlots:            numSlots,
		numFloors:           1,
		availableSlots:      treeset.NewWithIntComparator(),
		occupiedSlots:       make(map[int]struct{}),
		slotIndex:           make(map[int]*ParkingSlot, numSlots),
		parkedRegistrations: make(map[string]struct{}),
	}

	for i := 1; i <= numSlots; i++ {
		pl.slotIndex[i] = NewParkingSlot(i, defaultFloor)
		pl.availableSlots.Add(i)
	}

	return pl, nil
}

// Reserve parks car in the nearest available slot.
func (pl *ParkingLot) Reserve(car *Car) (Ticket, error) {
	if car == nil {
		return Ticket{}, errors.Wrap(ErrInvalidInput, "car must not be nil")
	}

	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.availableSlots.Empty() {
		return Ticket{}, ErrLotFull
	}

	if _, ok := pl.parkedRegistrations[car.RegistrationNumber]; ok {
		return Ticket{}, errors.Wrapf(ErrAlreadyParked, "registration %s", car.RegistrationNumber)
	}

	it := pl.availableSlots.Iterator()
	it.First()
	slotNumber := it.Value().(int)
	slot := pl.slotIndex[slotNumber]

	parked := *car
	slot.Reserve(&parked)
	pl.availableSlots.Remove(slotNumber)
	pl.occupiedSlots[slotNumber] = struct{}{}
	pl.parkedRegistrations[parked.RegistrationNumber] = struct{}{}

	return Ticket{
		SlotNumber:         slotNumber,
		RegistrationNumber: parked.RegistrationNumber,
		Color:              parked.Color,
	}, nil
}

// Release empties the slot and returns it. Releasing a slot that is
// already empty changes nothing.
func (pl *ParkingLot) Release(slotNumber int) (ParkingSlot, error) {
	if !pl.inRange(slotNumber) {
		return ParkingSlot{}, errors.Wrapf(ErrSlotNotFound, "slot %d", slotNumber)
	}

	pl.mu.Lock()
	defer pl.mu.Unlock()

	slot := pl.slotIndex[slotNumber]
	if car := slot.Clear(); car != nil {
		delete(pl.occupiedSlots, slotNumber)
		pl.availableSlots.Add(slotNumber)
		delete(pl.parkedRegistrations, car.RegistrationNumber)
	}

	return slot.snapshot(), nil
}

func (pl *ParkingLot) IsFull() bool {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	return pl.availableSlots.Empty()
}

// RegistrationNumbersByColor returns the registration numbers of parked cars
// whose color matches exactly, ordered by slot number.
func (pl *ParkingLot) RegistrationNumbersByColor(color string) []string {
	var registrations []string
	for _, slot := range pl.occupiedMatching(func(c *Car) bool { return c.Color == color }) {
		registrations = append(registrations, slot.Car.RegistrationNumber)
	}
	return registrations
}

func (pl *ParkingLot) SlotNumbersByColor(color string) []int {
	var slotNumbers []int
	for _, slot := range pl.occupiedMatching(func(c *Car) bool { return c.Color == color }) {
		slotNumbers = append(slotNumbers, slot.Number)
	}
	return slotNumbers
}

func (pl *ParkingLot) SlotNumberByRegistration(registrationNumber string) (int, bool) {
	matches := pl.occupiedMatching(func(c *Car) bool { return c.RegistrationNumber == registrationNumber })
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].Number, true
}

// Slot returns a snapshot of a single slot.
func (pl *ParkingLot) Slot(slotNumber int) (ParkingSlot, error) {
	if !pl.inRange(slotNumber) {
		return ParkingSlot{}, errors.Wrapf(ErrSlotNotFound, "slot %d", slotNumber)
	}

	pl.mu.RLock()
	defer pl.mu.RUnlock()

	return pl.slotIndex[slotNumber].snapshot(), nil
}

// Status returns snapshots of all occupied slots ordered by slot number.
func (pl *ParkingLot) Status() []ParkingSlot {
	return pl.occupiedMatching(func(*Car) bool { return true })
}

func (pl *ParkingLot) AvailableCount() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	return pl.availableSlots.Size()
}

func (pl *ParkingLot) OccupiedCount() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	return len(pl.occupiedSlots)
}

func (pl *ParkingLot) NumSlots() int {
	return pl.numSlots
}

func (pl *ParkingLot) NumFloors() int {
	return pl.numFloors
}

func (pl *ParkingLot) inRange(slotNumber int) bool {
	return slotNumber >= 1 && slotNumber <= pl.numSlots
}

func (pl *ParkingLot) occupiedMatching(match func(*Car) bool) []ParkingSlot {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	var slots []ParkingSlot
	for slotNumber := range pl.occupiedSlots {
		slot := pl.slotIndex[slotNumber]
		if match(slot.Car) {
			slots = append(slots, slot.snapshot())
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Number < slots[j].Number
	})

	return slots
}
