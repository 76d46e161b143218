package parking

type Car struct {
	RegistrationNumber string
	Color              string
}

func NewCar(registrationNumber, color string) *Car {
	return &Car{
		RegistrationNumber: registrationNumber,
		Color:              color,
	}
}

// Ticket is the receipt handed out for a successful reservation.
type Ticket struct {
	SlotNumber         int
	RegistrationNumber string
	Color              string
}
