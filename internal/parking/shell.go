package parking

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rohitnohwar/parking-lot/internal/logging"
)

const commandHelp = `Commands:
  create_parking_lot <slots>
  park <registration_number> <colour>
  leave <slot_number>
  status
  registration_numbers_for_cars_with_colour <colour>
  slot_numbers_for_cars_with_colour <colour>
  slot_number_for_registration_number <registration_number>
  help
  exit`

var (
	errorText  = color.New(color.FgRed).SprintFunc()
	headerText = color.New(color.Bold).SprintFunc()
)

// Shell reads parking lot commands line by line and writes their results.
type Shell struct {
	parkingLot *InstrumentedParkingLot
	scanner    *bufio.Scanner
	out        io.Writer
	telemetry  *TelemetryProvider
	sessionID  string
}

func NewShell(in io.Reader, out io.Writer, telemetry *TelemetryProvider) *Shell {
	return &Shell{
		scanner:   bufio.NewScanner(in),
		out:       out,
		telemetry: telemetry,
		sessionID: uuid.New().String(),
	}
}

// ParkingLot returns the lot created by the session, or nil.
func (s *Shell) ParkingLot() *ParkingLot {
	if s.parkingLot == nil {
		return nil
	}
	return s.parkingLot.ParkingLot
}

// Run processes commands until the input ends, an exit command is read or
// ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run",
		trace.WithAttributes(attribute.String("session.id", s.sessionID)))
	defer span.End()

	logging.Info(ctx).Str("session", s.sessionID).Msg("shell session started")
	defer func() {
		s.closeLot(ctx)
		logging.Info(ctx).Str("session", s.sessionID).Msg("shell session ended")
	}()

	for s.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))
		exit := s.processCommand(cmdCtx, input)
		cmdSpan.End()

		if exit {
			return nil
		}
	}

	return errors.Wrap(s.scanner.Err(), "read commands")
}

func (s *Shell) closeLot(ctx context.Context) {
	if s.parkingLot == nil {
		return
	}
	if err := s.parkingLot.Close(); err != nil {
		logging.Warn(ctx).Err(err).Msg("close parking lot")
	}
}

func (s *Shell) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	command := parts[0]
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_parking_lot":
		s.handleCreateParkingLot(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "leave":
		s.handleLeave(ctx, parts)
	case "status":
		s.handleStatus(ctx, parts)
	case "registration_numbers_for_cars_with_colour":
		s.handleRegistrationNumbersForColour(ctx, parts)
	case "slot_numbers_for_cars_with_colour":
		s.handleSlotNumbersForColour(ctx, parts)
	case "slot_number_for_registration_number":
		s.handleSlotNumberForRegistrationNumber(ctx, parts)
	case "help":
		s.println(commandHelp)
	case "exit":
		return true
	default:
		trace.SpanFromContext(ctx).AddEvent("unknown_command")
		s.println(errorText(fmt.Sprintf("Unknown command: %s", command)))
	}
	return false
}

// ready reports whether the command may run, printing the reason when not.
func (s *Shell) ready(ctx context.Context, parts []string, usage string) bool {
	if s.parkingLot == nil {
		trace.SpanFromContext(ctx).AddEvent("parking_lot_not_created")
		s.println(errorText("Parking lot not created"))
		return false
	}
	if len(parts) != strings.Count(usage, " ")+1 {
		trace.SpanFromContext(ctx).AddEvent("invalid_arguments")
		s.println(errorText("Usage: " + usage))
		return false
	}
	return true
}

func (s *Shell) handleCreateParkingLot(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println(errorText("Usage: create_parking_lot <slots>"))
		return
	}

	capacity, err := strconv.Atoi(parts[1])
	if err != nil {
		s.println(errorText("Invalid capacity"))
		return
	}

	parkingLot, err := NewInstrumentedParkingLot(capacity, s.telemetry)
	if errors.Is(err, ErrInvalidConfiguration) {
		s.println(errorText("Invalid capacity"))
		return
	}
	if err != nil {
		logging.Error(ctx).Err(err).Msg("create parking lot")
		s.println(errorText(fmt.Sprintf("Error creating parking lot: %s", err)))
		return
	}

	s.closeLot(ctx)
	s.parkingLot = parkingLot

	logging.Info(ctx).Int("slots", capacity).Msg("parking lot created")
	s.printf("Created a parking lot with %d slots\n", capacity)
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if !s.ready(ctx, parts, "park <registration_number> <colour>") {
		return
	}

	ticket, err := s.parkingLot.Reserve(ctx, NewCar(parts[1], parts[2]))
	switch {
	case errors.Is(err, ErrLotFull):
		s.println(errorText("Sorry, parking lot is full"))
	case errors.Is(err, ErrAlreadyParked):
		s.println(errorText(fmt.Sprintf("Car %s is already parked", parts[1])))
	case err != nil:
		s.println(errorText(fmt.Sprintf("Error: %s", err)))
	default:
		s.printf("Allocated slot number: %d\n", ticket.SlotNumber)
	}
}

func (s *Shell) handleLeave(ctx context.Context, parts []string) {
	if !s.ready(ctx, parts, "leave <slot_number>") {
		return
	}

	slotNumber, err := strconv.Atoi(parts[1])
	if err != nil {
		s.println(errorText("Invalid slot number"))
		return
	}

	if _, err := s.parkingLot.Release(ctx, slotNumber); err != nil {
		s.println(errorText(fmt.Sprintf("Slot number %d not found", slotNumber)))
		return
	}

	s.printf("Slot number %d is free\n", slotNumber)
}

func (s *Shell) handleStatus(ctx context.Context, parts []string) {
	if !s.ready(ctx, parts, "status") {
		return
	}

	occupied := s.parkingLot.Status(ctx)
	if len(occupied) == 0 {
		s.println("Parking lot is empty")
		return
	}

	s.println(headerText("Slot No.\tRegistration No\tColour"))
	for _, slot := range occupied {
		s.printf("%d\t\t%s\t%s\n", slot.Number, slot.Car.RegistrationNumber, slot.Car.Color)
	}
}

func (s *Shell) handleRegistrationNumbersForColour(ctx context.Context, parts []string) {
	if !s.ready(ctx, parts, "registration_numbers_for_cars_with_colour <colour>") {
		return
	}

	registrations := s.parkingLot.RegistrationNumbersByColor(ctx, parts[1])
	if len(registrations) == 0 {
		s.println("Not found")
		return
	}
	s.println(strings.Join(registrations, ", "))
}

func (s *Shell) handleSlotNumbersForColour(ctx context.Context, parts []string) {
	if !s.ready(ctx, parts, "slot_numbers_for_cars_with_colour <colour>") {
		return
	}

	slotNumbers := s.parkingLot.SlotNumbersByColor(ctx, parts[1])
	if len(slotNumbers) == 0 {
		s.println("Not found")
		return
	}

	formatted := make([]string, len(slotNumbers))
	for i, n := range slotNumbers {
		formatted[i] = strconv.Itoa(n)
	}
	s.println(strings.Join(formatted, ", "))
}

func (s *Shell) handleSlotNumberForRegistrationNumber(ctx context.Context, parts []string) {
	if !s.ready(ctx, parts, "slot_number_for_registration_number <registration_number>") {
		return
	}

	slotNumber, found := s.parkingLot.SlotNumberByRegistration(ctx, parts[1])
	if !found {
		s.println("Not found")
		return
	}
	s.printf("%d\n", slotNumber)
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
