package parking

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rohitnohwar/parking-lot/internal/logging"
)

type InstrumentedParkingLot struct {
	*ParkingLot
	telemetry *TelemetryProvider

	// Metrics
	parkingOperations metric.Int64Counter
	leavingOperations metric.Int64Counter
	operationDuration metric.Float64Histogram
	registration      metric.Registration
}

func NewInstrumentedParkingLot(numSlots int, telemetry *TelemetryProvider) (*InstrumentedParkingLot, error) {
	baseParkingLot, err := NewParkingLot(numSlots)
	if err != nil {
		return nil, err
	}

	meter := telemetry.Meter()

	parkingOperations, err := meter.Int64Counter("parking_operations_total",
		metric.WithDescription("Total number of parking operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	leavingOperations, err := meter.Int64Counter("leaving_operations_total",
		metric.WithDescription("Total number of leaving operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64ObservableGauge("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64ObservableGauge("parking_lot_total_slots",
		metric.WithDescription("Total number of parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(occupancyGauge, int64(baseParkingLot.OccupiedCount()))
		o.ObserveInt64(totalSlotsGauge, int64(baseParkingLot.NumSlots()))
		return nil
	}, occupancyGauge, totalSlotsGauge)
	if err != nil {
		return nil, err
	}

	return &InstrumentedParkingLot{
		ParkingLot:        baseParkingLot,
		telemetry:         telemetry,
		parkingOperations: parkingOperations,
		leavingOperations: leavingOperations,
		operationDuration: operationDuration,
		registration:      registration,
	}, nil
}

// Close detaches the lot's gauges from the meter.
func (ipl *InstrumentedParkingLot) Close() error {
	return ipl.registration.Unregister()
}

func (ipl *InstrumentedParkingLot) Reserve(ctx context.Context, car *Car) (Ticket, error) {
	attrs := []attribute.KeyValue{}
	if car != nil {
		attrs = append(attrs,
			attribute.String("vehicle.registration_number", car.RegistrationNumber),
			attribute.String("vehicle.color", car.Color),
		)
	}

	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.reserve", trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	span.AddEvent("finding_available_slot")

	ticket, err := ipl.ParkingLot.Reserve(car)

	labels := []attribute.KeyValue{attribute.String("operation", "reserve")}
	if car != nil {
		labels = append(labels, attribute.String("vehicle_color", car.Color))
	}

	if err != nil {
		recordFailure(span, err)
		labels = append(labels, attribute.String("status", outcome(err)))
		logging.Warn(ctx).Err(err).Msg("reservation rejected")
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(attribute.Int("allocated_slot_number", ticket.SlotNumber))
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.Int("slot_number", ticket.SlotNumber),
		))
		logging.Debug(ctx).
			Int("slot", ticket.SlotNumber).
			Str("registration", ticket.RegistrationNumber).
			Msg("slot reserved")
	}

	ipl.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return ticket, err
}

func (ipl *InstrumentedParkingLot) Release(ctx context.Context, slotNumber int) (ParkingSlot, error) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot.release",
		trace.WithAttributes(
			attribute.Int("slot_number", slotNumber),
		))
	defer span.End()

	start := time.Now()

	// Look at the slot before it is cleared so the span can name the car.
	if before, err := ipl.ParkingLot.Slot(slotNumber); err == nil && before.Car != nil {
		span.SetAttributes(
			attribute.String("vehicle.registration_number", before.Car.RegistrationNumber),
			attribute.String("vehicle.color", before.Car.Color),
		)
	}

	span.AddEvent("releasing_slot")

	slot, err := ipl.ParkingLot.Release(slotNumber)

	labels := []attribute.KeyValue{attribute.String("operation", "release")}

	if err != nil {
		recordFailure(span, err)
		labels = append(labels, attribute.String("status", outcome(err)))
		logging.Warn(ctx).Err(err).Int("slot", slotNumber).Msg("release rejected")
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.AddEvent("slot_released")
		logging.Debug(ctx).Int("slot", slotNumber).Msg("slot released")
	}

	ipl.leavingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return slot, err
}

func (ipl *InstrumentedParkingLot) Status(ctx context.Context) []ParkingSlot {
	var occupied []ParkingSlot
	ipl.query(ctx, "status", nil, func(span trace.Span) {
		occupied = ipl.ParkingLot.Status()
		span.SetAttributes(
			attribute.Int("occupied_slots_count", len(occupied)),
			attribute.Int("total_capacity", ipl.NumSlots()),
		)
	})
	return occupied
}

func (ipl *InstrumentedParkingLot) RegistrationNumbersByColor(ctx context.Context, color string) []string {
	var registrations []string
	ipl.query(ctx, "registrations_by_color", []attribute.KeyValue{attribute.String("vehicle.color", color)}, func(span trace.Span) {
		registrations = ipl.ParkingLot.RegistrationNumbersByColor(color)
		span.SetAttributes(attribute.Int("match_count", len(registrations)))
	})
	return registrations
}

func (ipl *InstrumentedParkingLot) SlotNumbersByColor(ctx context.Context, color string) []int {
	var slotNumbers []int
	ipl.query(ctx, "slots_by_color", []attribute.KeyValue{attribute.String("vehicle.color", color)}, func(span trace.Span) {
		slotNumbers = ipl.ParkingLot.SlotNumbersByColor(color)
		span.SetAttributes(attribute.Int("match_count", len(slotNumbers)))
	})
	return slotNumbers
}

func (ipl *InstrumentedParkingLot) SlotNumberByRegistration(ctx context.Context, registrationNumber string) (int, bool) {
	var (
		slotNumber int
		found      bool
	)
	attrs := []attribute.KeyValue{attribute.String("vehicle.registration_number", registrationNumber)}
	ipl.query(ctx, "slot_by_registration", attrs, func(span trace.Span) {
		slotNumber, found = ipl.ParkingLot.SlotNumberByRegistration(registrationNumber)
		if !found {
			span.AddEvent("vehicle_not_found")
			return
		}
		span.AddEvent("vehicle_found", trace.WithAttributes(
			attribute.Int("slot_number", slotNumber),
		))
	})
	return slotNumber, found
}

func (ipl *InstrumentedParkingLot) query(ctx context.Context, name string, attrs []attribute.KeyValue, run func(trace.Span)) {
	ctx, span := ipl.telemetry.Tracer().Start(ctx, "parking_lot."+name, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	run(span)

	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", name),
		attribute.String("status", "success"),
	))
}

func recordFailure(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrLotFull):
		return "full"
	case errors.Is(err, ErrAlreadyParked):
		return "already_parked"
	case errors.Is(err, ErrSlotNotFound):
		return "not_found"
	default:
		return "failed"
	}
}
