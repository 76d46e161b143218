package parking

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTelemetry(t *testing.T) (*TelemetryProvider, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	tp := newTelemetryProvider(
		sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)),
		sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		"parking-lot-test",
	)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return tp, recorder, reader
}

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return nil
}

func spanNames(recorder *tracetest.SpanRecorder) []string {
	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func TestInstrumentedParkingLotIntegration(t *testing.T) {
	telemetry, recorder, reader := newTestTelemetry(t)

	ipl, err := NewInstrumentedParkingLot(3, telemetry)
	require.NoError(t, err)
	defer func() { assert.NoError(t, ipl.Close()) }()

	ctx := context.Background()

	ticket, err := ipl.Reserve(ctx, NewCar("KA-01-HH-1234", "White"))
	require.NoError(t, err)
	assert.Equal(t, 1, ticket.SlotNumber)

	assert.Len(t, ipl.Status(ctx), 1)
	assert.Equal(t, []string{"KA-01-HH-1234"}, ipl.RegistrationNumbersByColor(ctx, "White"))
	assert.Equal(t, []int{1}, ipl.SlotNumbersByColor(ctx, "White"))

	slotNumber, found := ipl.SlotNumberByRegistration(ctx, "KA-01-HH-1234")
	assert.True(t, found)
	assert.Equal(t, 1, slotNumber)

	slot, err := ipl.Release(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, slot.Car)
	assert.Empty(t, ipl.Status(ctx))

	assert.Equal(t, []string{
		"parking_lot.reserve",
		"parking_lot.status",
		"parking_lot.registrations_by_color",
		"parking_lot.slots_by_color",
		"parking_lot.slot_by_registration",
		"parking_lot.release",
		"parking_lot.status",
	}, spanNames(recorder))

	release := recorder.Ended()[5]
	assert.Contains(t, release.Attributes(), attribute.String("vehicle.registration_number", "KA-01-HH-1234"))

	gauge, ok := collectMetric(t, reader, "parking_lot_total_slots").(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)
}

func TestInstrumentedReserveFailuresAreRecorded(t *testing.T) {
	telemetry, recorder, reader := newTestTelemetry(t)

	ipl, err := NewInstrumentedParkingLot(1, telemetry)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = ipl.Reserve(ctx, NewCar("KA-01-HH-1234", "White"))
	require.NoError(t, err)

	_, err = ipl.Reserve(ctx, NewCar("KA-01-HH-9999", "Black"))
	assert.True(t, errors.Is(err, ErrLotFull))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	sum, ok := collectMetric(t, reader, "parking_operations_total").(metricdata.Sum[int64])
	require.True(t, ok)

	byStatus := map[string]int64{}
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value("status")
		byStatus[status.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"success": 1, "full": 1}, byStatus)

	occupancy, ok := collectMetric(t, reader, "parking_lot_occupancy").(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, occupancy.DataPoints, 1)
	assert.Equal(t, int64(1), occupancy.DataPoints[0].Value)
}

func TestInstrumentedReleaseOutOfRange(t *testing.T) {
	telemetry, recorder, _ := newTestTelemetry(t)

	ipl, err := NewInstrumentedParkingLot(2, telemetry)
	require.NoError(t, err)

	_, err = ipl.Release(context.Background(), 5)
	assert.True(t, errors.Is(err, ErrSlotNotFound))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestNewInstrumentedParkingLotRejectsBadSize(t *testing.T) {
	telemetry, _, _ := newTestTelemetry(t)

	_, err := NewInstrumentedParkingLot(0, telemetry)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "full", outcome(ErrLotFull))
	assert.Equal(t, "already_parked", outcome(errors.Wrap(ErrAlreadyParked, "x")))
	assert.Equal(t, "not_found", outcome(ErrSlotNotFound))
	assert.Equal(t, "failed", outcome(ErrInvalidInput))
}
