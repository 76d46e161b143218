package parking

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LotCollector exposes slot counts of a ParkingLot as Prometheus gauges.
type LotCollector struct {
	lot *ParkingLot

	total     *prometheus.Desc
	occupied  *prometheus.Desc
	available *prometheus.Desc
	full      *prometheus.Desc
}

func NewLotCollector(lot *ParkingLot) *LotCollector {
	return &LotCollector{
		lot: lot,
		total: prometheus.NewDesc("parking_lot_slots_total",
			"Total number of parking slots.", nil, nil),
		occupied: prometheus.NewDesc("parking_lot_slots_occupied",
			"Number of occupied parking slots.", nil, nil),
		available: prometheus.NewDesc("parking_lot_slots_available",
			"Number of available parking slots.", nil, nil),
		full: prometheus.NewDesc("parking_lot_full",
			"1 when no slot is available.", nil, nil),
	}
}

func (c *LotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.occupied
	ch <- c.available
	ch <- c.full
}

func (c *LotCollector) Collect(ch chan<- prometheus.Metric) {
	full := 0.0
	if c.lot.IsFull() {
		full = 1
	}

	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(c.lot.NumSlots()))
	ch <- prometheus.MustNewConstMetric(c.occupied, prometheus.GaugeValue, float64(c.lot.OccupiedCount()))
	ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, float64(c.lot.AvailableCount()))
	ch <- prometheus.MustNewConstMetric(c.full, prometheus.GaugeValue, full)
}

// WriteMetricsTextfile writes the lot's gauges to path in the Prometheus
// text format, for pickup by a node exporter textfile collector.
func WriteMetricsTextfile(path string, lot *ParkingLot) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewLotCollector(lot)); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
