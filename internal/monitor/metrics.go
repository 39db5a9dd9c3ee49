package monitor

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// metrics returns GET /metrics in the Prometheus text exposition format.
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	st := s.stats()
	families := []*dto.MetricFamily{
		counterFamily("tensile_link_frames_decoded_total",
			"Frames decoded from the serial link.", float64(st.FramesDecoded)),
		counterFamily("tensile_link_frames_dropped_total",
			"Malformed frames dropped by the decoder.", float64(st.FramesDropped)),
		counterFamily("tensile_link_samples_stored_total",
			"DATA frames appended to the run store.", float64(st.SamplesStored)),
		counterFamily("tensile_link_read_errors_total",
			"Failed serial reads.", float64(st.ReadErrors)),
		gaugeFamily("tensile_run_samples",
			"Samples in the current run.", float64(s.store.Count())),
	}
	if last, ok := s.store.Last(); ok {
		families = append(families,
			gaugeFamily("tensile_force_newtons",
				"Most recent force reading.", last.ForceN),
			gaugeFamily("tensile_displacement_mm",
				"Most recent crosshead displacement.", last.DisplacementMM),
		)
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return
		}
	}
}

func counterFamily(name, help string, value float64) *dto.MetricFamily {
	typ := dto.MetricType_COUNTER
	return &dto.MetricFamily{
		Name:   &name,
		Help:   &help,
		Type:   &typ,
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: &value}}},
	}
}

func gaugeFamily(name, help string, value float64) *dto.MetricFamily {
	typ := dto.MetricType_GAUGE
	return &dto.MetricFamily{
		Name:   &name,
		Help:   &help,
		Type:   &typ,
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: &value}}},
	}
}
