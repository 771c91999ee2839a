package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// payloadSizeHint covers a full payload with room to spare; a single Grow
// keeps encoding at one allocation.
const payloadSizeHint = 512

// EncodePayload renders the record as the fixed-schema JSON document the
// ingestion endpoint expects. Field order and decimal precision are fixed by
// this encoder; consumers must not rely on the order. Non-finite values are
// not special-cased: they would render as invalid JSON and should surface as
// a defect upstream, not be coerced here.
func EncodePayload(record FeatureRecord, deviceID string) []byte {
	var buf bytes.Buffer
	buf.Grow(payloadSizeHint)

	buf.WriteString(`{"device_id":`)
	appendQuoted(&buf, deviceID)
	fmt.Fprintf(&buf, `,"timestamp":%d`, record.TimestampMs)
	fmt.Fprintf(&buf, `,"rms_energy":%.2f`, record.RMSEnergy)
	fmt.Fprintf(&buf, `,"spectral_centroid":%.3f`, record.SpectralCentroid)
	fmt.Fprintf(&buf, `,"spectral_rolloff":%.3f`, record.SpectralRolloff)
	fmt.Fprintf(&buf, `,"zero_crossing_rate":%.3f`, record.ZeroCrossingRate)
	fmt.Fprintf(&buf, `,"compressor_state":%.1f`, stateValue(record.CompressorOn))
	fmt.Fprintf(&buf, `,"anomaly_score":%.3f`, record.AnomalyScore)
	fmt.Fprintf(&buf, `,"temperature_estimate":%.1f`, record.TemperatureEstimateC)
	fmt.Fprintf(&buf, `,"efficiency_score":%.3f`, record.EfficiencyScore)

	buf.WriteString(`,"mfcc":[`)
	for i, c := range record.Coeffs {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%.3f", c)
	}
	buf.WriteString("]}")

	return buf.Bytes()
}

// Helper functions

// json.Marshal cannot fail for a plain string.
func appendQuoted(buf *bytes.Buffer, s string) {
	quoted, _ := json.Marshal(s)
	buf.Write(quoted)
}

func stateValue(on bool) float64 {
	if on {
		return 1.0
	}

	return 0.0
}
