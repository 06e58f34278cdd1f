package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/loopsim/internal/dynamo"
)

var csvHeader = []string{"t", "x", "y", "speed", "normal_force", "phase", "theta", "clamped"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteSamplesCSV writes one row per sample with full float precision.
func WriteSamplesCSV(w io.Writer, samples []dynamo.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatFloat(s.T),
			formatFloat(s.X),
			formatFloat(s.Y),
			formatFloat(s.Speed),
			formatFloat(s.NormalForce),
			s.Phase.String(),
			formatFloat(s.Theta),
			strconv.FormatBool(s.Clamped),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadSamplesCSV(r io.Reader) ([]dynamo.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []dynamo.Sample{}, nil
	}

	samples := make([]dynamo.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		var s dynamo.Sample
		floats := []*float64{&s.T, &s.X, &s.Y, &s.Speed, &s.NormalForce}
		for j, dst := range floats {
			if *dst, err = strconv.ParseFloat(rec[j], 64); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+1, csvHeader[j], err)
			}
		}
		if s.Phase, err = dynamo.ParsePhase(rec[5]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if s.Theta, err = strconv.ParseFloat(rec[6], 64); err != nil {
			return nil, fmt.Errorf("row %d column theta: %w", i+1, err)
		}
		if s.Clamped, err = strconv.ParseBool(rec[7]); err != nil {
			return nil, fmt.Errorf("row %d column clamped: %w", i+1, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}
