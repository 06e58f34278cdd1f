package export

import (
	"io"

	json "github.com/json-iterator/go"

	"github.com/san-kum/loopsim/internal/dynamo"
)

// Document is the JSON form of a finished run.
type Document struct {
	Params  dynamo.Params      `json:"params"`
	Reason  dynamo.StopReason  `json:"reason"`
	Launch  *dynamo.Launch     `json:"launch,omitempty"`
	Clamped int                `json:"clamped"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Samples []dynamo.Sample    `json:"samples"`
}

func NewDocument(res *dynamo.Result) Document {
	return Document{
		Params:  res.Params,
		Reason:  res.Reason,
		Launch:  res.Launch,
		Clamped: res.Clamped,
		Metrics: res.Metrics,
		Samples: res.Samples,
	}
}

func WriteJSON(w io.Writer, res *dynamo.Result) error {
	if res == nil {
		return ErrEmptyResult
	}
	enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(res))
}

func ReadJSON(r io.Reader) (*dynamo.Result, error) {
	var doc Document
	if err := json.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &dynamo.Result{
		Params:  doc.Params,
		Samples: doc.Samples,
		Launch:  doc.Launch,
		Reason:  doc.Reason,
		Clamped: doc.Clamped,
		Metrics: doc.Metrics,
	}, nil
}
