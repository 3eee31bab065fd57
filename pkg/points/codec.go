package points

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Codec errors. Both are returned wrapped; match with errors.Is.
var (
	// ErrMalformedPoint is returned when a point is not a two-element array.
	ErrMalformedPoint = errors.New("points: malformed point")

	// ErrInvalidCoordinate is returned when a coordinate is not a number
	// representable as float64. Values are rejected, never truncated.
	ErrInvalidCoordinate = errors.New("points: invalid coordinate")
)

// Payload is the wire form of one batch: {"points":[[x,y],...]}.
//
// Every coordinate is written as the shortest decimal text that parses back
// to the identical float64, so values of any magnitude round-trip exactly.
// NaN and the infinities, which JSON numbers cannot carry, travel as the
// strings "NaN", "+Inf" and "-Inf".
type Payload struct {
	Points Batch `json:"points"`
}

// Ack is the renderer's reply to a delivered batch.
type Ack struct {
	Accepted int `json:"accepted"`
}

// EncodePayload serializes batch into its wire form.
func EncodePayload(batch Batch) ([]byte, error) {
	if batch == nil {
		batch = Batch{}
	}
	return json.Marshal(Payload{Points: batch})
}

// DecodePayload reads one wire payload from r.
func DecodePayload(r io.Reader) (Batch, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return p.Points, nil
}

// MarshalJSON encodes the point as a two-element array.
func (p Point) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 50)
	buf = append(buf, '[')
	buf = appendCoord(buf, p.X)
	buf = append(buf, ',')
	buf = appendCoord(buf, p.Y)
	buf = append(buf, ']')
	return buf, nil
}

// UnmarshalJSON decodes a two-element array into the point.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: want 2 coordinates, got %d", ErrMalformedPoint, len(raw))
	}

	x, err := parseCoord(raw[0])
	if err != nil {
		return err
	}
	y, err := parseCoord(raw[1])
	if err != nil {
		return err
	}

	p.X, p.Y = x, y
	return nil
}

func appendCoord(dst []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, `"NaN"`...)
	case math.IsInf(v, 1):
		return append(dst, `"+Inf"`...)
	case math.IsInf(v, -1):
		return append(dst, `"-Inf"`...)
	}
	return strconv.AppendFloat(dst, v, 'g', -1, 64)
}

func formatCoord(v float64) string {
	return string(bytes.Trim(appendCoord(nil, v), `"`))
}

func parseCoord(raw json.RawMessage) (float64, error) {
	text := bytes.TrimSpace(raw)
	if len(text) > 0 && text[0] == '"' {
		var s string
		if err := json.Unmarshal(text, &s); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
		}
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "+Inf", "Inf":
			return math.Inf(1), nil
		case "-Inf":
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}

	v, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		// ParseFloat reports out-of-range input as ErrRange with ±Inf;
		// that would be a silent change of value, so it is rejected too.
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidCoordinate, text, err)
	}
	return v, nil
}
