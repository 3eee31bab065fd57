package points

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestPayload_RoundTripIsExact(t *testing.T) {
	batch := Batch{
		{1, 1},
		{math.MaxFloat64, -math.MaxFloat64},
		{math.SmallestNonzeroFloat64, 1e-300},
		{0.1 + 0.2, 1.0 / 3.0},
		{123456789.123456789, 9007199254740993},
		{math.Copysign(0, -1), 1e21},
		{math.Inf(1), math.Inf(-1)},
	}

	data, err := EncodePayload(batch)
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}

	got, err := DecodePayload(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodePayload(%s): %v", data, err)
	}
	if len(got) != len(batch) {
		t.Fatalf("decoded %d points, want %d", len(got), len(batch))
	}
	for i := range batch {
		if math.Float64bits(got[i].X) != math.Float64bits(batch[i].X) ||
			math.Float64bits(got[i].Y) != math.Float64bits(batch[i].Y) {
			t.Errorf("point %d = %v, want %v (bits differ)", i, got[i], batch[i])
		}
	}
}

func TestPayload_NaNTravelsAsText(t *testing.T) {
	data, err := EncodePayload(Batch{{math.NaN(), 2}})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	if !strings.Contains(string(data), `"NaN"`) {
		t.Fatalf("payload %s does not carry NaN as text", data)
	}

	got, err := DecodePayload(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if !math.IsNaN(got[0].X) || got[0].Y != 2 {
		t.Errorf("decoded %v, want (NaN, 2)", got[0])
	}
}

func TestPayload_WireShape(t *testing.T) {
	data, err := EncodePayload(Batch{{1, 1}, {2, 4.5}})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	if string(data) != `{"points":[[1,1],[2,4.5]]}` {
		t.Errorf("payload = %s", data)
	}

	empty, err := EncodePayload(nil)
	if err != nil {
		t.Fatalf("EncodePayload(nil): %v", err)
	}
	if string(empty) != `{"points":[]}` {
		t.Errorf("empty payload = %s", empty)
	}
}

func TestDecodePayload_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"overflowing magnitude", `{"points":[[1e400,1]]}`, ErrInvalidCoordinate},
		{"negative overflow", `{"points":[[1,-1e999]]}`, ErrInvalidCoordinate},
		{"unknown token", `{"points":[["lots",1]]}`, ErrInvalidCoordinate},
		{"null coordinate", `{"points":[[null,1]]}`, ErrInvalidCoordinate},
		{"one coordinate", `{"points":[[1]]}`, ErrMalformedPoint},
		{"three coordinates", `{"points":[[1,2,3]]}`, ErrMalformedPoint},
		{"object instead of pair", `{"points":[{"x":1,"y":2}]}`, ErrMalformedPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayload(strings.NewReader(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodePayload(%s) error = %v, want %v", tt.body, err, tt.wantErr)
			}
		})
	}
}

func TestDecodePayload_NotJSON(t *testing.T) {
	if _, err := DecodePayload(strings.NewReader("send_data(1,2)")); err == nil {
		t.Error("expected error for non-JSON payload")
	}
}

func TestPoint_String(t *testing.T) {
	if got := (Point{2, 4.5}).String(); got != "(2, 4.5)" {
		t.Errorf("String = %q", got)
	}
	if got := (Point{math.Inf(1), math.NaN()}).String(); got != "(+Inf, NaN)" {
		t.Errorf("String = %q", got)
	}
}
