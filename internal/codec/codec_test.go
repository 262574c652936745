package codec

import (
	"errors"
	"fmt"
	"testing"
)

type rec struct {
	ID string `json:"id"`
}

func requireRecs(rs []rec) error {
	for i, r := range rs {
		if r.ID == "" {
			return fmt.Errorf("record %d has empty id", i)
		}
	}
	return nil
}

func TestDecode_AbsentReturnsDefault(t *testing.T) {
	def := []rec{{ID: "seed"}}
	got, err := Decode("", def, requireRecs)
	if err != nil {
		t.Fatalf("absent raw must not error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "seed" {
		t.Fatalf("unexpected default: %+v", got)
	}
}

func TestDecode_ValidPayload(t *testing.T) {
	got, err := Decode(`[{"id":"a"},{"id":"b"}]`, nil, requireRecs)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestDecode_CorruptPayloadSignalsRepair(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"id":"a"}`,       // object where an array is required
		`[{"id":""}]`,      // parses but fails the shape check
		`[{"id":42}]`,      // wrong field type
	}
	for _, raw := range cases {
		got, err := Decode(raw, []rec{}, requireRecs)
		if err == nil {
			t.Fatalf("raw %q: expected decode error", raw)
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("raw %q: expected *DecodeError, got %T", raw, err)
		}
		if len(got) != 0 {
			t.Fatalf("raw %q: corrupt payload must yield the default, got %+v", raw, got)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw, err := Encode([]rec{{ID: "x"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(raw, nil, requireRecs)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "x" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
