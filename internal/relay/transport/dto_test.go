package transport

import (
	"encoding/json"
	"testing"
)

func TestQueryTextRendersScalars(t *testing.T) {
	cases := map[string]string{
		`{"query":"Pune"}`:   "Pune",
		`{"query":411001}`:   "411001",
		`{"query":12.5}`:     "12.5",
		`{"query":true}`:     "true",
		`{"query":null}`:     "",
		`{"query":["Pune"]}`: "",
		`{"query":{"a":1}}`:  "",
		`{"location":{}}`:    "",
	}

	for body, want := range cases {
		var req HospitalSearchRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("%s: unmarshal: %v", body, err)
		}
		if got := req.QueryText(); got != want {
			t.Fatalf("%s: expected %q, got %q", body, want, got)
		}
	}
}

func TestCoordinatesRequiresBothValues(t *testing.T) {
	lat := 18.52
	if got := (HospitalSearchRequest{Location: &LocationInput{Lat: &lat}}).Coordinates(); got != nil {
		t.Fatalf("expected nil coordinates, got %+v", got)
	}
	lng := 73.85
	got := (HospitalSearchRequest{Location: &LocationInput{Lat: &lat, Lng: &lng}}).Coordinates()
	if got == nil || got.Lat != lat || got.Lng != lng {
		t.Fatalf("unexpected coordinates: %+v", got)
	}
}
