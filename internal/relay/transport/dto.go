// Package transport holds the request and response shapes of the AI relay
// endpoints.
package transport

import (
	"encoding/json"
	"strconv"
)

// Urgency is the three-level severity attached to a disease recommendation.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// PredictDiseaseRequest is the body of POST /api/predict-disease.
type PredictDiseaseRequest struct {
	Symptoms []string `json:"symptoms" validate:"required,min=1"`
}

// DiseaseRecommendation is the normalized prediction returned to the caller.
type DiseaseRecommendation struct {
	Disease     string   `json:"disease" validate:"required"`
	Confidence  float64  `json:"confidence" validate:"gte=0,lte=1"`
	Suggestions []string `json:"suggestions" validate:"required"`
	Medicines   []string `json:"medicines" validate:"required"`
	Precautions []string `json:"precautions" validate:"required"`
	Urgency     Urgency  `json:"urgency" validate:"required,oneof=LOW MEDIUM HIGH"`
}

// LocationInput is the optional coordinate pair of a hospital search. Either
// coordinate missing means the location is ignored.
type LocationInput struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// HospitalSearchRequest is the body of POST /api/hospitals. No field is
// required. Query accepts a JSON string or a bare number such as a postal code.
type HospitalSearchRequest struct {
	Query    any            `json:"query"`
	Location *LocationInput `json:"location"`
}

// LatLng is a resolved coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Coordinates returns the location when both coordinates were supplied.
func (r HospitalSearchRequest) Coordinates() *LatLng {
	if r.Location == nil || r.Location.Lat == nil || r.Location.Lng == nil {
		return nil
	}
	return &LatLng{Lat: *r.Location.Lat, Lng: *r.Location.Lng}
}

// QueryText renders the query as search text. Arrays, objects and null count
// as absent.
func (r HospitalSearchRequest) QueryText() string {
	switch v := r.Query.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Hospital is one venue found through maps grounding.
type Hospital struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	URI     string `json:"uri,omitempty"`
}
