package service

import (
	"fmt"
	"strconv"
	"strings"

	"medportal_backend/internal/relay/transport"

	"google.golang.org/genai"
)

// hospitalCount is how many venues the search prompt asks for.
const hospitalCount = 5

const fallbackHospitalName = "Hospital"

// recommendationFields lists every field the provider must return.
var recommendationFields = []string{"disease", "confidence", "suggestions", "medicines", "precautions", "urgency"}

func buildPredictionPrompt(symptoms []string) string {
	return fmt.Sprintf(`Based on these symptoms: %s, provide a potential medical analysis.
Include predicted disease, a confidence level between 0 and 1, suggested lifestyle changes, possible over-the-counter medicines (with a disclaimer), precautions, and an urgency classification of LOW, MEDIUM, or HIGH.`,
		strings.Join(symptoms, ", "))
}

// recommendationSchema is the structured-output contract sent with every
// prediction request.
func recommendationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"disease":     {Type: genai.TypeString},
			"confidence":  {Type: genai.TypeNumber},
			"suggestions": stringList(),
			"medicines":   stringList(),
			"precautions": stringList(),
			"urgency":     {Type: genai.TypeString, Description: "LOW, MEDIUM, or HIGH"},
		},
		Required:         recommendationFields,
		PropertyOrdering: recommendationFields,
	}
}

func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

// locationContext picks the location clause. A text query always wins over
// coordinates.
func locationContext(query string, location *transport.LatLng) string {
	switch {
	case query != "":
		return "in or near " + query
	case location != nil:
		return fmt.Sprintf("at latitude %s, longitude %s", formatCoordinate(location.Lat), formatCoordinate(location.Lng))
	default:
		return "near my current location"
	}
}

func buildHospitalPrompt(clause string) string {
	return fmt.Sprintf("Find %d hospitals and medical clinics %s. Provide their names and addresses.", hospitalCount, clause)
}

// hospitalSearchConfig enables maps grounding and, when known, anchors
// retrieval at the caller's coordinates.
func hospitalSearchConfig(location *transport.LatLng) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
	}
	if location != nil {
		cfg.ToolConfig = &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{
					Latitude:  genai.Ptr(location.Lat),
					Longitude: genai.Ptr(location.Lng),
				},
			},
		}
	}
	return cfg
}

// formatCoordinate prints the shortest exact decimal form, e.g. 12.97 not 12.970000.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
