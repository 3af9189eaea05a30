package service

import (
	"strings"

	"medportal_backend/internal/relay/transport"

	"google.golang.org/genai"
)

type sourceKind int

const (
	sourceOther sourceKind = iota
	sourceMapsVenue
)

// groundingSource is a grounding chunk decoded into one of two variants:
// a maps venue (title and uri both optional) or anything else.
type groundingSource struct {
	kind  sourceKind
	title string
	uri   string
}

func decodeChunk(chunk *genai.GroundingChunk) groundingSource {
	if chunk == nil || chunk.Maps == nil {
		return groundingSource{kind: sourceOther}
	}
	return groundingSource{
		kind:  sourceMapsVenue,
		title: chunk.Maps.Title,
		uri:   chunk.Maps.URI,
	}
}

func (g groundingSource) hospital() transport.Hospital {
	name := strings.TrimSpace(g.title)
	if name == "" {
		name = fallbackHospitalName
	}
	return transport.Hospital{
		Name:    name,
		Address: g.uri,
		URI:     g.uri,
	}
}

// hospitalsFromGrounding keeps maps venues in provider order. The result is
// never nil so it encodes as [] rather than null.
func hospitalsFromGrounding(meta *genai.GroundingMetadata) []transport.Hospital {
	hospitals := make([]transport.Hospital, 0)
	if meta == nil {
		return hospitals
	}
	for _, chunk := range meta.GroundingChunks {
		source := decodeChunk(chunk)
		if source.kind != sourceMapsVenue {
			continue
		}
		hospitals = append(hospitals, source.hospital())
	}
	return hospitals
}
