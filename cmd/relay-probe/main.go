package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"

	"medportal_backend/internal/relay"
	"medportal_backend/internal/relay/transport"
	"medportal_backend/platform/config"
	"medportal_backend/platform/logger"
	"medportal_backend/platform/validator"
)

func main() {
	symptoms := flag.String("symptoms", "", "comma-separated symptoms; runs a disease prediction")
	query := flag.String("query", "", "city, address or postal code; runs a hospital search")
	lat := flag.Float64("lat", 0, "latitude for a hospital search")
	lng := flag.Float64("lng", 0, "longitude for a hospital search")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()
	svc := relay.NewModule(ctx, cfg, validator.New(), log).Service()

	var result any
	switch {
	case *symptoms != "":
		list := make([]string, 0)
		for _, s := range strings.Split(*symptoms, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		log.Info("running disease prediction", "symptoms", len(list))
		result, err = svc.PredictCondition(ctx, list)
	default:
		var location *transport.LatLng
		if isFlagSet("lat") && isFlagSet("lng") {
			location = &transport.LatLng{Lat: *lat, Lng: *lng}
		}
		log.Info("running hospital search", "query", *query, "hasLocation", location != nil)
		result, err = svc.FindHospitals(ctx, *query, location)
	}
	if err != nil {
		log.Error("relay probe failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error("failed to write result", "error", err)
		os.Exit(1)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
