package main

import (
	"fmt"

	"github.com/MKhiriev/go-event-companion/internal/adapter"
	"github.com/MKhiriev/go-event-companion/internal/client"
	"github.com/MKhiriev/go-event-companion/internal/config"
	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/internal/service"
	"github.com/MKhiriev/go-event-companion/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("event-companion")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	primary := adapter.NewHTTPRemoteSource(adapter.HTTPSourceConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.RequestTimeout,
	}, log)
	secondary := adapter.NewHTTPRemoteSource(adapter.HTTPSourceConfig{
		BaseURL: cfg.Remote.SecondaryBaseURL,
		Timeout: cfg.Remote.RequestTimeout,
	}, log)

	localStorage, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	services := service.NewClientServices(localStorage, primary, secondary, cfg, log)

	app, err := client.NewApp(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
