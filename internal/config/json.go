package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		Environment string `json:"environment"`
		Version     string `json:"version"`
	} `json:"app,omitempty"`

	Remote struct {
		BaseURL          string   `json:"base_url"`
		SecondaryBaseURL string   `json:"secondary_base_url"`
		RequestTimeout   Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Cache struct {
			Namespace  string   `json:"namespace"`
			SizeBudget int64    `json:"size_budget"`
			DefaultTTL Duration `json:"default_ttl"`
		} `json:"cache,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		Interval Duration `json:"interval"`
	} `json:"sync,omitempty"`

	Breaker struct {
		Threshold int      `json:"threshold"`
		Cooldown  Duration `json:"cooldown"`
	} `json:"breaker,omitempty"`

	Debug struct {
		HTTPAddress string `json:"http_address"`
	} `json:"debug,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Environment: jsonCfg.App.Environment,
			Version:     jsonCfg.App.Version,
		},
		Remote: Remote{
			BaseURL:          jsonCfg.Remote.BaseURL,
			SecondaryBaseURL: jsonCfg.Remote.SecondaryBaseURL,
			RequestTimeout:   time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Cache: Cache{
				Namespace:  jsonCfg.Storage.Cache.Namespace,
				SizeBudget: jsonCfg.Storage.Cache.SizeBudget,
				DefaultTTL: time.Duration(jsonCfg.Storage.Cache.DefaultTTL),
			},
		},
		Sync: Sync{Interval: time.Duration(jsonCfg.Sync.Interval)},
		Breaker: Breaker{
			Threshold: jsonCfg.Breaker.Threshold,
			Cooldown:  time.Duration(jsonCfg.Breaker.Cooldown),
		},
		Debug: Debug{
			HTTPAddress: jsonCfg.Debug.HTTPAddress,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
