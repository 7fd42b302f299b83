package main

import (
	"encoding/json"
	"os"
)

// Config overlays command-line flags for the encode subcommand. Fields
// absent from the config file keep their flag values, so a partial config
// file overrides only the flags it names.
//
// Grounded on server/config.go's parseJSONConfig pattern: a JSON file
// opened with os.Open and decoded directly into the flag-populated
// struct, applied after flag parsing.
type Config struct {
	DataShards   int    `json:"datashards"`
	ParityShards int    `json:"parityshards"`
	Compress     bool   `json:"compress"`
	Log          string `json:"log"`
}

func parseJSONConfig(config *Config, path string) error {
	file, err := os.Open(path) // For read access.
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(config)
}
