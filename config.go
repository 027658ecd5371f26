package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dnldd/harvest/shared"
	"github.com/joho/godotenv"
)

// Config is the configuration struct for the service.
type Config struct {
	// Symbol represents the collected market, eg. BTCUSDT.
	Symbol string
	// Timeframe is the candle interval token, eg. 1m.
	Timeframe string
	// StartDate is the collection window start date (YYYY-MM-DD).
	StartDate string
	// EndDate is the collection window end date (YYYY-MM-DD), inclusive.
	EndDate string
	// Output is the csv output file path.
	Output string
	// Monthly is the per-month dump mode flag.
	Monthly bool
	// DataDir is the root directory for monthly dump files.
	DataDir string
	// Schedule keeps the process running and dumps new months as they complete.
	Schedule bool
	// DBEndpoint is the optional candle database endpoint.
	DBEndpoint string
	// DBUser is the candle database user.
	DBUser string
	// DBPass is the candle database user pass.
	DBPass string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.Symbol == "" {
		errs = errors.Join(errs, fmt.Errorf("symbol cannot be an empty string"))
	}

	_, err := shared.ParseTimeframe(cfg.Timeframe)
	if err != nil {
		errs = errors.Join(errs, err)
	}

	for _, date := range []string{cfg.StartDate, cfg.EndDate} {
		_, err := time.ParseInLocation(shared.DateOnlyLayout, date, time.UTC)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("dates must be of the form YYYY-MM-DD, got %q", date))
		}
	}

	if cfg.Monthly && cfg.DataDir == "" {
		errs = errors.Join(errs, fmt.Errorf("data directory cannot be an empty string in monthly mode"))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(strings.ToUpper(name))
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("symbol", &cfg.Symbol, "the collected market symbol")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("timeframe", &cfg.Timeframe, "the candle interval")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("startdate", &cfg.StartDate, "the collection window start date")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("enddate", &cfg.EndDate, "the collection window end date")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("output", &cfg.Output, "the csv output file path")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("monthly", &cfg.Monthly, "the per-month dump mode flag")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("datadir", &cfg.DataDir, "the monthly dump directory")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("schedule", &cfg.Schedule, "keep running and dump new months as they complete")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbendpoint", &cfg.DBEndpoint, "the candle database endpoint")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbuser", &cfg.DBUser, "the candle database user")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbpass", &cfg.DBPass, "the candle database user pass")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	// Apply defaults for unset collection parameters.
	if cfg.Symbol == "" {
		cfg.Symbol = "BTCUSDT"
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = "1m"
	}
	if cfg.StartDate == "" {
		cfg.StartDate = "2017-01-01"
	}
	if cfg.EndDate == "" {
		cfg.EndDate = time.Now().UTC().Format(shared.DateOnlyLayout)
	}
	if cfg.Monthly && cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	return cfg.Validate()
}
