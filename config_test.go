package main

import (
	"flag"
	"os"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "valid config",
			cfg: Config{
				Symbol:    "BTCUSDT",
				Timeframe: "1m",
				StartDate: "2024-01-01",
				EndDate:   "2024-01-31",
			},
			wantErr: nil,
		},
		{
			name: "missing symbol",
			cfg: Config{
				Symbol:    "",
				Timeframe: "1m",
				StartDate: "2024-01-01",
				EndDate:   "2024-01-31",
			},
			wantErr: []string{"symbol cannot be an empty string"},
		},
		{
			name: "unknown timeframe",
			cfg: Config{
				Symbol:    "BTCUSDT",
				Timeframe: "7m",
				StartDate: "2024-01-01",
				EndDate:   "2024-01-31",
			},
			wantErr: []string{"unknown timeframe"},
		},
		{
			name: "malformed dates",
			cfg: Config{
				Symbol:    "BTCUSDT",
				Timeframe: "1m",
				StartDate: "01/01/2024",
				EndDate:   "",
			},
			wantErr: []string{
				`dates must be of the form YYYY-MM-DD, got "01/01/2024"`,
				`dates must be of the form YYYY-MM-DD, got ""`,
			},
		},
		{
			name: "monthly mode without a data directory",
			cfg: Config{
				Symbol:    "BTCUSDT",
				Timeframe: "1m",
				StartDate: "2024-01-01",
				EndDate:   "2024-01-31",
				Monthly:   true,
			},
			wantErr: []string{"data directory cannot be an empty string in monthly mode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error(s) %v, got none", tt.wantErr)
					return
				}
				for _, want := range tt.wantErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	// Save and restore original os.Args and environment
	origArgs := os.Args
	origEnv := os.Environ()
	defer func() {
		os.Args = origArgs
		for _, kv := range origEnv {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				os.Setenv(parts[0], parts[1])
			}
		}
	}()

	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		expectErr   bool
		expectInErr []string
		expectCfg   Config
	}{
		{
			name:      "defaults only",
			env:       map[string]string{},
			args:      []string{"cmd"},
			expectErr: false,
			expectCfg: Config{
				Symbol:    "BTCUSDT",
				Timeframe: "1m",
				StartDate: "2017-01-01",
			},
		},
		{
			name: "all from env",
			env: map[string]string{
				"SYMBOL":    "ETHUSDT",
				"TIMEFRAME": "1h",
				"STARTDATE": "2023-06-01",
				"ENDDATE":   "2023-06-30",
			},
			args:      []string{"cmd"},
			expectErr: false,
			expectCfg: Config{
				Symbol:    "ETHUSDT",
				Timeframe: "1h",
				StartDate: "2023-06-01",
				EndDate:   "2023-06-30",
			},
		},
		{
			name:      "all from flags",
			env:       map[string]string{},
			args:      []string{"cmd", "-symbol=ETHUSDT", "-timeframe=4h", "-startdate=2023-06-01", "-enddate=2023-06-30"},
			expectErr: false,
			expectCfg: Config{
				Symbol:    "ETHUSDT",
				Timeframe: "4h",
				StartDate: "2023-06-01",
				EndDate:   "2023-06-30",
			},
		},
		{
			name: "monthly mode defaults the data directory",
			env: map[string]string{
				"MONTHLY": "true",
			},
			args:      []string{"cmd"},
			expectErr: false,
			expectCfg: Config{
				Symbol:    "BTCUSDT",
				Timeframe: "1m",
				StartDate: "2017-01-01",
				Monthly:   true,
				DataDir:   "data",
			},
		},
		{
			name:        "unknown timeframe from flag",
			env:         map[string]string{},
			args:        []string{"cmd", "-timeframe=7m"},
			expectErr:   true,
			expectInErr: []string{"unknown timeframe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flags for each test
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			// Set environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Set command-line arguments
			os.Args = tt.args

			var cfg Config
			err := loadConfig(&cfg, "nonexistent.env") // don't load .env file

			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				for _, want := range tt.expectInErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if cfg.Symbol != tt.expectCfg.Symbol {
					t.Errorf("Symbol: got %v, want %v", cfg.Symbol, tt.expectCfg.Symbol)
				}
				if cfg.Timeframe != tt.expectCfg.Timeframe {
					t.Errorf("Timeframe: got %v, want %v", cfg.Timeframe, tt.expectCfg.Timeframe)
				}
				if cfg.StartDate != tt.expectCfg.StartDate {
					t.Errorf("StartDate: got %v, want %v", cfg.StartDate, tt.expectCfg.StartDate)
				}
				if tt.expectCfg.EndDate != "" && cfg.EndDate != tt.expectCfg.EndDate {
					t.Errorf("EndDate: got %v, want %v", cfg.EndDate, tt.expectCfg.EndDate)
				}
				if cfg.Monthly != tt.expectCfg.Monthly {
					t.Errorf("Monthly: got %v, want %v", cfg.Monthly, tt.expectCfg.Monthly)
				}
				if tt.expectCfg.DataDir != "" && cfg.DataDir != tt.expectCfg.DataDir {
					t.Errorf("DataDir: got %v, want %v", cfg.DataDir, tt.expectCfg.DataDir)
				}
			}

			// Clean up env
			for k := range tt.env {
				os.Unsetenv(k)
			}
		})
	}
}
