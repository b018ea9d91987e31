package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendSQLite    = "sqlite"
	BackendMemory    = "memory"
)

const (
	defaultPort                = "8080"
	defaultSQLitePath          = "recovery.db"
	defaultFirestoreCollection = "record_store"
	defaultExportDir           = "exports"
	defaultSystemName          = "Recovery Dashboard"
	defaultMonthlyTarget       = "1000000"
	defaultAgentTarget         = "150000"
)

type Config struct {
	ProjectID               string
	Region                  string
	LogLevel                string
	Port                    string
	StoreBackend            string
	SQLitePath              string
	FirestoreCollection     string
	SpreadsheetID           string
	SheetsCredentialsSecret string
	ExportDir               string
	ExportSchedule          string
	AuthDisabled            bool
	MonthlyTarget           decimal.Decimal
	AgentTarget             decimal.Decimal
	SystemName              string

	parseErrs []error
}

func New() *Config {
	cfg := &Config{
		ProjectID:               os.Getenv("PROJECTID"),
		Region:                  os.Getenv("REGION"),
		LogLevel:                os.Getenv("LOGLEVEL"),
		Port:                    getEnv("PORT", defaultPort),
		StoreBackend:            strings.ToLower(getEnv("STOREBACKEND", BackendFirestore)),
		SQLitePath:              getEnv("SQLITEPATH", defaultSQLitePath),
		FirestoreCollection:     getEnv("FIRESTORECOLLECTION", defaultFirestoreCollection),
		SpreadsheetID:           os.Getenv("SPREADSHEETID"),
		SheetsCredentialsSecret: os.Getenv("SHEETSCREDENTIALSSECRET"),
		ExportDir:               getEnv("EXPORTDIR", defaultExportDir),
		ExportSchedule:          os.Getenv("EXPORTSCHEDULE"),
		SystemName:              getEnv("SYSTEMNAME", defaultSystemName),
	}
	cfg.AuthDisabled = cfg.parseBool("AUTHDISABLED")
	cfg.MonthlyTarget = cfg.parseDecimal("MONTHLYTARGET", defaultMonthlyTarget)
	cfg.AgentTarget = cfg.parseDecimal("AGENTTARGET", defaultAgentTarget)
	return cfg
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	problems := append([]error{}, c.parseErrs...)

	switch c.StoreBackend {
	case BackendFirestore:
		if c.ProjectID == "" {
			problems = append(problems, errors.New("PROJECTID is required for the firestore backend"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, errors.New("SQLITEPATH is required for the sqlite backend"))
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Errorf("STOREBACKEND %q is not one of firestore, sqlite, memory", c.StoreBackend))
	}

	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		problems = append(problems, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}
	if c.SheetsCredentialsSecret != "" && c.ProjectID == "" {
		problems = append(problems, errors.New("PROJECTID is required to load SHEETSCREDENTIALSSECRET"))
	}
	if c.ExportSchedule != "" {
		if _, err := cron.ParseStandard(c.ExportSchedule); err != nil {
			problems = append(problems, fmt.Errorf("EXPORTSCHEDULE: %w", err))
		}
	}
	if c.MonthlyTarget.IsNegative() {
		problems = append(problems, errors.New("MONTHLYTARGET must not be negative"))
	}
	if c.AgentTarget.IsNegative() {
		problems = append(problems, errors.New("AGENTTARGET must not be negative"))
	}

	return errors.Join(problems...)
}

// SheetsEnabled reports whether reports can be published to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.SpreadsheetID != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (c *Config) parseBool(key string) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s %q is not a boolean", key, raw))
		return false
	}
	return v
}

func (c *Config) parseDecimal(key, fallback string) decimal.Decimal {
	raw := getEnv(key, fallback)
	v, err := decimal.NewFromString(raw)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s %q is not a number", key, raw))
		return decimal.RequireFromString(fallback)
	}
	return v
}
