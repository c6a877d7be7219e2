package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AnalyzerComprehend = "comprehend"
	AnalyzerVader      = "vader"
)

const (
	DEFAULT_SEARCH_INDEX   = "audioarchive"
	DEFAULT_SEARCH_DOCTYPE = "recording"
	DEFAULT_LANGUAGE_CODE  = "en"
	DEFAULT_RETRY_ELAPSED  = 20 * time.Second
	DEFAULT_SEARCH_TIMEOUT = 10 * time.Second
	DEFAULT_APP_ENV        = "dev"
	DEFAULT_LOG_LEVEL      = "info"
)

// Config is built once per cold start and handed to every component
// constructor. Nothing below cmd/ reads the environment.
type Config struct {
	Environment string
	LogLevel    string

	Region      string
	AWSEndpoint string

	TableName string

	SearchEndpoint string
	SearchIndex    string
	SearchDocType  string
	SearchTimeout  time.Duration

	LanguageCode            string
	AnalyzerBackend         string
	AnalysisMaxRetryElapsed time.Duration
	AnalysisRPS             float64

	ActivationTimeout time.Duration
}

// FromEnv reads the configuration surface from the process environment.
func FromEnv() (Config, error) {
	cfg := Config{
		Environment:     getenv("APP_ENV", DEFAULT_APP_ENV),
		LogLevel:        getenv("LOG_LEVEL", DEFAULT_LOG_LEVEL),
		Region:          os.Getenv("AWS_REGION"),
		AWSEndpoint:     os.Getenv("AWS_ENDPOINT"),
		TableName:       os.Getenv("DDB_TABLE"),
		SearchEndpoint:  os.Getenv("ES_HOST"),
		SearchIndex:     getenv("ES_INDEX", DEFAULT_SEARCH_INDEX),
		SearchDocType:   getenv("ES_DOCTYPE", DEFAULT_SEARCH_DOCTYPE),
		LanguageCode:    getenv("LANGUAGE_CODE", DEFAULT_LANGUAGE_CODE),
		AnalyzerBackend: strings.ToLower(getenv("ANALYZER_BACKEND", AnalyzerComprehend)),
	}

	var errs []error
	var err error

	if cfg.AnalysisMaxRetryElapsed, err = durationEnv("ANALYSIS_MAX_RETRY_ELAPSED", DEFAULT_RETRY_ELAPSED); err != nil {
		errs = append(errs, err)
	}
	if cfg.SearchTimeout, err = durationEnv("SEARCH_TIMEOUT", DEFAULT_SEARCH_TIMEOUT); err != nil {
		errs = append(errs, err)
	}
	if cfg.ActivationTimeout, err = durationEnv("ACTIVATION_TIMEOUT", 0); err != nil {
		errs = append(errs, err)
	}
	if raw := os.Getenv("ANALYSIS_RPS"); raw != "" {
		cfg.AnalysisRPS, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("ANALYSIS_RPS: %w", err))
		}
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate reports every missing or out-of-range setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Region == "" {
		errs = append(errs, errors.New("AWS_REGION is required"))
	}
	if c.TableName == "" {
		errs = append(errs, errors.New("DDB_TABLE is required"))
	}
	if c.SearchEndpoint == "" {
		errs = append(errs, errors.New("ES_HOST is required"))
	}
	if c.SearchIndex == "" || c.SearchDocType == "" {
		errs = append(errs, errors.New("ES_INDEX and ES_DOCTYPE must not be empty"))
	}
	switch c.AnalyzerBackend {
	case AnalyzerComprehend, AnalyzerVader:
	default:
		errs = append(errs, fmt.Errorf("ANALYZER_BACKEND %q is not one of %q, %q",
			c.AnalyzerBackend, AnalyzerComprehend, AnalyzerVader))
	}
	if c.AnalysisRPS < 0 {
		errs = append(errs, errors.New("ANALYSIS_RPS must not be negative"))
	}
	if c.ActivationTimeout < 0 || c.AnalysisMaxRetryElapsed < 0 || c.SearchTimeout < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
