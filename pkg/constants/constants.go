// Package constants provides shared constants for the finance-tracker application.
package constants

import "time"

// DateLayout is the ISO-8601 calendar date format used for every date the
// engine consumes or produces.
const DateLayout = "2006-01-02"

// MonthLayout is the calendar month format used by spending reports.
const MonthLayout = "2006-01"

// Calendar and currency constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PaychecksPerYear annualizes per-paycheck contributions assuming a
	// bi-weekly pay cycle. Years with 27 paychecks are not modeled.
	PaychecksPerYear = 26

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Amortization constants
const (
	// PayoffThreshold is the remaining balance at or below which a loan is
	// considered paid off.
	PayoffThreshold = 0.01

	// ScheduleCapMultiplier bounds schedule generation to this many times the
	// original term so that a payment too small to cover interest cannot
	// iterate forever.
	ScheduleCapMultiplier = 2

	// MaxTermMonths is the longest mortgage term accepted (100 years).
	MaxTermMonths = 1200
)

// Retirement constants
const (
	// DefaultRetirementAge is used when a summary is requested without one.
	DefaultRetirementAge = 65

	// DefaultProjectionYears is the projection horizon when neither a year
	// count nor the user's age is known.
	DefaultProjectionYears = 30

	// MaxProjectionYears bounds every projection horizon.
	MaxProjectionYears = 150

	// MaxAge is the largest current or retirement age accepted.
	MaxAge = 150

	// WithdrawalRate is the share of the retirement balance withdrawn per
	// year (the 4% rule).
	WithdrawalRate = 0.04

	// WithdrawalTaxRate is the flat tax assumed on retirement withdrawals.
	WithdrawalTaxRate = 0.22

	// AfterTaxShare is the share of a withdrawal kept after tax.
	AfterTaxShare = 1 - WithdrawalTaxRate
)

// Spending constants
const (
	// DefaultTrendMonths is the number of months in a spending trend.
	DefaultTrendMonths = 12

	// MaxTrendMonths bounds the spending trend window.
	MaxTrendMonths = 120
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultStoreFile is the default SQLite database file name
	DefaultStoreFile = "finance-tracker.db"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "FINANCE_TRACKER"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRateLimit is the default sustained API request rate per second
	DefaultRateLimit = 20.0

	// DefaultRateBurst is the default number of API requests allowed in a burst
	DefaultRateBurst = 40

	// DefaultShutdownTimeout bounds how long the server drains requests on exit
	DefaultShutdownTimeout = 5 * time.Second
)
