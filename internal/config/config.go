// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for finance-tracker. Rates and
// percentages are entered the way users think of them (6.5 for 6.5%).
type Configuration struct {
	Logging            LoggingConfig        `mapstructure:"logging" yaml:"logging,omitempty" json:"logging,omitempty"`
	Output             OutputConfig         `mapstructure:"output" yaml:"output,omitempty" json:"output,omitempty"`
	Store              StoreConfig          `mapstructure:"store" yaml:"store,omitempty" json:"store,omitempty"`
	Profile            Profile              `mapstructure:"profile" yaml:"profile,omitempty" json:"profile,omitempty"`
	Mortgage           *MortgageConfig      `mapstructure:"mortgage" yaml:"mortgage,omitempty" json:"mortgage,omitempty"`
	RetirementAccounts []AccountConfig      `mapstructure:"retirementAccounts" yaml:"retirementAccounts,omitempty" json:"retirementAccounts,omitempty"`
	Contributions      []ContributionConfig `mapstructure:"contributions" yaml:"contributions,omitempty" json:"contributions,omitempty"`
	Categories         []CategoryConfig     `mapstructure:"categories" yaml:"categories,omitempty" json:"categories,omitempty"`
	Transactions       []TransactionConfig  `mapstructure:"transactions" yaml:"transactions,omitempty" json:"transactions,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty" json:"level,omitempty"`                // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty" json:"format,omitempty"`             // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty" json:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty" json:"format,omitempty"` // pretty, csv
}

// StoreConfig points at the SQLite database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty" json:"path,omitempty"`
}

// Profile holds the user's ages used for retirement projections.
type Profile struct {
	CurrentAge    *int `mapstructure:"currentAge" yaml:"currentAge,omitempty" json:"currentAge,omitempty"`
	RetirementAge *int `mapstructure:"retirementAge" yaml:"retirementAge,omitempty" json:"retirementAge,omitempty"`
}

// Validate checks that both ages are within range.
func (p Profile) Validate() error {
	return errors.Join(
		validation.ValidateAge("currentAge", p.CurrentAge),
		validation.ValidateAge("retirementAge", p.RetirementAge),
	)
}

// ProjectionYears is the number of years left until retirement, at most
// MaxProjectionYears. It falls back to DefaultProjectionYears when the
// current age is unknown or already at or past the retirement age.
func (p Profile) ProjectionYears() int {
	if p.CurrentAge == nil {
		return constants.DefaultProjectionYears
	}
	target := constants.DefaultRetirementAge
	if p.RetirementAge != nil {
		target = *p.RetirementAge
	}
	if target <= *p.CurrentAge {
		return constants.DefaultProjectionYears
	}
	return min(target-*p.CurrentAge, constants.MaxProjectionYears)
}

// MortgageConfig describes the mortgage. InterestRate is a percentage.
type MortgageConfig struct {
	ID                string   `mapstructure:"id" yaml:"id,omitempty" json:"id,omitempty"`
	Name              string   `mapstructure:"name" yaml:"name" json:"name"`
	PropertyAddress   string   `mapstructure:"propertyAddress" yaml:"propertyAddress,omitempty" json:"propertyAddress,omitempty"`
	OriginalPrincipal float64  `mapstructure:"originalPrincipal" yaml:"originalPrincipal" json:"originalPrincipal"`
	CurrentBalance    *float64 `mapstructure:"currentBalance" yaml:"currentBalance,omitempty" json:"currentBalance,omitempty"`
	InterestRate      float64  `mapstructure:"interestRate" yaml:"interestRate" json:"interestRate"`
	TermMonths        int      `mapstructure:"termMonths" yaml:"termMonths" json:"termMonths"`
	StartDate         string   `mapstructure:"startDate" yaml:"startDate" json:"startDate"`
	PaymentDay        int      `mapstructure:"paymentDay" yaml:"paymentDay,omitempty" json:"paymentDay,omitempty"`
	ExtraPayment      float64  `mapstructure:"extraPayment" yaml:"extraPayment,omitempty" json:"extraPayment,omitempty"`
	Escrow            float64  `mapstructure:"escrow" yaml:"escrow,omitempty" json:"escrow,omitempty"`
	PMI               float64  `mapstructure:"pmi" yaml:"pmi,omitempty" json:"pmi,omitempty"`
	Active            *bool    `mapstructure:"active" yaml:"active,omitempty" json:"active,omitempty"`
}

// AccountConfig describes a retirement account. ExpectedReturnRate,
// EmployerMatchPercentage and VestingPercentage are percentages.
type AccountConfig struct {
	ID                      string                  `mapstructure:"id" yaml:"id,omitempty" json:"id,omitempty"`
	Name                    string                  `mapstructure:"name" yaml:"name" json:"name"`
	Type                    string                  `mapstructure:"type" yaml:"type" json:"type"`
	Provider                string                  `mapstructure:"provider" yaml:"provider,omitempty" json:"provider,omitempty"`
	EmployerName            string                  `mapstructure:"employerName" yaml:"employerName,omitempty" json:"employerName,omitempty"`
	CurrentBalance          float64                 `mapstructure:"currentBalance" yaml:"currentBalance" json:"currentBalance"`
	ContributionAmount      float64                 `mapstructure:"contributionAmount" yaml:"contributionAmount" json:"contributionAmount"`
	ContributionFrequency   string                  `mapstructure:"contributionFrequency" yaml:"contributionFrequency" json:"contributionFrequency"`
	EmployerMatchPercentage float64                 `mapstructure:"employerMatchPercentage" yaml:"employerMatchPercentage,omitempty" json:"employerMatchPercentage,omitempty"`
	EmployerMatchLimit      float64                 `mapstructure:"employerMatchLimit" yaml:"employerMatchLimit,omitempty" json:"employerMatchLimit,omitempty"`
	VestingPercentage       *float64                `mapstructure:"vestingPercentage" yaml:"vestingPercentage,omitempty" json:"vestingPercentage,omitempty"`
	ExpectedReturnRate      float64                 `mapstructure:"expectedReturnRate" yaml:"expectedReturnRate" json:"expectedReturnRate"`
	AssetAllocation         []AssetAllocationConfig `mapstructure:"assetAllocation" yaml:"assetAllocation,omitempty" json:"assetAllocation,omitempty"`
	Active                  *bool                   `mapstructure:"active" yaml:"active,omitempty" json:"active,omitempty"`
	Notes                   string                  `mapstructure:"notes" yaml:"notes,omitempty" json:"notes,omitempty"`
}

// AssetAllocationConfig is one holding within an account.
type AssetAllocationConfig struct {
	AssetClass string  `mapstructure:"assetClass" yaml:"assetClass" json:"assetClass"`
	Percentage float64 `mapstructure:"percentage" yaml:"percentage" json:"percentage"`
	FundName   string  `mapstructure:"fundName" yaml:"fundName,omitempty" json:"fundName,omitempty"`
	Ticker     string  `mapstructure:"ticker" yaml:"ticker,omitempty" json:"ticker,omitempty"`
}

// ContributionConfig is a historical deposit. Account refers to an account
// by ID or by name.
type ContributionConfig struct {
	ID             string  `mapstructure:"id" yaml:"id,omitempty" json:"id,omitempty"`
	Account        string  `mapstructure:"account" yaml:"account" json:"account"`
	Date           string  `mapstructure:"date" yaml:"date" json:"date"`
	EmployeeAmount float64 `mapstructure:"employeeAmount" yaml:"employeeAmount" json:"employeeAmount"`
	EmployerAmount float64 `mapstructure:"employerAmount" yaml:"employerAmount,omitempty" json:"employerAmount,omitempty"`
	BalanceAfter   float64 `mapstructure:"balanceAfter" yaml:"balanceAfter" json:"balanceAfter"`
	Notes          string  `mapstructure:"notes" yaml:"notes,omitempty" json:"notes,omitempty"`
}

// CategoryConfig is a spending category. Without any categories the
// built-in set is used.
type CategoryConfig struct {
	ID        string `mapstructure:"id" yaml:"id,omitempty" json:"id,omitempty"`
	Name      string `mapstructure:"name" yaml:"name" json:"name"`
	Type      string `mapstructure:"type" yaml:"type" json:"type"`
	Icon      string `mapstructure:"icon" yaml:"icon,omitempty" json:"icon,omitempty"`
	Color     string `mapstructure:"color" yaml:"color,omitempty" json:"color,omitempty"`
	SortOrder int    `mapstructure:"sortOrder" yaml:"sortOrder,omitempty" json:"sortOrder,omitempty"`
	Default   bool   `mapstructure:"default" yaml:"default,omitempty" json:"default,omitempty"`
}

// TransactionConfig is an income or expense entry. Category refers to a
// category by ID or by name.
type TransactionConfig struct {
	ID          string  `mapstructure:"id" yaml:"id,omitempty" json:"id,omitempty"`
	Type        string  `mapstructure:"type" yaml:"type" json:"type"`
	Amount      float64 `mapstructure:"amount" yaml:"amount" json:"amount"`
	Description string  `mapstructure:"description" yaml:"description" json:"description"`
	Category    string  `mapstructure:"category" yaml:"category" json:"category"`
	Date        string  `mapstructure:"date" yaml:"date" json:"date"`
	Recurring   bool    `mapstructure:"recurring" yaml:"recurring,omitempty" json:"recurring,omitempty"`
	RecurringID string  `mapstructure:"recurringId" yaml:"recurringId,omitempty" json:"recurringId,omitempty"`
	Notes       string  `mapstructure:"notes" yaml:"notes,omitempty" json:"notes,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A .env file next to the config, if present, is loaded
// into the environment first so FINANCE_TRACKER_* overrides can live there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return nil, err
	}

	v := newViper(true)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(v)
}

// LoadEnvironment builds a configuration from defaults and FINANCE_TRACKER_*
// environment overrides alone, for runs without a configuration file.
func LoadEnvironment() (*Configuration, error) {
	return decode(newViper(true))
}

// LoadConfigurationFromReader parses a configuration document of the given
// type ("yaml" or "json") from r. The process environment is not consulted:
// the document alone decides every field.
func LoadConfigurationFromReader(r io.Reader, configType string) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	v := newViper(false)
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	return decode(v)
}

func newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix(constants.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("store.path", constants.DefaultStoreFile)
	v.SetDefault("profile.retirementAge", constants.DefaultRetirementAge)
	// Registered so that FINANCE_TRACKER_PROFILE_CURRENTAGE is picked up
	// even when the file has no profile section.
	v.SetDefault("profile.currentAge", nil)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &configuration, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors surface from ToSnapshot instead.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	snapshot, err := c.ToSnapshot()
	if err != nil {
		return append(warnings, err.Error())
	}

	validator := validation.Validator{
		Mortgage:      snapshot.Mortgage,
		Accounts:      snapshot.Accounts,
		CurrentAge:    c.Profile.CurrentAge,
		RetirementAge: c.Profile.RetirementAge,
	}
	return append(warnings, validator.ValidateAll()...)
}
