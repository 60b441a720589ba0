package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys
const (
	KeyLogLevel           = "app.log_level"
	KeyLogFormat          = "app.log_format"
	KeyCatalogURL         = "sources.catalog_url"
	KeyCapacityURL        = "sources.capacity_url"
	KeyTimeout            = "sources.timeout"
	KeyOutputType         = "output.type"
	KeyOutputPath         = "output.path"
	KeyOutputBucket       = "output.bucket"
	KeyOutputBucketRegion = "output.bucket_region"
	KeyOutputKey          = "output.key"
	KeyProfile            = "aws.profile"
	KeyDefaultRegion      = "pricing.default_region"
	KeyOneYearAllUpfront  = "pricing.amortize_1yr_all_upfront"
)

// Default values
const (
	DefaultCatalogURL  = "https://pricing.us-east-1.amazonaws.com/offers/v1.0/aws/AmazonRDS/current/index.json"
	DefaultCapacityURL = "https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/ebs-optimized.html"
	DefaultTimeout     = 10 * time.Minute
	DefaultOutputType  = "filesystem"
	DefaultOutputPath  = "www/rds/instances.json"
	DefaultOutputKey   = "rds/instances.json.gz"
	DefaultRegion      = "us-east-1"
)

// GlobalConfig holds the resolved configuration for a run
type GlobalConfig struct {
	LogLevel  string
	LogFormat string

	// CatalogURL and CapacityURL are fetched when no local catalog is given
	CatalogURL  string
	CapacityURL string
	Timeout     time.Duration

	OutputType   string
	OutputPath   string
	Bucket       string
	BucketRegion string
	Key          string

	// Profile is the AWS profile used for S3 output
	Profile string

	// DefaultRegion receives SKUs priced for the "Any" location
	DefaultRegion string

	// AmortizeOneYearAllUpfront enables yrTerm1Standard.allUpfront
	AmortizeOneYearAllUpfront bool
}

// setDefaults registers the default of every key
func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyCatalogURL, DefaultCatalogURL)
	v.SetDefault(KeyCapacityURL, DefaultCapacityURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyOutputType, DefaultOutputType)
	v.SetDefault(KeyOutputPath, DefaultOutputPath)
	v.SetDefault(KeyOutputBucket, "")
	v.SetDefault(KeyOutputBucketRegion, "")
	v.SetDefault(KeyOutputKey, DefaultOutputKey)
	v.SetDefault(KeyProfile, "")
	v.SetDefault(KeyDefaultRegion, DefaultRegion)
	v.SetDefault(KeyOneYearAllUpfront, false)
}

// Load resolves the configuration from the global viper instance
func Load() (*GlobalConfig, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom resolves the configuration from v and validates it
func LoadFrom(v *viper.Viper) (*GlobalConfig, error) {
	cfg := &GlobalConfig{
		LogLevel:                  v.GetString(KeyLogLevel),
		LogFormat:                 v.GetString(KeyLogFormat),
		CatalogURL:                v.GetString(KeyCatalogURL),
		CapacityURL:               v.GetString(KeyCapacityURL),
		Timeout:                   v.GetDuration(KeyTimeout),
		OutputType:                v.GetString(KeyOutputType),
		OutputPath:                v.GetString(KeyOutputPath),
		Bucket:                    v.GetString(KeyOutputBucket),
		BucketRegion:              v.GetString(KeyOutputBucketRegion),
		Key:                       v.GetString(KeyOutputKey),
		Profile:                   v.GetString(KeyProfile),
		DefaultRegion:             v.GetString(KeyDefaultRegion),
		AmortizeOneYearAllUpfront: v.GetBool(KeyOneYearAllUpfront),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late in a run
func (c *GlobalConfig) Validate() error {
	switch c.OutputType {
	case "filesystem":
		if c.OutputPath == "" {
			return fmt.Errorf("%s is required when %s=filesystem", KeyOutputPath, KeyOutputType)
		}
	case "s3":
		if c.Bucket == "" {
			return fmt.Errorf("%s is required when %s=s3", KeyOutputBucket, KeyOutputType)
		}
		if c.BucketRegion == "" {
			return fmt.Errorf("%s is required when %s=s3", KeyOutputBucketRegion, KeyOutputType)
		}
	default:
		return fmt.Errorf("invalid %s %q (must be filesystem or s3)", KeyOutputType, c.OutputType)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	if c.DefaultRegion == "" {
		return fmt.Errorf("%s must not be empty", KeyDefaultRegion)
	}
	return nil
}

// DefaultConfigYAML is written by "rdsinfo init config"
const DefaultConfigYAML = `# rdsinfo Configuration File

# Application Configuration
app:
  log_level: INFO  # Set logging level (DEBUG, INFO, WARN, ERROR)
  log_format: text  # Log output format (text or json)

# Documents fetched when no local catalog file is given
sources:
  catalog_url: ` + DefaultCatalogURL + `
  capacity_url: ` + DefaultCapacityURL + `
  timeout: 10m  # Upper bound for each download, body included

# Where the normalized records are written
output:
  type: filesystem  # Output type (filesystem or s3)
  path: ` + DefaultOutputPath + `  # Used when type=filesystem
  bucket: ""  # S3 bucket name (required when type=s3)
  bucket_region: ""  # S3 bucket region (required when type=s3)
  key: ` + DefaultOutputKey + `  # Object key, gzip compressed

# AWS Configuration
aws:
  profile: ""  # AWS profile used for S3 uploads (empty uses the default chain)

# Pricing Configuration
pricing:
  default_region: ` + DefaultRegion + `  # Region for SKUs priced at location "Any"
  amortize_1yr_all_upfront: false  # Also compute yrTerm1Standard.allUpfront
`
