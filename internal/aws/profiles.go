package aws

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws/defaults"
	"gopkg.in/ini.v1"
)

// sharedFiles returns the credentials and config file paths, honoring the
// AWS_SHARED_CREDENTIALS_FILE and AWS_CONFIG_FILE overrides.
func sharedFiles() (string, string) {
	credsPath := os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if credsPath == "" {
		credsPath = defaults.SharedCredentialsFilename()
	}

	configPath := os.Getenv("AWS_CONFIG_FILE")
	if configPath == "" {
		configPath = defaults.SharedConfigFilename()
	}
	return credsPath, configPath
}

// ListProfiles returns the sorted AWS profiles from the shared credentials
// and config files.
func ListProfiles() ([]string, error) {
	credsPath, configPath := sharedFiles()
	return ListProfilesFrom(credsPath, configPath)
}

// ListProfilesFrom reads profiles from explicit file paths. Missing files
// contribute no profiles.
func ListProfilesFrom(credsPath, configPath string) ([]string, error) {
	profiles := make(map[string]struct{})

	if err := collectProfiles(credsPath, "", profiles); err != nil {
		return nil, fmt.Errorf("failed to load credentials file: %w", err)
	}
	// config file sections are named "profile <name>" except for default
	if err := collectProfiles(configPath, "profile ", profiles); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	result := make([]string, 0, len(profiles))
	for profile := range profiles {
		result = append(result, profile)
	}
	sort.Strings(result)

	return result, nil
}

func collectProfiles(path, prefix string, into map[string]struct{}) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return err
	}

	for _, section := range file.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			continue
		}
		into[strings.TrimPrefix(name, prefix)] = struct{}{}
	}
	return nil
}

// ValidateProfile returns an error when a named profile is not configured.
// An empty profile selects the SDK default chain and is always valid.
func ValidateProfile(profile string) error {
	if profile == "" {
		return nil
	}

	profiles, err := ListProfiles()
	if err != nil {
		return err
	}

	for _, p := range profiles {
		if p == profile {
			return nil
		}
	}
	return fmt.Errorf("AWS profile %q not found in shared config files", profile)
}
