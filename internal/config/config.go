// Package config loads client settings from SHOPIFY_* environment variables
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// Setting keys. Each key is read from SHOPIFY_<KEY> in upper case.
const (
	KeyName               = "name"
	KeyUser               = "user"
	KeyPass               = "pass"
	KeyToken              = "token"
	KeyVersion            = "version"
	KeyBaseURL            = "base_url"
	KeyTimeout            = "timeout"
	KeyUploadTimeout      = "upload_timeout"
	KeyRetries            = "retries"
	KeyCallLimitThreshold = "call_limit_threshold"
	KeyRequestsPerSecond  = "requests_per_second"
	KeyDebug              = "debug"
)

// Settings are the raw configuration values.
type Settings struct {
	Name               string        `json:"name"                  yaml:"name"`
	User               string        `json:"user"                  yaml:"user"`
	Pass               string        `json:"-"                     yaml:"-"`
	Token              string        `json:"-"                     yaml:"-"`
	Version            string        `json:"version"               yaml:"version"`
	BaseURL            string        `json:"base_url,omitempty"    yaml:"base_url,omitempty"`
	Timeout            time.Duration `json:"timeout"               yaml:"timeout"`
	UploadTimeout      time.Duration `json:"upload_timeout"        yaml:"upload_timeout"`
	Retries            int           `json:"retries"               yaml:"retries"`
	CallLimitThreshold int           `json:"call_limit_threshold"  yaml:"call_limit_threshold"`
	RequestsPerSecond  float64       `json:"requests_per_second"   yaml:"requests_per_second"`
	Debug              bool          `json:"debug"                 yaml:"debug"`
}

// New returns a viper instance bound to the SHOPIFY_* environment. When file
// is not empty it is read as YAML; environment values win over the file.
func New(file string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyName, "")
	v.SetDefault(KeyUser, "")
	v.SetDefault(KeyPass, "")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyVersion, "")
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyTimeout, constants.DefaultHTTPTimeout.String())
	v.SetDefault(KeyUploadTimeout, constants.UploadHTTPTimeout.String())
	v.SetDefault(KeyRetries, constants.DefaultRetryMax)
	v.SetDefault(KeyCallLimitThreshold, constants.DefaultCallLimitThreshold)
	v.SetDefault(KeyRequestsPerSecond, 0)
	v.SetDefault(KeyDebug, false)

	if file == "" {
		return v, nil
	}

	v.SetConfigFile(file)
	v.SetConfigType("yaml")

	err := v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", file, err)
	}

	return v, nil
}

// Load reads the settings from v.
func Load(v *viper.Viper) (*Settings, error) {
	timeout, err := parseDuration(v.GetString(KeyTimeout))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", KeyTimeout, err)
	}

	uploadTimeout, err := parseDuration(v.GetString(KeyUploadTimeout))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", KeyUploadTimeout, err)
	}

	return &Settings{
		Name:               v.GetString(KeyName),
		User:               v.GetString(KeyUser),
		Pass:               v.GetString(KeyPass),
		Token:              v.GetString(KeyToken),
		Version:            v.GetString(KeyVersion),
		BaseURL:            v.GetString(KeyBaseURL),
		Timeout:            timeout,
		UploadTimeout:      uploadTimeout,
		Retries:            v.GetInt(KeyRetries),
		CallLimitThreshold: v.GetInt(KeyCallLimitThreshold),
		RequestsPerSecond:  v.GetFloat64(KeyRequestsPerSecond),
		Debug:              v.GetBool(KeyDebug),
	}, nil
}

// FromEnv loads the settings from the environment only.
func FromEnv() (*Settings, error) {
	v, err := New("")
	if err != nil {
		return nil, err
	}

	return Load(v)
}

// HasCredentials reports whether a password or an access token is set.
func (s *Settings) HasCredentials() bool {
	return s.Pass != "" || s.Token != ""
}

// ClientConfig converts the settings to a client configuration.
func (s *Settings) ClientConfig() *shopify.Config {
	retries := s.Retries
	if retries == 0 {
		// zero in the environment means no retries, not the default
		retries = -1
	}

	threshold := s.CallLimitThreshold
	if threshold == 0 {
		// zero turns the call budget pause off
		threshold = -1
	}

	return &shopify.Config{
		ShopName:           s.Name,
		APIVersion:         s.Version,
		BaseURL:            s.BaseURL,
		Username:           s.User,
		Password:           s.Pass,
		AccessToken:        s.Token,
		HTTPTimeout:        s.Timeout,
		UploadTimeout:      s.UploadTimeout,
		RetryMax:           retries,
		CallLimitThreshold: threshold,
		RequestsPerSecond:  s.RequestsPerSecond,
		Debug:              s.Debug,
	}
}

var errNegativeDuration = errors.New("duration must not be negative")

// parseDuration accepts Go durations ("45s") and bare seconds ("45").
func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	var (
		d   time.Duration
		err error
	)

	if seconds, convErr := strconv.ParseFloat(value, 64); convErr == nil {
		d = time.Duration(seconds * float64(time.Second))
	} else {
		d, err = time.ParseDuration(value)
		if err != nil {
			return 0, err
		}
	}

	if d < 0 {
		return 0, errNegativeDuration
	}

	return d, nil
}
