package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vango-dev/histroute/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "histroute.json"

	// DefaultPort is the default bridge server port.
	DefaultPort = 3000

	// DefaultHost is the default bridge server host.
	DefaultHost = "localhost"

	// DefaultRoutes is the default route table file.
	DefaultRoutes = "routes.yaml"

	// DefaultBase is the origin relative URLs are resolved against.
	DefaultBase = "http://localhost"

	// DefaultRegion is the S3 region used when none is configured.
	DefaultRegion = "us-east-1"
)

// Config represents the complete histroute.json configuration.
type Config struct {
	// Routes is the path to the route table file (JSON or YAML).
	Routes string `json:"routes,omitempty"`

	// Base is the origin used to resolve relative URLs given to the CLI.
	Base string `json:"base,omitempty"`

	// Serve contains bridge server configuration.
	Serve ServeConfig `json:"serve,omitempty"`

	// S3 loads the route table from an object instead of Routes.
	S3 S3Config `json:"s3,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServeConfig contains bridge server settings.
type ServeConfig struct {
	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// AllowedOrigins lists the origins allowed to open a bridge socket.
	// Empty allows same-origin requests only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// S3Config locates a route table stored in S3 or an S3-compatible store.
type S3Config struct {
	// Bucket is the bucket name. Empty disables the S3 source.
	Bucket string `json:"bucket,omitempty"`

	// Key is the object key. Its extension selects the table format.
	Key string `json:"key,omitempty"`

	// Region is the bucket region (default: "us-east-1").
	Region string `json:"region,omitempty"`

	// Endpoint overrides the service endpoint, e.g. for MinIO.
	Endpoint string `json:"endpoint,omitempty"`

	// UsePathStyle addresses the bucket in the path instead of the host.
	UsePathStyle bool `json:"usePathStyle,omitempty"`
}

// Enabled reports whether a bucket is configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Routes: DefaultRoutes,
		Base:   DefaultBase,
		Serve: ServeConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for histroute.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeSourceUnreadable).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass --routes")
		}
		return nil, errors.New(errors.CodeSourceUnreadable).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeSourceUnreadable).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Routes == "" {
		c.Routes = DefaultRoutes
	}
	if c.Base == "" {
		c.Base = DefaultBase
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.S3.Enabled() && c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("serve.port must be between 0 and 65535")
	}
	if _, err := c.BaseURL(); err != nil {
		return err
	}
	if c.S3.Enabled() && c.S3.Key == "" {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("s3.key is required when s3.bucket is set")
	}
	if !c.S3.Enabled() && c.S3.Key != "" {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("s3.bucket is required when s3.key is set")
	}
	return nil
}

// BaseURL parses Base. It must be an absolute http(s) origin.
func (c *Config) BaseURL() (*url.URL, error) {
	u, err := url.Parse(c.Base)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("base is not a valid URL").
			Wrap(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetailf("base %q must be an absolute http or https URL", c.Base).
			WithSuggestion(`Use an origin such as "https://example.com"`)
	}
	return u, nil
}

// ServeAddress returns the listen address for the bridge server.
func (c *Config) ServeAddress() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// RoutesPath returns the absolute path to the route table file.
func (c *Config) RoutesPath() string {
	path := c.Routes
	if path == "" {
		path = DefaultRoutes
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing histroute.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeSourceUnreadable).
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Create " + ConfigFileName + " or pass --routes")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
