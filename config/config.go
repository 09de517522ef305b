package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	tracing "github.com/uber/jaeger-client-go/config"
	"go.uber.org/atomic"

	"github.com/hugozhu/obclient/errors"
	"github.com/hugozhu/obclient/logutil"
)

// Config number limitations.
const (
	MaxLogFileSize = 4096 // MB
	// DefPort is the port the server listens on when none is configured.
	DefPort = 5432
	// DefMaxDrainPackets bounds the drain loop waiting for ready-for-query
	// during the handshake. A misbehaving server that never sends 'Z' would
	// otherwise spin forever.
	DefMaxDrainPackets = 64
)

// Config contains configuration options for one client.
type Config struct {
	Host            string            `toml:"host" json:"host"`
	Port            uint16            `toml:"port" json:"port"`
	Pool            string            `toml:"pool" json:"pool"`
	Params          map[string]string `toml:"params" json:"params"`
	DialTimeout     uint              `toml:"dial-timeout" json:"dial-timeout"`
	ReadTimeout     uint              `toml:"read-timeout" json:"read-timeout"`
	WriteTimeout    uint              `toml:"write-timeout" json:"write-timeout"`
	MaxDrainPackets uint              `toml:"max-drain-packets" json:"max-drain-packets"`
	TCPKeepAlive    bool              `toml:"tcp-keep-alive" json:"tcp-keep-alive"`
	Log             Log               `toml:"log" json:"log"`
	Status          Status            `toml:"status" json:"status"`
	OpenTracing     OpenTracing       `toml:"opentracing" json:"opentracing"`
}

// Addr returns the "host:port" address of the server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PoolKey returns the logical pool key for transport reuse. When no pool name
// is configured it is derived from host and port.
func (c *Config) PoolKey() string {
	if c.Pool != "" {
		return c.Pool
	}
	return c.Addr()
}

// nullableBool defaults unset bool options to unset instead of false, which enables us to know if the user has set 2
// conflict options at the same time.
type nullableBool struct {
	IsValid bool
	IsTrue  bool
}

var (
	nbUnset = nullableBool{false, false}
	nbFalse = nullableBool{true, false}
	nbTrue  = nullableBool{true, true}
)

func (b *nullableBool) toBool() bool {
	return b.IsValid && b.IsTrue
}

func (b nullableBool) MarshalJSON() ([]byte, error) {
	switch b {
	case nbTrue:
		return json.Marshal(true)
	case nbFalse:
		return json.Marshal(false)
	default:
		return json.Marshal(nil)
	}
}

func (b *nullableBool) UnmarshalText(text []byte) error {
	str := string(text)
	switch str {
	case "", "null":
		*b = nbUnset
		return nil
	case "true":
		*b = nbTrue
	case "false":
		*b = nbFalse
	default:
		*b = nbUnset
		return errors.New("Invalid value for bool type: " + str)
	}
	return nil
}

func (b *nullableBool) UnmarshalJSON(data []byte) error {
	var err error
	var v interface{}
	if err = json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch raw := v.(type) {
	case bool:
		*b = nullableBool{true, raw}
	default:
		*b = nbUnset
	}
	return err
}

// Log is the log section of config.
type Log struct {
	// Log level.
	Level string `toml:"level" json:"level"`
	// Log format. one of json, text, or console.
	Format string `toml:"format" json:"format"`
	// EnableTimestamp enables automatic timestamps in log output.
	EnableTimestamp nullableBool `toml:"enable-timestamp" json:"enable-timestamp"`
	// DisableTimestamp disables automatic timestamps in output. Deprecated: use EnableTimestamp instead.
	DisableTimestamp nullableBool `toml:"disable-timestamp" json:"disable-timestamp"`
	// File log config.
	File logutil.FileLogConfig `toml:"file" json:"file"`
}

func (l *Log) getDisableTimestamp() bool {
	if l.EnableTimestamp == nbUnset && l.DisableTimestamp == nbUnset {
		return false
	}
	if l.EnableTimestamp == nbUnset {
		return l.DisableTimestamp.toBool()
	}
	return !l.EnableTimestamp.toBool()
}

// ToLogConfig converts *Log to *logutil.LogConfig.
func (l *Log) ToLogConfig() *logutil.LogConfig {
	return logutil.NewLogConfig(l.Level, l.Format, l.File, l.getDisableTimestamp())
}

// Status is the status section of the config.
type Status struct {
	StatusHost   string `toml:"status-host" json:"status-host"`
	StatusPort   uint   `toml:"status-port" json:"status-port"`
	ReportStatus bool   `toml:"report-status" json:"report-status"`
}

// OpenTracing is the opentracing section of the config.
type OpenTracing struct {
	Enable   bool                `toml:"enable" json:"enable"`
	Sampler  OpenTracingSampler  `toml:"sampler" json:"sampler"`
	Reporter OpenTracingReporter `toml:"reporter" json:"reporter"`
}

// OpenTracingSampler is the config for opentracing sampler.
// See https://godoc.org/github.com/uber/jaeger-client-go/config#SamplerConfig
type OpenTracingSampler struct {
	Type                    string        `toml:"type" json:"type"`
	Param                   float64       `toml:"param" json:"param"`
	SamplingServerURL       string        `toml:"sampling-server-url" json:"sampling-server-url"`
	MaxOperations           int           `toml:"max-operations" json:"max-operations"`
	SamplingRefreshInterval time.Duration `toml:"sampling-refresh-interval" json:"sampling-refresh-interval"`
}

// OpenTracingReporter is the config for opentracing reporter.
// See https://godoc.org/github.com/uber/jaeger-client-go/config#ReporterConfig
type OpenTracingReporter struct {
	QueueSize           int           `toml:"queue-size" json:"queue-size"`
	BufferFlushInterval time.Duration `toml:"buffer-flush-interval" json:"buffer-flush-interval"`
	LogSpans            bool          `toml:"log-spans" json:"log-spans"`
	LocalAgentHostPort  string        `toml:"local-agent-host-port" json:"local-agent-host-port"`
}

// ToTracingConfig converts *OpenTracing to *tracing.Configuration.
func (t *OpenTracing) ToTracingConfig() *tracing.Configuration {
	ret := &tracing.Configuration{
		Disabled: !t.Enable,
		Reporter: &tracing.ReporterConfig{},
		Sampler:  &tracing.SamplerConfig{},
	}
	ret.Reporter.QueueSize = t.Reporter.QueueSize
	ret.Reporter.BufferFlushInterval = t.Reporter.BufferFlushInterval
	ret.Reporter.LogSpans = t.Reporter.LogSpans
	ret.Reporter.LocalAgentHostPort = t.Reporter.LocalAgentHostPort

	ret.Sampler.Type = t.Sampler.Type
	ret.Sampler.Param = t.Sampler.Param
	ret.Sampler.SamplingServerURL = t.Sampler.SamplingServerURL
	ret.Sampler.MaxOperations = t.Sampler.MaxOperations
	ret.Sampler.SamplingRefreshInterval = t.Sampler.SamplingRefreshInterval
	return ret
}

// DefaultConf is the default config.
var DefaultConf = Config{
	Host:            "127.0.0.1",
	Port:            DefPort,
	DialTimeout:     10,
	ReadTimeout:     30,
	WriteTimeout:    30,
	MaxDrainPackets: DefMaxDrainPackets,
	TCPKeepAlive:    true,

	Log: Log{
		Level:  logutil.DefaultLogLevel,
		Format: logutil.DefaultLogFormat,
		File:   logutil.NewFileLogConfig(logutil.DefaultLogMaxSize),
	},
	Status: Status{
		StatusHost:   "0.0.0.0",
		StatusPort:   10080,
		ReportStatus: false,
	},
	OpenTracing: OpenTracing{
		Enable: false,
		Sampler: OpenTracingSampler{
			Type:  "const",
			Param: 1.0,
		},
		Reporter: OpenTracingReporter{},
	},
}

var globalConf = atomic.Value{}

func init() {
	conf := DefaultConf
	StoreGlobalConfig(&conf)
}

// NewConfig creates a new config instance with default value.
func NewConfig() *Config {
	conf := DefaultConf
	return &conf
}

// GetGlobalConfig returns the global configuration for this client process.
func GetGlobalConfig() *Config {
	return globalConf.Load().(*Config)
}

// StoreGlobalConfig stores a new config to the global conf.
func StoreGlobalConfig(config *Config) {
	globalConf.Store(config)
}

// The ErrConfigValidationFailed error is used so that external callers can do a type assertion
// to defer handling of this specific error when someone does not want strict type checking.
type ErrConfigValidationFailed struct {
	ConfFile       string
	UndecodedItems []string
}

func (e *ErrConfigValidationFailed) Error() string {
	return fmt.Sprintf("config file %s contained unknown configuration options: %s",
		e.ConfFile, strings.Join(e.UndecodedItems, ", "))
}

// Load loads config options from a toml file.
func (c *Config) Load(confFile string) error {
	metaData, err := toml.DecodeFile(confFile, c)
	if err != nil {
		return errors.Trace(err)
	}
	// If any items in the file are not mapped into the Config struct, issue
	// an error and stop the client from starting.
	if undecoded := metaData.Undecoded(); len(undecoded) > 0 {
		undecodedItems := make([]string, 0, len(undecoded))
		for _, item := range undecoded {
			undecodedItems = append(undecodedItems, item.String())
		}
		return &ErrConfigValidationFailed{confFile, undecodedItems}
	}
	return nil
}

// Valid checks if this config is valid.
func (c *Config) Valid() error {
	if c.Host == "" {
		return errors.New("host must not be empty")
	}
	if c.Port == 0 {
		return errors.New("port must not be zero")
	}
	if c.Log.EnableTimestamp == c.Log.DisableTimestamp && c.Log.EnableTimestamp != nbUnset {
		logutil.BgLogger().Warn(fmt.Sprintf("\"enable-timestamp\" (%v) conflicts \"disable-timestamp\" (%v). \"disable-timestamp\" is deprecated, please use \"enable-timestamp\" instead", c.Log.EnableTimestamp, c.Log.DisableTimestamp))
		// if two options conflict, we will use the value of EnableTimestamp
		c.Log.DisableTimestamp = nbUnset
	}
	if c.Log.File.MaxSize > MaxLogFileSize {
		return errors.Errorf("invalid max log file size=%v which is larger than max=%v", c.Log.File.MaxSize, MaxLogFileSize)
	}
	return nil
}
