package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	defaultKeepAlive      = 60 * time.Second
	defaultOpTimeout      = 5 * time.Second
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = time.Minute
	defaultQueueDepth     = 100
)

// TLSOptions holds TLS configuration that can be unmarshaled from config files.
type TLSOptions struct {
	InsecureSkipVerify bool   `mapstructure:"insecureSkipVerify" json:"insecureSkipVerify"`
	ServerName         string `mapstructure:"serverName" json:"serverName,omitempty"`
	CAFile             string `mapstructure:"caFile" json:"caFile,omitempty"`
	CertFile           string `mapstructure:"certFile" json:"certFile,omitempty"`
	KeyFile            string `mapstructure:"keyFile" json:"keyFile,omitempty"`
}

// Config describes the broker connection. AliveTopic, when set, is
// registered as a retained last will carrying "0" so operators observe
// ungraceful disconnects.
type Config struct {
	Brokers    []string       `mapstructure:"brokers" json:"brokers"`
	ClientID   string         `mapstructure:"clientID" json:"clientID"`
	Username   string         `mapstructure:"username" json:"username"`
	Password   string         `mapstructure:"password" json:"password"`
	TLS        *TLSOptions    `mapstructure:"tls" json:"tls,omitempty"`
	AliveTopic string         `mapstructure:"aliveTopic" json:"aliveTopic"`
	KeepAlive  time.Duration  `mapstructure:"keepAlive" json:"keepAlive"`
	OpTimeout  time.Duration  `mapstructure:"opTimeout" json:"opTimeout"`
	Backoff    BackoffOptions `mapstructure:"backoff" json:"backoff"`
	QueueDepth int            `mapstructure:"queueDepth" json:"queueDepth"`
	QoS        byte           `mapstructure:"qos" json:"qos"`
}

// BackoffOptions paces reconnect attempts.
type BackoffOptions struct {
	Initial time.Duration `mapstructure:"initial" json:"initial"`
	Max     time.Duration `mapstructure:"max" json:"max"`
}

func (c *Config) opTimeout() time.Duration {
	if c.OpTimeout > 0 {
		return c.OpTimeout
	}
	return defaultOpTimeout
}

func (c *Config) initialBackoff() time.Duration {
	if c.Backoff.Initial > 0 {
		return c.Backoff.Initial
	}
	return defaultInitialBackoff
}

func (c *Config) maxBackoff() time.Duration {
	if c.Backoff.Max > 0 {
		return c.Backoff.Max
	}
	return defaultMaxBackoff
}

func (c *Config) queueDepth() int {
	if c.QueueDepth > 0 {
		return c.QueueDepth
	}
	return defaultQueueDepth
}

func convertToPahoOptions(cfg *Config) (*mqtt.ClientOptions, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("mqtt: no brokers configured")
	}

	opts := mqtt.NewClientOptions()
	for _, broker := range cfg.Brokers {
		opts.AddBroker(broker)
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("treeconf-%s", uuid.NewString()[:8])
	}
	opts.SetClientID(clientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.TLS != nil {
		tlsConfig, err := createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	opts.SetKeepAlive(keepAlive)
	opts.SetConnectTimeout(cfg.opTimeout())

	// The agent's state machine owns reconnection; paho must not race
	// it with its own retry loop.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetOrderMatters(true)

	if cfg.AliveTopic != "" {
		opts.SetWill(cfg.AliveTopic, "0", cfg.QoS, true)
	}

	return opts, nil
}

func createTLSConfig(tlsOpts *TLSOptions) (*tls.Config, error) {
	config := &tls.Config{
		InsecureSkipVerify: tlsOpts.InsecureSkipVerify,
		ServerName:         tlsOpts.ServerName,
	}

	if tlsOpts.CAFile != "" {
		caCert, err := os.ReadFile(tlsOpts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		config.RootCAs = caCertPool
	}

	if tlsOpts.CertFile != "" && tlsOpts.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(tlsOpts.CertFile, tlsOpts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}
