package metrics

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/kilianp07/trikesim/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort serves /metrics when a prometheus sink is configured.
	// Either a bare port or host:port.
	PrometheusPort string `json:"prometheus_port"`
	// BusBuffer sizes the channel between the tick loop and the sinks.
	BusBuffer int `json:"bus_buffer"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.BusBuffer == 0 {
		c.BusBuffer = 256
	}
}

// Validate checks sink types, the Prometheus address and the bus size.
func (c Config) Validate() error {
	var errs []error
	for _, s := range c.Sinks {
		if !Known(s.Type) {
			errs = append(errs, fmt.Errorf("unknown sink %q", s.Type))
		}
	}
	if c.PrometheusPort != "" {
		addr := c.PrometheusPort
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		if err := ValidateListenAddr(addr); err != nil {
			errs = append(errs, fmt.Errorf("prometheus_port: %w", err))
		}
	}
	if c.BusBuffer < 0 {
		errs = append(errs, errors.New("bus_buffer must not be negative"))
	}
	return errors.Join(errs...)
}

// ValidateListenAddr checks a host:port listen address. The host may be
// empty; the port must be numeric and within 1-65535.
func ValidateListenAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}
