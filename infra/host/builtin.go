package host

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/injector/core/factory"
	"github.com/kilianp07/injector/infra/logger"
	"github.com/kilianp07/injector/infra/mqtt"
)

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator returns a new unique identifier.
type IDGenerator func() string

type envConf struct {
	Prefix string `json:"prefix"`
	Trim   bool   `json:"trim"`
}

type loggerConf struct {
	Component string `json:"component"`
}

type prometheusConf struct {
	Isolated bool `json:"isolated"`
}

type influxConf struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

func init() {
	_ = Register("env", newEnv)
	_ = Register("hostname", func(map[string]any) (any, error) {
		return os.Hostname()
	})
	_ = Register("time", func(map[string]any) (any, error) {
		return Clock(time.Now), nil
	})
	_ = Register("uuid", func(map[string]any) (any, error) {
		return IDGenerator(uuid.NewString), nil
	})
	_ = Register("logger", func(conf map[string]any) (any, error) {
		c := loggerConf{Component: "module"}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return logger.New(c.Component), nil
	})
	_ = Register("prometheus", func(conf map[string]any) (any, error) {
		var c prometheusConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Isolated {
			return prometheus.Registerer(prometheus.NewRegistry()), nil
		}
		return prometheus.DefaultRegisterer, nil
	})
	_ = Register("mqtt", func(conf map[string]any) (any, error) {
		var c mqtt.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return mqtt.NewClient(c)
	})
	_ = Register("influxdb", func(conf map[string]any) (any, error) {
		var c influxConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.URL == "" {
			return nil, fmt.Errorf("influxdb url is required")
		}
		return influxdb2.NewClient(c.URL, c.Token), nil
	})
}

// newEnv snapshots the environment as a map. With a prefix only matching
// variables are kept, and trim strips the prefix from the keys.
func newEnv(conf map[string]any) (any, error) {
	var c envConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, c.Prefix) {
			continue
		}
		if c.Trim {
			k = strings.TrimPrefix(k, c.Prefix)
		}
		out[k] = v
	}
	return out, nil
}
