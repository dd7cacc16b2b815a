// Package config collects the daemon options from defaults,
// environment variables, command line flags and a YAML file.
package config

import (
	"flag"
	"io/ioutil"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/robotalks/gservo/pkg/axis"
	dxl "github.com/robotalks/gservo/pkg/dynamixel"
	"github.com/robotalks/gservo/pkg/servo"
)

// Bus configures the servo bus.
type Bus struct {
	Port     string        `yaml:"port"`
	Baud     int           `yaml:"baud"`
	Timeout  time.Duration `yaml:"timeout"`
	Simulate bool          `yaml:"simulate"`
	IDs      []int         `yaml:"ids"`
}

// Link configures the host links.
type Link struct {
	Stdio      bool   `yaml:"stdio"`
	Console    bool   `yaml:"console"`
	Serial     string `yaml:"serial"`
	SerialBaud int    `yaml:"serial-baud"`
	WebSocket  string `yaml:"websocket"`
	MQTT       string `yaml:"mqtt"`
}

// Config is the daemon configuration.
type Config struct {
	Name     string        `yaml:"name"`
	Interval time.Duration `yaml:"interval"`
	EEPROM   string        `yaml:"eeprom"`
	Bus      Bus           `yaml:"bus"`
	Link     Link          `yaml:"link"`

	File string `yaml:"-"`
}

type envVars struct {
	File       string `env:"GSERVO_CONFIG"`
	Name       string `env:"GSERVO_NAME"`
	EEPROM     string `env:"GSERVO_EEPROM"`
	BusPort    string `env:"GSERVO_BUS_PORT"`
	BusBaud    int    `env:"GSERVO_BUS_BAUD"`
	Simulate   bool   `env:"GSERVO_SIMULATE"`
	LinkSerial string `env:"GSERVO_LINK_SERIAL"`
	WebSocket  string `env:"GSERVO_WEBSOCKET"`
	MQTT       string `env:"GSERVO_MQTT_URL"`
}

// Defaults.
const (
	DefaultInterval   = 10 * time.Millisecond
	DefaultBusBaud    = 1000000
	DefaultSerialBaud = 115200
)

var defaultConfig = Defaults()

func init() {
	if err := applyEnv(&defaultConfig); err != nil {
		glog.Warningf("config: environment: %v", err)
	}
}

// DeviceName derives the default name from the machine id.
func DeviceName() string {
	id, err := machineid.ID()
	if err != nil || id == "" {
		return "gservo/local"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return "gservo/" + id
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	ids := servo.DefaultIDs()
	conf := Config{
		Name:     DeviceName(),
		Interval: DefaultInterval,
		Bus: Bus{
			Baud:    DefaultBusBaud,
			Timeout: dxl.DefaultTimeout,
		},
		Link: Link{
			Stdio:      true,
			SerialBaud: DefaultSerialBaud,
		},
	}
	for _, id := range ids {
		conf.Bus.IDs = append(conf.Bus.IDs, int(id))
	}
	return conf
}

func applyEnv(c *Config) error {
	var vars envVars
	if err := env.Parse(&vars); err != nil {
		return err
	}
	override := func(dst *string, val string) {
		if val != "" {
			*dst = val
		}
	}
	override(&c.File, vars.File)
	override(&c.Name, vars.Name)
	override(&c.EEPROM, vars.EEPROM)
	override(&c.Bus.Port, vars.BusPort)
	override(&c.Link.Serial, vars.LinkSerial)
	override(&c.Link.WebSocket, vars.WebSocket)
	override(&c.Link.MQTT, vars.MQTT)
	if vars.BusBaud > 0 {
		c.Bus.Baud = vars.BusBaud
	}
	if vars.Simulate {
		c.Bus.Simulate = true
	}
	return nil
}

type idList struct {
	ids *[]int
}

func (l idList) String() string {
	if l.ids == nil {
		return ""
	}
	strs := make([]string, len(*l.ids))
	for i, id := range *l.ids {
		strs[i] = strconv.Itoa(id)
	}
	return strings.Join(strs, ",")
}

func (l idList) Set(s string) error {
	var ids []int
	for _, str := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return errors.Wrapf(err, "servo id %q", str)
		}
		ids = append(ids, id)
	}
	*l.ids = ids
	return nil
}

// SetupFlags sets up command line flags on the default config.
func SetupFlags() {
	SetupFlagSet(flag.CommandLine, &defaultConfig)
}

// SetupFlagSet binds the flags of c to fs.
func SetupFlagSet(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.File, "config", c.File, "YAML config file, overrides flags.")
	fs.StringVar(&c.Name, "name", c.Name, "Device name, used in MQTT topics.")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "Control loop interval.")
	fs.StringVar(&c.EEPROM, "eeprom", c.EEPROM, "Settings database, in memory if empty.")
	fs.StringVar(&c.Bus.Port, "bus", c.Bus.Port, "Servo bus serial port.")
	fs.IntVar(&c.Bus.Baud, "bus-baud", c.Bus.Baud, "Servo bus baud rate.")
	fs.DurationVar(&c.Bus.Timeout, "bus-timeout", c.Bus.Timeout, "Servo reply timeout.")
	fs.BoolVar(&c.Bus.Simulate, "sim", c.Bus.Simulate, "Simulate the servos.")
	fs.Var(idList{&c.Bus.IDs}, "ids", "Servo ids by axis, comma separated.")
	fs.BoolVar(&c.Link.Stdio, "stdio", c.Link.Stdio, "Serve stdin and stdout.")
	fs.BoolVar(&c.Link.Console, "console", c.Link.Console, "Interactive console instead of stdio.")
	fs.StringVar(&c.Link.Serial, "serial", c.Link.Serial, "Host link serial port.")
	fs.IntVar(&c.Link.SerialBaud, "serial-baud", c.Link.SerialBaud, "Host link baud rate.")
	fs.StringVar(&c.Link.WebSocket, "ws", c.Link.WebSocket, "Websocket listen address.")
	fs.StringVar(&c.Link.MQTT, "mqtt", c.Link.MQTT, "MQTT broker URL, e.g. mqtt://host:1883/prefix/.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Bus.IDs = append([]int(nil), defaultConfig.Bus.IDs...)
	return &conf
}

// Load overlays the config file if any and validates the result.
func (c *Config) Load() error {
	if c.File != "" {
		data, err := ioutil.ReadFile(c.File)
		if err != nil {
			return errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return errors.Wrapf(err, "parse config %s", c.File)
		}
	}
	return c.Validate()
}

// MustLoad loads the config and fails on error.
func (c *Config) MustLoad() *Config {
	if err := c.Load(); err != nil {
		glog.Fatalf("config: %v", err)
	}
	return c
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return errors.Errorf("invalid interval %v", c.Interval)
	}
	if !c.Bus.Simulate && c.Bus.Port == "" {
		return errors.New("bus port is required unless simulating")
	}
	if n := len(c.Bus.IDs); n != axis.Axes {
		return errors.Errorf("expect %d servo ids, got %d", axis.Axes, n)
	}
	for _, id := range c.Bus.IDs {
		if id < 0 || id >= int(dxl.BroadcastID) {
			return errors.Errorf("invalid servo id %d", id)
		}
	}
	return nil
}

// ServoIDs returns the servo ids by axis.
func (b *Bus) ServoIDs() (ids [axis.Axes]dxl.ID) {
	for i := range ids {
		if i < len(b.IDs) {
			ids[i] = dxl.ID(b.IDs[i])
		}
	}
	return
}
