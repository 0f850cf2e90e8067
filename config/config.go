// Package config loads the runtime configuration -- which transport to use,
// where the register schema lives, default privilege -- from a koanf
// instance seeded with struct defaults, then overlaid with an optional
// YAML file.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "github.com/go-yaml/yaml"
)

// Config holds everything needed to bring up a host-side dispatcher: where
// the schema lives, which transport talks to the device, and the default
// privilege level granted to requests with no stronger authentication.
type Config struct {
	SchemePath string `koanf:"scheme_path" yaml:"scheme_path"`

	Transport string `koanf:"transport" yaml:"transport"` // "usb" or "serial"

	USBVendorID  uint16 `koanf:"usb_vendor_id" yaml:"usb_vendor_id"`
	USBProductID uint16 `koanf:"usb_product_id" yaml:"usb_product_id"`

	SerialPort string `koanf:"serial_port" yaml:"serial_port"`
	SerialBaud int    `koanf:"serial_baud" yaml:"serial_baud"`

	HTTPAddr string `koanf:"http_addr" yaml:"http_addr"`

	DefaultPriv string `koanf:"default_priv" yaml:"default_priv"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		SchemePath:  "../scheme.json",
		Transport:   "usb",
		SerialPort:  "/dev/ttyUSB0",
		SerialBaud:  115200,
		HTTPAddr:    ":8080",
		DefaultPriv: "NORMAL",
	}
}

// Load reads configFile over top of Default(). A missing file is not an
// error -- the defaults stand.
func Load(configFile string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, err
	}
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if !strings.Contains(err.Error(), "no such") {
			return Config{}, err
		}
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// WriteDefault writes the default configuration to configFile as YAML, as
// a starting point for hand editing.
func WriteDefault(configFile string) error {
	f, err := os.Create(configFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return yml.NewEncoder(f).Encode(Default())
}
