package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/karalabe/usb"
	"github.com/peterbourgon/ff/v3/ffcli"
)

// The GigaDevice DFU bootloader. The chip enumerates with these IDs
// when it boots with BOOT0 held high.
const (
	dfuVendorID  = 0x28e9
	dfuProductID = 0x0189
)

// errUSBNotSupported is returned when the USB support is missing.
//
// When building, CGO is required for USB support. If CGO is not
// enabled, detection will not be available.
var errUSBNotSupported = errors.New("gd32v: usb support is missing")

type detectConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	json       bool
}

type dfuDevice struct {
	Path         string `json:"path"`
	VendorID     uint16 `json:"vendor_id"`
	ProductID    uint16 `json:"product_id"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	Serial       string `json:"serial,omitempty"`
}

func (c *detectConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "detect")
	}

	if !usb.Supported() {
		return errUSBNotSupported
	}
	deviceInfos, err := usb.Enumerate(dfuVendorID, dfuProductID)
	if err != nil {
		return fmt.Errorf("gd32v: failed to enumerate usb devices: %w", err)
	}
	if len(deviceInfos) == 0 {
		return errors.New("gd32v: no device in dfu mode found; hold BOOT0, tap RESET and retry")
	}

	devices := make([]dfuDevice, 0, len(deviceInfos))
	for _, di := range deviceInfos {
		devices = append(devices, dfuDevice{
			Path:         di.Path,
			VendorID:     di.VendorID,
			ProductID:    di.ProductID,
			Manufacturer: di.Manufacturer,
			Product:      di.Product,
			Serial:       di.Serial,
		})
	}

	if c.json {
		return writeJSON(c.out, devices)
	}
	for _, d := range devices {
		fmt.Fprintf(c.out, "%04x:%04x %s %s", d.VendorID, d.ProductID,
			d.Manufacturer, d.Product)
		if d.Serial != "" {
			fmt.Fprintf(c.out, " (serial %s)", d.Serial)
		}
		if d.Path != "" {
			fmt.Fprintf(c.out, " at %s", d.Path)
		}
		fmt.Fprintln(c.out)
	}
	return nil
}

func newDetectCmd(rootConfig *rootConfig, out, err io.Writer) *ffcli.Command {
	cfg := detectConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("bronzebeard detect", flag.ExitOnError)
	fs.BoolVar(&cfg.json, "json", false, "output in json mode")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "detect",
		ShortUsage: "detect",
		ShortHelp:  "Find boards waiting in the USB DFU bootloader.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
