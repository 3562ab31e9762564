package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mbalug7/go-tfluna/pkg/config"
	"github.com/mbalug7/go-tfluna/pkg/hal"
	"github.com/mbalug7/go-tfluna/pkg/linux"
	"github.com/mbalug7/go-tfluna/pkg/logging"
	"github.com/mbalug7/go-tfluna/pkg/tfluna"
	"github.com/mbalug7/go-tfluna/pkg/uart"
	"github.com/sirupsen/logrus"
)

const usage = `usage: go-tfluna [-config file] [-loglevel n] <command>

commands:
  read                      single measurement
  watch                     measure until interrupted
  info                      firmware, production code and settings
  fps [rate]                get or set and save the frame rate
  address <new>             set and save a new address, 0x08-0x77
  enable | disable          switch ranging on or off
  save                      save settings
  reset                     soft reset
  factory-reset             restore factory defaults
  mode <continuous|trigger> sampling mode
  trigger                   sample once, the device must be in trigger mode
  lowpower <on|off>         low power mode
  uart                      read frames from the serial interface`

type app struct {
	log    *logrus.Entry
	client *tfluna.Client
	addr   hal.DeviceAddress
	hw     hal.HWHandler
}

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	logging.InitParam()
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level := logrus.InfoLevel
	if cfg.LogLevel != nil {
		level = logrus.Level(*cfg.LogLevel)
	}
	log := logging.GetLogger(level)

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := runCommand(cfg, log, args); err != nil {
		log.WithField("status", tfluna.StatusOf(err)).Error(err)
		os.Exit(1)
	}
}

func runCommand(cfg *config.Config, log *logrus.Entry, args []string) error {
	if args[0] == "uart" {
		return runUART(cfg, log)
	}

	bus, closer, err := linux.OpenBus(cfg.Bus, cfg.Timeout())
	if err != nil {
		return err
	}
	defer closer.Close()

	a := &app{
		log:    log,
		client: tfluna.NewClient(bus, tfluna.WithLogger(logging.WithPrefix(log, "tfluna"))),
		addr:   cfg.DeviceAddress(),
	}
	if cfg.HasGPIO() {
		hw, err := linux.NewHWHandler(cfg.GPIO.Chip, cfg.PowerPin(), cfg.ReadyPin())
		if err != nil {
			return err
		}
		defer hw.Close()
		a.hw = hw
	}
	return a.run(args[0], args[1:])
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func (a *app) run(cmd string, args []string) error {
	switch cmd {
	case "read":
		return a.read()
	case "watch":
		return watch(a.client.Device(a.addr), 100*time.Millisecond, a.log)
	case "info":
		return a.info()
	case "fps":
		if len(args) == 0 {
			fps, err := a.client.GetFrameRate(a.addr)
			if err != nil {
				return err
			}
			a.log.Infof("frame rate: %d Hz", fps)
			return nil
		}
		fps, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return fmt.Errorf("invalid frame rate %q: %w", args[0], err)
		}
		if err := a.client.SetFrameRate(a.addr, uint16(fps)); err != nil {
			return err
		}
		return a.client.SaveSettings(a.addr)
	case "address":
		if len(args) == 0 {
			return errors.New("address: new address required")
		}
		return a.setAddress(args[0])
	case "enable":
		return a.client.Enable(a.addr)
	case "disable":
		return a.client.Disable(a.addr)
	case "save":
		return a.client.SaveSettings(a.addr)
	case "reset":
		return a.client.SoftReset(a.addr)
	case "factory-reset":
		return a.client.HardReset(a.addr)
	case "mode":
		if len(args) == 0 {
			return errors.New("mode: continuous or trigger required")
		}
		switch args[0] {
		case "continuous":
			return a.client.SetContinuousMode(a.addr)
		case "trigger":
			return a.client.SetTriggerMode(a.addr)
		}
		return fmt.Errorf("mode: unknown mode %q", args[0])
	case "trigger":
		return a.trigger()
	case "lowpower":
		if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
			return errors.New("lowpower: on or off required")
		}
		return a.client.SetLowPower(a.addr, args[0] == "on")
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func (a *app) read() error {
	m, err := a.client.GetData(a.addr)
	if err != nil {
		a.log.Warn(tfluna.FormatFrame(tfluna.StatusOf(err), m.Raw))
		return err
	}
	a.log.WithFields(logrus.Fields{
		"flux": m.Flux,
		"temp": fmt.Sprintf("%.2f C", m.Celsius()),
	}).Infof("distance: %d cm", m.Distance)
	return nil
}

func (a *app) info() error {
	version, err := a.client.GetVersion(a.addr)
	if err != nil {
		return err
	}
	var code [tfluna.ProductionCodeLength]byte
	if err := a.client.GetProductionCode(a.addr, &code); err != nil {
		return err
	}
	tick, err := a.client.GetTime(a.addr)
	if err != nil {
		return err
	}
	errCode, err := a.client.GetErrorCode(a.addr)
	if err != nil {
		return err
	}
	settings, err := a.client.ReadSettings(a.addr)
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"firmware":   version.String(),
		"production": string(code[:]),
		"tick":       tick,
		"error":      fmt.Sprintf("0x%04X", errCode),
	}).Info("device")
	a.log.WithFields(logrus.Fields{
		"address":  fmt.Sprintf("0x%02X", uint8(settings.Address())),
		"mode":     settings.Mode().String(),
		"enabled":  settings.Enabled(),
		"fps":      settings.FrameRate(),
		"lowpower": settings.LowPower(),
	}).Info("settings")
	a.log.Debug(settings.String())
	return nil
}

func (a *app) setAddress(arg string) error {
	newAddr, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", arg, err)
	}
	settings, err := a.client.ReadSettings(a.addr)
	if err != nil {
		return err
	}
	err = tfluna.NewConfigBuilder(a.client, a.addr, settings).Address(hal.DeviceAddress(newAddr)).ApplyAndSave()
	if err != nil {
		return err
	}
	if a.hw == nil {
		a.log.Warnf("address 0x%02X saved, power cycle the sensor to apply it", newAddr)
		return nil
	}
	if err := a.hw.PowerCycle(500 * time.Millisecond); err != nil {
		return err
	}
	_, err = a.client.GetData(hal.DeviceAddress(newAddr))
	if err != nil && tfluna.StatusOf(err) != tfluna.StatusWeakSignal && tfluna.StatusOf(err) != tfluna.StatusStrongSignal {
		return fmt.Errorf("sensor does not answer on 0x%02X after power cycle: %w", newAddr, err)
	}
	a.log.Infof("sensor answers on 0x%02X", newAddr)
	return nil
}

func (a *app) trigger() error {
	if err := a.client.Trigger(a.addr); err != nil {
		return err
	}
	if a.hw != nil {
		if err := a.hw.WaitDataReady(time.Second); err != nil {
			a.log.WithError(err).Warn("no data ready edge")
		}
	}
	return a.read()
}

func runUART(cfg *config.Config, log *logrus.Entry) error {
	port, err := uart.Open(cfg.Serial.Port, cfg.Serial.Baud, cfg.SerialTimeout())
	if err != nil {
		return err
	}
	defer port.Close()
	return watch(uart.NewReader(port, logging.WithPrefix(log, "uart")), 0, log)
}

// watch logs distances until SIGINT or SIGTERM, signal errors are logged and skipped
func watch(r hal.Ranger, interval time.Duration, log *logrus.Entry) error {
	signalInterruptChan := make(chan os.Signal, 1)
	signal.Notify(signalInterruptChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalInterruptChan)

	for {
		select {
		case <-signalInterruptChan:
			return nil
		default:
		}

		dist, err := r.ReadDistance()
		switch tfluna.StatusOf(err) {
		case tfluna.StatusReady:
			log.Infof("distance: %d cm", dist)
		case tfluna.StatusWeakSignal, tfluna.StatusStrongSignal, tfluna.StatusChecksumError, tfluna.StatusHeaderError:
			log.WithField("status", tfluna.StatusOf(err)).Warnf("distance: %d cm", dist)
		default:
			return err
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
}
