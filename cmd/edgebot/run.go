package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gobot.io/x/gobot"
	"gobot.io/x/gobot/platforms/firmata"

	"github.com/teslashibe/go-edgebot/internal/log"
	"github.com/teslashibe/go-edgebot/pkg/hw"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Follow an edge with a firmata board",
	Long: `Connect to a firmata board on hardware.port, blink the startup signal,
calibrate the white baseline and follow the edge until interrupted.

Examples:
  edgebot run --config robot.yaml
  EDGEBOT_HARDWARE_PORT=/dev/ttyUSB0 edgebot run`,
	Args: cobra.NoArgs,
	RunE: runHardware,
}

func runHardware(cmd *cobra.Command, args []string) error {
	h := cfg.Hardware
	board := firmata.NewAdaptor(h.Port)
	bot := hw.New(board, hw.Pins{
		LeftMotor:    h.LeftMotorPin,
		RightMotor:   h.RightMotorPin,
		LeftSensor:   h.LeftSensorPin,
		RightSensor:  h.RightSensorPin,
		LED:          h.LEDPin,
		LEDActiveLow: h.LEDActiveLow,
	})

	robot := gobot.NewRobot("edgebot", []gobot.Connection{board}, bot.Devices())
	if err := robot.Start(false); err != nil {
		return fmt.Errorf("start board on %s: %w", h.Port, err)
	}
	defer func() {
		if err := robot.Stop(); err != nil {
			log.Warn("board shutdown", "error", err)
		}
	}()

	s, err := newSession(cfg, "hardware", bot.Hardware(hw.NewSystemClock()), nil)
	if err != nil {
		return err
	}
	return s.follow(cmd.Context())
}
