// Command halcheck brings up the chip drivers on an emulated board and
// reports what reached the chips.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"

	"github.com/user-none/colecohal/cli"
	"github.com/user-none/colecohal/emu"
	"github.com/user-none/colecohal/hal"
	"github.com/user-none/colecohal/logger"
)

var (
	platformName = flag.String("platform", "coleco", fmt.Sprintf("board profile: %v", hal.PlatformNames()))
	configPath   = flag.String("config", "", "JSON board profile, overrides -platform")
	regionFlag   = flag.String("region", "ntsc", "region: ntsc or pal")
	modeFlag     = flag.String("mode", "g2", "display mode: g1, g2, bitmap or text")
	bgFlag       = flag.Int("bg", 1, "background color 0-15")
	frameEvery   = flag.Int("frame-every", 500, "raise a frame interrupt every n port operations, 0 for none")
	selfTest     = flag.Bool("selftest", false, "run the VRAM self test")
	assetPath    = flag.String("asset", "", "asset file or archive to load into VRAM")
	table        = flag.String("table", "pattern", "table for -asset: name, color, pattern, sprite or spritepattern")
	start        = flag.Int("start", 0, "first record for -asset")
	voice        = flag.Int("voice", 1, "voice for -tone, 1-3")
	toneHz       = flag.Uint("tone", 0, "play a tone at this frequency in Hz")
	wavPath      = flag.String("wav", "", "capture the sound chips to this WAV file")
	seconds      = flag.Float64("seconds", 1, "length of the -wav capture")
	showLog      = flag.Bool("log", false, "echo the log to stderr")
	tracePath    = flag.String("trace", "", "write every port operation to this file")
	cpuProfile   = flag.String("cpuprofile", "", "write a CPU profile to this directory")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if *showLog {
		logger.SetEcho(os.Stderr)
	}
	if *cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile), profile.NoShutdownHook).Stop()
	}

	var (
		p   hal.Platform
		err error
	)
	if *configPath != "" {
		p, err = hal.LoadPlatform(*configPath)
	} else {
		p, err = hal.PlatformByName(*platformName)
	}
	if err != nil {
		return fmt.Errorf("failed to load platform: %w", err)
	}

	region, err := emu.ParseRegion(*regionFlag)
	if err != nil {
		return fmt.Errorf("invalid region: %w", err)
	}
	mode, err := cli.ParseMode(*modeFlag)
	if err != nil {
		return fmt.Errorf("invalid mode: %w", err)
	}
	bg, err := cli.ParseColor(*bgFlag)
	if err != nil {
		return fmt.Errorf("invalid background: %w", err)
	}

	r := cli.NewRunner(p, region)
	defer r.Close()

	if *tracePath != "" {
		f, err := os.Create(*tracePath)
		if err != nil {
			return fmt.Errorf("failed to create trace: %w", err)
		}
		w := bufio.NewWriter(f)
		defer func() {
			w.Flush()
			f.Close()
		}()
		r.Machine().SetTrace(w)
	}

	r.BringUp(mode, bg, *frameEvery)

	if *selfTest {
		if r.SelfTest() {
			fmt.Println("VRAM self test passed")
		} else {
			fmt.Println("VRAM self test FAILED")
		}
	}

	if *assetPath != "" {
		n, err := r.LoadTable(*table, *assetPath, *start)
		if err != nil {
			return fmt.Errorf("failed to load asset: %w", err)
		}
		fmt.Printf("Loaded %d records into the %s table\n", n, *table)
	}

	if *toneHz > 0 {
		if err := r.PlayTone(*voice, uint32(*toneHz)); err != nil {
			return fmt.Errorf("failed to play tone: %w", err)
		}
	}

	if *wavPath != "" {
		if err := r.CaptureWAV(*wavPath, *seconds); err != nil {
			return fmt.Errorf("failed to capture audio: %w", err)
		}
		fmt.Printf("Wrote %.1fs of audio to %s\n", *seconds, *wavPath)
	}

	r.Report(os.Stdout)
	r.Silence()
	return nil
}
