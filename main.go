package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/user-none/emvgm/adapter"
	"github.com/user-none/emvgm/cli"
	"github.com/user-none/emvgm/config"
	"github.com/user-none/emvgm/vgm"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	outPath := flag.String("out", "", "render to a WAV file instead of playing")
	loops := flag.Int("loops", 0, "times to repeat the loop section, -1 forever (overrides config)")
	rate := flag.Int("rate", 0, "output sample rate (overrides config)")
	mono := flag.Bool("mono", false, "render a single channel")
	psgModel := flag.String("psg", "", "PSG model: blit or discrete (overrides config)")
	region := flag.String("region", "", "NES APU region: auto, ntsc, or pal (overrides config)")
	volume := flag.Float64("volume", -1, "playback volume 0-1 (overrides config)")
	maxLen := flag.Duration("max", 0, "stop after this much audio, 0 for the whole stream")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: emvgm [flags] <file.vgm|file.vgz>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	fsys := afero.NewOsFs()
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(fsys, *configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Flags set on the command line override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "loops":
			cfg.Playback.Loops = *loops
		case "rate":
			cfg.Audio.SampleRate = *rate
		case "mono":
			if *mono {
				cfg.Audio.Channels = 1
			}
		case "psg":
			cfg.Chips.PSGModel = strings.ToLower(*psgModel)
		case "region":
			cfg.Chips.Region = strings.ToLower(*region)
		case "volume":
			cfg.Audio.Volume = *volume
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	factory := adapter.NewFactory(cfg)
	player, err := factory.Open(fsys, path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", path, err)
	}

	h := player.Header()
	for _, id := range adapter.Unsupported(h) {
		log.Printf("Warning: %s writes are ignored", id)
	}

	if *outPath != "" {
		if cfg.Playback.Loops < 0 && *maxLen <= 0 {
			log.Fatal("Rendering an endless loop needs -max")
		}
		renderFile(player, *outPath, *maxLen)
		return
	}

	play(player, cfg, filepath.Base(path), *maxLen)
}

func renderFile(player *vgm.Player, outPath string, maxLen time.Duration) {
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", outPath, err)
	}
	frames, err := cli.RenderWAV(f, player, maxLen)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("Failed to render %s: %v", outPath, err)
	}
	log.Printf("Wrote %s (%s)", outPath, time.Duration(frames)*time.Second/time.Duration(player.SampleRate()))
}

func play(player *vgm.Player, cfg *config.Config, title string, maxLen time.Duration) {
	total := playLength(player.Header(), cfg.Playback.Loops)
	if maxLen > 0 && (total == 0 || maxLen < total) {
		total = maxLen
	}
	progress := cli.NewProgress(os.Stdout, title, total)

	runner := cli.NewRunner(player, cfg.Audio.Volume, progress)
	runner.Start()

	keys, err := cli.WatchKeys(os.Stdin, runner, progress)
	if err == nil {
		defer keys.Stop()
	}

	if maxLen > 0 {
		timer := time.AfterFunc(maxLen, runner.Stop)
		defer timer.Stop()
	}

	err = runner.Wait()
	progress.Done()
	if keys != nil {
		keys.Stop()
	}
	runner.Close()
	if err != nil {
		log.Fatalf("Playback failed: %v", err)
	}
}

// playLength estimates the playing time including repeats of the loop
// section. It is zero when the stream loops forever.
func playLength(h vgm.Header, loops int) time.Duration {
	if loops < 0 && h.LoopOffset != 0 {
		return 0
	}
	total := h.Duration()
	if loops > 0 && h.LoopOffset != 0 {
		total += time.Duration(loops) * time.Duration(h.LoopSamples) * time.Second / vgm.NativeRate
	}
	return total
}
