// Command vgmrender renders VGM files to WAV files in parallel.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/user-none/emvgm/adapter"
	"github.com/user-none/emvgm/cli"
	"github.com/user-none/emvgm/config"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	outDir := flag.String("outdir", "", "directory for WAV files (default: next to each input)")
	jobs := flag.Int("jobs", runtime.NumCPU(), "files rendered at once")
	maxLen := flag.Duration("max", 10*time.Minute, "stop each file after this much audio, 0 for no limit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: vgmrender [flags] <file>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	fsys := afero.NewOsFs()
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(fsys, *configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if cfg.Playback.Loops < 0 && *maxLen <= 0 {
		log.Fatal("Rendering endless loops needs -max")
	}

	if *outDir != "" {
		if err := fsys.MkdirAll(*outDir, 0755); err != nil {
			log.Fatalf("Failed to create %s: %v", *outDir, err)
		}
	}

	factory := adapter.NewFactory(cfg)

	var g errgroup.Group
	g.SetLimit(max(*jobs, 1))
	for _, in := range flag.Args() {
		out := wavPath(in, *outDir)
		g.Go(func() error {
			return render(fsys, factory, in, out, *maxLen)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

// wavPath replaces the extension of in with .wav, placing the result in
// dir when it is set.
func wavPath(in, dir string) string {
	name := strings.TrimSuffix(in, filepath.Ext(in)) + ".wav"
	if dir != "" {
		name = filepath.Join(dir, filepath.Base(name))
	}
	return name
}

func render(fsys afero.Fs, factory *adapter.Factory, in, out string, maxLen time.Duration) error {
	player, err := factory.Open(fsys, in)
	if err != nil {
		return err
	}

	f, err := fsys.Create(out)
	if err != nil {
		return err
	}
	frames, err := cli.RenderWAV(f, player, maxLen)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	log.Printf("%s -> %s (%s)", in, out, time.Duration(frames)*time.Second/time.Duration(player.SampleRate()))
	return nil
}
