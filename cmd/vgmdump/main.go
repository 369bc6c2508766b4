// Command vgmdump prints the header and the decoded command stream of a
// VGM file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/afero"

	"github.com/user-none/emvgm/adapter"
	"github.com/user-none/emvgm/chip"
	"github.com/user-none/emvgm/vgm"
)

func main() {
	headerOnly := flag.Bool("header", false, "print only the header")
	limit := flag.Int("n", 0, "stop after this many events, 0 for all")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: vgmdump [flags] <file.vgm|file.vgz>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	c, h, err := vgm.Open(afero.NewOsFs(), flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open %s: %v", flag.Arg(0), err)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	printHeader(w, h)
	if *headerOnly {
		return
	}

	if err := dump(w, c, h, *limit); err != nil {
		w.Flush()
		log.Fatalf("Decode failed: %v", err)
	}
}

func printHeader(w io.Writer, h vgm.Header) {
	fmt.Fprintf(w, "version      %s\n", h.VersionString())
	fmt.Fprintf(w, "data start   0x%X\n", h.DataStart())
	fmt.Fprintf(w, "duration     %s (%d samples)\n", h.Duration(), h.TotalSamples)
	if loop := h.LoopStart(); loop != 0 {
		fmt.Fprintf(w, "loop         0x%X (%d samples)\n", loop, h.LoopSamples)
	}
	for id := chip.ID(0); id < chip.NumSlots; id++ {
		if clk := h.Clock(id); clk != 0 {
			fmt.Fprintf(w, "%-12s %d Hz\n", id, clk)
		}
	}
	for _, id := range adapter.Unsupported(h) {
		fmt.Fprintf(w, "unsupported  %s\n", id)
	}
	fmt.Fprintln(w)
}

// dump decodes the stream without loops, printing every event. No chips
// are attached so nothing is rendered.
func dump(w io.Writer, c *vgm.Cursor, h vgm.Header, limit int) error {
	var n int
	var samples uint64
	dec := vgm.NewDecoder(c, h, &chip.Bank{})
	dec.Trace = func(e vgm.Event) {
		if limit > 0 && n >= limit {
			return
		}
		fmt.Fprintln(w, e)
		n++
	}

	for !dec.Finished() && (limit == 0 || n < limit) {
		count, err := dec.Advance()
		if err != nil {
			return err
		}
		samples += uint64(count)
	}
	fmt.Fprintf(w, "\n%d events, %d samples, %d PCM bytes\n", n, samples, dec.PCMSize())
	return nil
}
