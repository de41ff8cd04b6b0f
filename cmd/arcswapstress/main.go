// Command arcswapstress torture-tests a Cell with many concurrent
// readers and writers, looking for stale observations: a reader that
// sees a writer's published sequence go backwards. It does not check
// for lost updates or reference counts.
//
// Grounded on original_source/tests/stress.rs's storm-style harnesses
// (storm_link_list, et al.), adapted into a single configurable CLI
// rather than a fixed cargo test suite, since Go has no direct
// equivalent of Rust's #[test] + separate stress-test crate split.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/kolkov/arcswap"
)

type config struct {
	writers    int
	readers    int
	iterations int
}

func parseArgs(args []string) config {
	fs := flag.NewFlagSet("arcswapstress", flag.ExitOnError)
	writers := fs.Int("writers", 5, "number of concurrent writer goroutines")
	readers := fs.Int("readers", 8, "number of concurrent reader goroutines")
	iterations := fs.Int("iterations", 100, "outer iterations per writer")
	fs.Parse(args)
	return config{writers: *writers, readers: *readers, iterations: *iterations}
}

type published struct {
	writer int
	seq    int
}

func main() {
	cfg := parseArgs(os.Args[1:])

	cell := arcswap.New(published{})
	stop := make(chan struct{})

	var writerWg sync.WaitGroup
	writerWg.Add(cfg.writers)
	for w := 0; w < cfg.writers; w++ {
		w := w
		go func() {
			defer writerWg.Done()
			for iter := 0; iter < cfg.iterations; iter++ {
				for seq := 1; seq <= 50; seq++ {
					cell.Store(published{writer: w, seq: seq})
				}
			}
		}()
	}

	var mismatches atomic.Int64
	var loads atomic.Int64
	var readerWg sync.WaitGroup
	readerWg.Add(cfg.readers)
	for r := 0; r < cfg.readers; r++ {
		go func() {
			defer readerWg.Done()
			lastSeen := make(map[int]int, cfg.writers)
			for {
				select {
				case <-stop:
					return
				default:
				}
				full := cell.LoadFull()
				v := *full.Value()
				full.Release()
				loads.Add(1)
				if prev, ok := lastSeen[v.writer]; ok && v.seq < prev {
					mismatches.Add(1)
				}
				lastSeen[v.writer] = v.seq
			}
		}()
	}

	writerWg.Wait()
	close(stop)
	readerWg.Wait()

	final := cell.LoadFull()
	defer final.Release()

	fmt.Printf("writers=%d readers=%d iterations=%d\n", cfg.writers, cfg.readers, cfg.iterations)
	fmt.Printf("reader loads observed: %d\n", loads.Load())
	fmt.Printf("monotonicity violations: %d\n", mismatches.Load())
	if mismatches.Load() != 0 {
		fmt.Fprintln(os.Stderr, "FAIL: a reader observed a writer's sequence go backwards")
		os.Exit(1)
	}
	fmt.Println("PASS")
}
