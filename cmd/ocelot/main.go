package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/davrk/ocelot/internal/engine"
	"github.com/davrk/ocelot/internal/storage"
	"github.com/davrk/ocelot/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	nostore    = flag.Bool("nostore", false, "run without persistent preferences and stats")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	// Persistence is best-effort: a second engine instance cannot grab the
	// database lock and runs storageless.
	var store *storage.Store
	if !*nostore {
		s, err := storage.Open()
		if err != nil {
			log.Printf("Warning: storage unavailable: %v (preferences and stats disabled)", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	eng := engine.NewEngine()

	protocol := uci.New(eng, store)
	protocol.Run()
}
