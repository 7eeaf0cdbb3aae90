package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/milk9111/mobengine/config"
	"github.com/milk9111/mobengine/logging"
	"github.com/milk9111/mobengine/mob"
	"github.com/milk9111/mobengine/prefabs"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, toml or json)")
	dir := flag.String("dir", "", "content dir, overrides content.dir")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *dir != "" {
		cfg.Content.Dir = *dir
	}
	if err := logging.Init("scriptcheck", cfg.Logger); err != nil {
		log.Fatal(err)
	}

	errs := check(cfg)
	_ = logging.Sync()
	if len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "%d content error(s)\n", len(errs))
		os.Exit(1)
	}
	fmt.Println("content ok")
}

// check loads every area and mob type in the content dir into one world
// and returns every problem found. Areas come first so hitbox hazards and
// status names resolve.
func check(cfg *config.Config) []error {
	prefabs.SetDir(cfg.Content.Dir)

	var errs []error
	report := func(es ...error) {
		for _, err := range es {
			logging.Error("content error", zap.Error(err))
			errs = append(errs, err)
		}
	}

	w := mob.NewWorld(nil, cfg.Physics)
	files, err := prefabs.AreaFiles()
	if err != nil {
		report(err)
		return errs
	}
	var areas []prefabs.AreaSpec
	for _, file := range files {
		spec, err := prefabs.LoadAreaSpec(file)
		if err != nil {
			report(err)
			continue
		}
		if _, err := prefabs.BuildArea(spec, w.Catalog, cfg.Geometry.BlockmapBlockSize); err != nil {
			report(err)
		}
		areas = append(areas, spec)
	}

	specs, typeErrs := prefabs.LoadMobTypes(w)
	report(typeErrs...)

	for _, a := range areas {
		for i, p := range a.Mobs {
			if _, ok := w.Types[p.Type]; !ok {
				report(fmt.Errorf("area %s: placement %d: unknown mob type %q", a.Name, i, p.Type))
			}
		}
	}

	logging.Info("content checked",
		zap.Int("areas", len(areas)),
		zap.Int("types", len(specs)),
		zap.Int("errors", len(errs)),
	)
	return errs
}
