package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	get "github.com/hashicorp/go-getter"

	"github.com/go-theft-craft/voxel/pkg/world/block"
)

func main() {
	var (
		src        = flag.String("src", "", "go-getter source of the pack directory or file (e.g. git::https://host/repo.git//packs)")
		out        = flag.String("o", "./packs", "output dir path")
		list       = flag.Bool("list", false, "list the blocks of every validated pack")
		registered = flag.Bool("registered", false, "list the packs built into the engine and exit")
	)
	flag.Parse()

	if *registered {
		for _, name := range block.RegisteredPacks() {
			t, err := block.Load(name)
			if err != nil {
				log.Fatalf("load pack %s: %v", name, err)
			}
			printPack(name, t, *list)
		}
		return
	}

	if *out == "" {
		log.Fatal("output dir path required")
	}

	if *src != "" {
		if err := os.RemoveAll(*out); err != nil {
			log.Fatalf("clear %s: %v", *out, err)
		}
		log.Printf("start downloading packs %s", *src)
		if err := get.Get(*out, *src); err != nil {
			log.Fatalf("download packs: %v", err)
		}
		log.Printf("done downloading packs %s", *out)
	}

	files, err := filepath.Glob(filepath.Join(*out, "*.json"))
	if err != nil {
		log.Fatalf("list packs: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no *.json packs in %s", *out)
	}

	failed := 0
	for _, f := range files {
		t, err := block.LoadPackFile(f)
		if err != nil {
			failed++
			color.Red("FAIL %s: %v", f, err)
			continue
		}
		printPack(f, t, *list)
	}
	if failed > 0 {
		color.Red("%d of %d packs invalid", failed, len(files))
		os.Exit(1)
	}
	color.Green("all %d packs valid", len(files))
}

func printPack(source string, t *block.Table, verbose bool) {
	blocks := t.All()
	fmt.Printf("%s %s (%s, %d blocks)\n", color.GreenString("OK"), t.Name(), source, len(blocks))
	if !verbose {
		return
	}
	for _, b := range blocks {
		fmt.Printf("  %3d %-14s %s\n", b.ID, b.Name, color.CyanString(flags(b, t.AlwaysTransparent())))
	}
}

func flags(b *block.Block, alwaysTransparent block.ID) string {
	var fs []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{b.Invisible, "invisible"},
		{b.Penetrable, "penetrable"},
		{b.CastsShadows, "shadows"},
		{b.Translucent, "translucent"},
		{b.Billboard, "billboard"},
		{b.ID == alwaysTransparent, "always-transparent"},
	} {
		if f.on {
			fs = append(fs, f.name)
		}
	}
	return strings.Join(fs, ",")
}
