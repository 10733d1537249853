package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/meadori/vibecart/bus"
	"github.com/meadori/vibecart/cartridge"
	"github.com/meadori/vibecart/display"
	"github.com/meadori/vibecart/mapper"
	"github.com/meadori/vibecart/ppu"
	"github.com/meadori/vibecart/server"
)

func main() {
	romPath := flag.String("rom", "", "Path to an iNES ROM (opens a file dialog if empty)")
	port := flag.Int("port", 50051, "Port for the gRPC inspector")
	view := flag.Bool("view", false, "Open the video memory viewer")
	dumpCHR := flag.String("dump-chr", "", "Write both pattern tables to this PNG file and exit")
	scale := flag.Int("scale", 2, "Scale factor for -dump-chr")
	trace := flag.Bool("trace", false, "Log every mapper access")
	flag.Parse()

	if *romPath == "" {
		path, err := display.PickROM()
		if err != nil {
			log.Fatalf("No ROM selected: %v", err)
		}
		*romPath = path
	}

	rom, err := cartridge.Open(*romPath)
	if err != nil {
		log.Fatalf("Error loading ROM: %v", err)
	}
	log.Printf("Loaded %s: mapper %d, %d PRG banks, %d bytes CHR, %s mirroring",
		*romPath, rom.MapperID, rom.Image.PRGBanks(), rom.Image.CHRLen, rom.Mirroring())

	var opts []mapper.Option
	if *trace {
		opts = append(opts, mapper.WithTrace(log.Default()))
	}
	b := bus.New(opts...)
	if err := b.Insert(rom); err != nil {
		rom.Close()
		log.Fatalf("Error inserting cartridge: %v", err)
	}

	if *dumpCHR != "" {
		err := writePNG(*dumpCHR, b, *scale)
		rom.Close()
		if err != nil {
			log.Fatalf("Error dumping CHR: %v", err)
		}
		log.Printf("Wrote %s", *dumpCHR)
		return
	}

	mu := &sync.Mutex{}
	srv := server.NewGRPCServer(b, mu)
	if err := srv.Start(*port); err != nil {
		rom.Close()
		log.Fatalf("Error starting gRPC server: %v", err)
	}

	// The server must be stopped before the ROM mapping goes away.
	if *view {
		d := display.New(b, mu, rom)
		if err := d.Run("Vibecart"); err != nil {
			log.Printf("Error running viewer: %v", err)
		}
		srv.Stop()
		d.Close()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Println("Shutting down.")
	srv.Stop()
	rom.Close()
}

func writePNG(path string, b *bus.Bus, scale int) error {
	img := ppu.Scale(ppu.PatternTables(b, ppu.Grayscale), scale)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
