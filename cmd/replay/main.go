package main

import (
	"context"
	"flag"
	"log"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/meadori/vibecart/server"
)

func main() {
	scriptFile := flag.String("script", "", "Path to the script file to replay")
	addr := flag.String("addr", "localhost:50051", "Address of the emulator's gRPC server")
	flag.Parse()

	if *scriptFile == "" {
		log.Fatalf("Please provide a script file using -script <file.script>")
	}

	file, err := os.Open(*scriptFile)
	if err != nil {
		log.Fatalf("Failed to open script file: %v", err)
	}
	steps, err := parseScript(file)
	file.Close()
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", *scriptFile, err)
	}

	log.Printf("Connecting to emulator on %s...", *addr)
	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	mismatches, err := replay(context.Background(), server.NewClient(conn), steps)
	for _, m := range mismatches {
		log.Printf("MISMATCH %s", m)
	}
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}
	if len(mismatches) > 0 {
		log.Printf("Replay complete: %d of %d steps did not match.", len(mismatches), len(steps))
		conn.Close()
		os.Exit(1)
	}
	log.Printf("Replay complete: %d steps.", len(steps))
}
