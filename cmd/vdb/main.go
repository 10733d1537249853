package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/meadori/vibecart/bus"
	"github.com/meadori/vibecart/server"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "Address of the emulator's gRPC server")
	flag.Parse()

	fmt.Println("VDB - Vibecart DeBugger")
	fmt.Printf("Connecting to emulator on %s...\n", *addr)

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("did not connect: %v", err)
	}
	defer conn.Close()

	client := server.NewClient(conn)
	fmt.Println("Connected. Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("(vdb) ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd, count := splitCount(parts[0])
		ctx := context.Background()

		switch cmd {
		case "help", "h":
			fmt.Println("Commands:")
			fmt.Println("  x[/n] <addr>       - Examine CPU memory (e.g. x 8000 or x/16 8000)")
			fmt.Println("  xp[/n] <addr>      - Examine PPU memory")
			fmt.Println("  w <addr> <val>     - Write a byte to CPU memory")
			fmt.Println("  wp <addr> <val>    - Write a byte to PPU memory")
			fmt.Println("  bank, i m          - Print mapper state")
			fmt.Println("  save <file>        - Save state on the emulator host")
			fmt.Println("  load <file>        - Load state on the emulator host")
			fmt.Println("  quit, q            - Exit debugger")
		case "quit", "q", "exit":
			return
		case "x", "xp":
			if len(parts) < 2 {
				fmt.Println("Usage: x <addr> or x/<count> <addr>")
				continue
			}
			a, err := parseNumber(parts[1], 0xFFFF)
			if err != nil {
				fmt.Printf("Invalid address: %s\n", parts[1])
				continue
			}
			space := bus.CPU
			if cmd == "xp" {
				space = bus.PPU
			}
			data, err := client.ReadMemory(ctx, space, uint16(a), count)
			if err != nil {
				fmt.Printf("Error reading memory: %v\n", err)
			} else {
				printHexDump(uint16(a), data)
			}
		case "w", "wp":
			if len(parts) != 3 {
				fmt.Printf("Usage: %s <addr> <val>\n", cmd)
				continue
			}
			a, err := parseNumber(parts[1], 0xFFFF)
			if err != nil {
				fmt.Printf("Invalid address: %s\n", parts[1])
				continue
			}
			v, err := parseNumber(parts[2], 0xFF)
			if err != nil {
				fmt.Printf("Invalid value: %s\n", parts[2])
				continue
			}
			space := bus.CPU
			if cmd == "wp" {
				space = bus.PPU
			}
			if err := client.WriteMemory(ctx, space, uint16(a), byte(v)); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "bank", "i":
			if cmd == "i" && (len(parts) < 2 || parts[1] != "m") {
				fmt.Println("Unknown command. Did you mean 'i m'?")
				continue
			}
			printMapper(client)
		case "save", "load":
			if len(parts) != 2 {
				fmt.Printf("Usage: %s <file>\n", cmd)
				continue
			}
			if cmd == "save" {
				err = client.SaveState(ctx, parts[1])
			} else {
				err = client.LoadState(ctx, parts[1])
			}
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Printf("State %sd: %s\n", cmd, parts[1])
			}
		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}
	}
}

// splitCount splits "x/16" into "x" and 16. A missing or bad count is 1.
func splitCount(word string) (string, int) {
	cmd, countStr, ok := strings.Cut(word, "/")
	if !ok {
		return cmd, 1
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count <= 0 {
		count = 1
	}
	return cmd, count
}

// parseNumber parses a hex number with an optional 0x or $ prefix.
func parseNumber(s string, max uint64) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "$")
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	if n > max {
		return 0, fmt.Errorf("%X out of range", n)
	}
	return n, nil
}

func printMapper(client *server.Client) {
	st, err := client.MapperState(context.Background())
	if err != nil {
		fmt.Printf("Error getting mapper state: %v\n", err)
		return
	}
	chr := "ROM"
	if st.CHRRAM {
		chr = "RAM"
	}
	fmt.Printf("%s  Bank: %d/%d  Mirroring: %s  CHR: %s\n", st.Name, st.Bank, st.Banks, st.Mirroring, chr)
	if st.Fault != "" {
		fmt.Printf("HALTED: %s\n", st.Fault)
	}
}

func printHexDump(startAddr uint16, data []byte) {
	for i := 0; i < len(data); i += 16 {
		fmt.Printf("%04X:", startAddr+uint16(i))
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		for j := i; j < end; j++ {
			fmt.Printf(" %02X", data[j])
		}
		fmt.Println()
	}
}
