package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"strings"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/meadori/vibecart/bus"
	"github.com/meadori/vibecart/mapper"
)

// Console defines the methods required from the emulator bus.
type Console interface {
	Read(addr uint16) byte
	Write(addr uint16, data byte)
	PPURead(addr uint16) byte
	PPUWrite(addr uint16, data byte)
	GetMemoryBlock(space bus.Space, addr uint16, size int) []byte
	HasCartridge() bool
	MapperInfo() (mapper.Info, bool)
	Err() error
	SaveState(filename string) error
	LoadState(filename string) error
}

// GRPCServer exposes a console over the inspector service. The console
// is single-threaded, so every call holds mu while it touches it; the
// same lock must guard any other user of the console.
type GRPCServer struct {
	mu       sync.Locker
	console  Console
	listener net.Listener
	server   *grpc.Server
}

// NewGRPCServer initializes the gRPC inspector server
func NewGRPCServer(c Console, mu sync.Locker) *GRPCServer {
	return &GRPCServer{console: c, mu: mu}
}

// ReadMemory returns a block of CPU or PPU space.
func (s *GRPCServer) ReadMemory(ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error) {
	space, err := spaceField(in)
	if err != nil {
		return nil, err
	}
	addr, err := numberField(in, "address", 0xFFFF, nil)
	if err != nil {
		return nil, err
	}
	one := uint32(1)
	size, err := numberField(in, "size", 0x10000, &one)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, status.Error(codes.InvalidArgument, "size must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.halted(); err != nil {
		return nil, err
	}
	block := s.console.GetMemoryBlock(space, uint16(addr), int(size))
	return wrapperspb.Bytes(block), nil
}

// WriteMemory writes one byte to CPU or PPU space.
func (s *GRPCServer) WriteMemory(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(in); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

// StreamWrites applies writes until the client closes the stream.
func (s *GRPCServer) StreamWrites(stream grpc.ClientStreamingServer[structpb.Struct, structpb.Struct]) error {
	count := 0
	for {
		req, err := stream.Recv()
		if err == io.EOF {
			return stream.SendAndClose(&structpb.Struct{Fields: map[string]*structpb.Value{
				"count": structpb.NewNumberValue(float64(count)),
			}})
		}
		if err != nil {
			return err
		}

		s.mu.Lock()
		err = s.write(req)
		s.mu.Unlock()
		if err != nil {
			return err
		}
		count++
	}
}

// GetMapperState returns the inserted board's registers.
func (s *GRPCServer) GetMapperState(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.console.HasCartridge() {
		return nil, status.Error(codes.Unavailable, "no cartridge inserted")
	}
	info, ok := s.console.MapperInfo()
	if !ok {
		return nil, status.Error(codes.Unimplemented, "board does not expose its state")
	}

	fault := ""
	if err := s.console.Err(); err != nil {
		fault = err.Error()
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"name":      structpb.NewStringValue(info.Name),
		"mirroring": structpb.NewStringValue(info.Mirroring.String()),
		"bank":      structpb.NewNumberValue(float64(info.Bank)),
		"banks":     structpb.NewNumberValue(float64(info.Banks)),
		"chr_ram":   structpb.NewBoolValue(info.CHRRAM),
		"fault":     structpb.NewStringValue(fault),
	}}, nil
}

// SaveState writes a save state file on the host.
func (s *GRPCServer) SaveState(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "filename is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.console.SaveState(in.GetValue()); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to save state: %v", err)
	}
	return &emptypb.Empty{}, nil
}

// LoadState commands the emulator to load a specific save state file
func (s *GRPCServer) LoadState(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "filename is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.console.LoadState(in.GetValue()); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to load state: %v", err)
	}
	return &emptypb.Empty{}, nil
}

// write applies one {space, address, value} request. Callers hold mu.
func (s *GRPCServer) write(in *structpb.Struct) error {
	space, err := spaceField(in)
	if err != nil {
		return err
	}
	addr, err := numberField(in, "address", 0xFFFF, nil)
	if err != nil {
		return err
	}
	val, err := numberField(in, "value", 0xFF, nil)
	if err != nil {
		return err
	}

	if err := s.halted(); err != nil {
		return err
	}
	if space == bus.PPU {
		s.console.PPUWrite(uint16(addr), byte(val))
	} else {
		s.console.Write(uint16(addr), byte(val))
	}
	return nil
}

// halted refuses data access once the board has faulted. Callers hold mu.
func (s *GRPCServer) halted() error {
	if err := s.console.Err(); err != nil {
		return status.Errorf(codes.FailedPrecondition, "emulation halted: %v", err)
	}
	return nil
}

func spaceField(in *structpb.Struct) (bus.Space, error) {
	v, ok := in.GetFields()["space"]
	if !ok {
		return bus.CPU, nil
	}
	switch strings.ToLower(v.GetStringValue()) {
	case "cpu":
		return bus.CPU, nil
	case "ppu":
		return bus.PPU, nil
	}
	return 0, status.Errorf(codes.InvalidArgument, "space must be \"cpu\" or \"ppu\", got %v", v.AsInterface())
}

// numberField reads a non-negative integer field no larger than max. A
// missing field yields def, or an error when def is nil.
func numberField(in *structpb.Struct, name string, max uint32, def *uint32) (uint32, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		if def == nil {
			return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
		}
		return *def, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	f := n.NumberValue
	if f < 0 || f > float64(max) || f != math.Trunc(f) {
		return 0, status.Errorf(codes.InvalidArgument, "%s out of range: %v", name, f)
	}
	return uint32(f), nil
}

// Start begins listening for gRPC connections on the given port
func (s *GRPCServer) Start(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	log.Printf("gRPC server listening on :%d", port)
	s.StartListener(lis)
	return nil
}

// StartListener serves on lis in a background goroutine.
func (s *GRPCServer) StartListener(lis net.Listener) {
	s.listener = lis
	s.server = grpc.NewServer()
	RegisterInspectorServer(s.server, s)

	go func() {
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Printf("gRPC server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the gRPC server
func (s *GRPCServer) Stop() {
	if s.server != nil {
		s.server.GracefulStop()
	}
}
