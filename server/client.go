package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/meadori/vibecart/bus"
)

// MapperState is the decoded reply of GetMapperState.
type MapperState struct {
	Name      string
	Mirroring string
	Bank      int
	Banks     int
	CHRRAM    bool
	Fault     string
}

// Client is a typed wrapper around an inspector connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a client that issues calls over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// ReadMemory reads size bytes from space starting at addr.
func (c *Client) ReadMemory(ctx context.Context, space bus.Space, addr uint16, size int) ([]byte, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		"space":   structpb.NewStringValue(space.String()),
		"address": structpb.NewNumberValue(float64(addr)),
		"size":    structpb.NewNumberValue(float64(size)),
	}}
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, fullMethod("ReadMemory"), in, out); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

// WriteMemory writes one byte to space.
func (c *Client) WriteMemory(ctx context.Context, space bus.Space, addr uint16, value byte) error {
	return c.cc.Invoke(ctx, fullMethod("WriteMemory"), writeRequest(space, addr, value), new(emptypb.Empty))
}

// MapperState fetches the board's registers.
func (c *Client) MapperState(ctx context.Context) (*MapperState, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetMapperState"), &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	f := out.GetFields()
	return &MapperState{
		Name:      f["name"].GetStringValue(),
		Mirroring: f["mirroring"].GetStringValue(),
		Bank:      int(f["bank"].GetNumberValue()),
		Banks:     int(f["banks"].GetNumberValue()),
		CHRRAM:    f["chr_ram"].GetBoolValue(),
		Fault:     f["fault"].GetStringValue(),
	}, nil
}

// SaveState asks the emulator to write a save state to filename.
func (c *Client) SaveState(ctx context.Context, filename string) error {
	return c.cc.Invoke(ctx, fullMethod("SaveState"), wrapperspb.String(filename), new(emptypb.Empty))
}

// LoadState asks the emulator to restore the save state in filename.
func (c *Client) LoadState(ctx context.Context, filename string) error {
	return c.cc.Invoke(ctx, fullMethod("LoadState"), wrapperspb.String(filename), new(emptypb.Empty))
}

// Write is one entry of a write stream.
type Write struct {
	Space bus.Space
	Addr  uint16
	Value byte
}

// StreamWrites sends writes over one stream and returns how many the
// emulator applied.
func (c *Client) StreamWrites(ctx context.Context, writes []Write) (int, error) {
	s, err := c.cc.NewStream(ctx, &inspectorServiceDesc.Streams[0], fullMethod("StreamWrites"))
	if err != nil {
		return 0, err
	}
	stream := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: s}

	for _, w := range writes {
		if err := stream.Send(writeRequest(w.Space, w.Addr, w.Value)); err != nil {
			// The server's status is only visible from the receive side.
			break
		}
	}
	out, err := stream.CloseAndRecv()
	if err != nil {
		return 0, err
	}
	return int(out.GetFields()["count"].GetNumberValue()), nil
}

func writeRequest(space bus.Space, addr uint16, value byte) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"space":   structpb.NewStringValue(space.String()),
		"address": structpb.NewNumberValue(float64(addr)),
		"value":   structpb.NewNumberValue(float64(value)),
	}}
}
