package rpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/xtding233/progression-engine/internal/gameerr"
)

// Dial opens a plaintext connection that speaks the JSON codec by default.
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return conn, nil
}

// Client calls the progression service. Domain failures come back as
// *gameerr.Error, so errors.Is works against the gameerr sentinels.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, FromStatus(err)
	}
	return out, nil
}

func (c *Client) StageInfo(ctx context.Context, in *StageInfoRequest, opts ...grpc.CallOption) (*StageInfoResponse, error) {
	return invoke[StageInfoRequest, StageInfoResponse](ctx, c.cc, "StageInfo", in, opts)
}

func (c *Client) Simulate(ctx context.Context, in *SimulateRequest, opts ...grpc.CallOption) (*SimulateResponse, error) {
	return invoke[SimulateRequest, SimulateResponse](ctx, c.cc, "Simulate", in, opts)
}

func (c *Client) StartBattle(ctx context.Context, in *StartBattleRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[StartBattleRequest, BattleResponse](ctx, c.cc, "StartBattle", in, opts)
}

func (c *Client) PlayerTurn(ctx context.Context, in *TurnRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[TurnRequest, BattleResponse](ctx, c.cc, "PlayerTurn", in, opts)
}

func (c *Client) BossTurn(ctx context.Context, in *TurnRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[TurnRequest, BattleResponse](ctx, c.cc, "BossTurn", in, opts)
}

func (c *Client) Enhance(ctx context.Context, in *EnhanceRequest, opts ...grpc.CallOption) (*EnhanceResponse, error) {
	return invoke[EnhanceRequest, EnhanceResponse](ctx, c.cc, "Enhance", in, opts)
}

func (c *Client) Drop(ctx context.Context, in *DropRequest, opts ...grpc.CallOption) (*DropResponse, error) {
	return invoke[DropRequest, DropResponse](ctx, c.cc, "Drop", in, opts)
}

func (c *Client) OpenBox(ctx context.Context, in *OpenBoxRequest, opts ...grpc.CallOption) (*OpenBoxResponse, error) {
	return invoke[OpenBoxRequest, OpenBoxResponse](ctx, c.cc, "OpenBox", in, opts)
}

func (c *Client) Sell(ctx context.Context, in *SellRequest, opts ...grpc.CallOption) (*SellResponse, error) {
	return invoke[SellRequest, SellResponse](ctx, c.cc, "Sell", in, opts)
}

// FromStatus turns a status error carrying a gameerr ErrorInfo back into
// a *gameerr.Error. Other errors are returned unchanged.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != gameerr.Domain {
			continue
		}
		return &gameerr.Error{
			Code:     gameerr.Code(info.GetReason()),
			Message:  st.Message(),
			Metadata: info.GetMetadata(),
		}
	}
	return err
}

// WaitForHealth blocks until the health check for service reports SERVING
// or ctx ends.
func WaitForHealth(ctx context.Context, cc grpc.ClientConnInterface, service string) error {
	if cc == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	healthClient := grpc_health_v1.NewHealthClient(cc)
	backoff := 100 * time.Millisecond
	for {
		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		resp, err := healthClient.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		if err == nil && resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for gRPC health: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, time.Second)
	}
}
