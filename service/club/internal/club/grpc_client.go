package club

import (
	"context"

	"Futbotchi/pkg/grpcx"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client chiama ClubService per conto di un utente (bot, club-check).
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient avvolge una connessione gRPC.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invoca un metodo unario con la richiesta data e decodifica la risposta in out (se non nil).
func (c *Client) Call(ctx context.Context, userID, method string, req map[string]any, out any) error {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return err
	}
	if userID != "" {
		ctx = grpcx.OutgoingUserID(ctx, userID)
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(resp, out)
}
