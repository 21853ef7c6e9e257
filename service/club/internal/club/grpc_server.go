package club

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"Futbotchi/pkg/grpcx"
	"Futbotchi/service/club/internal/match"
	"Futbotchi/service/club/internal/roster"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName e' il nome gRPC completo del servizio.
const ServiceName = "futbotchi.club.v1.ClubService"

// ClubServiceServer e' il contratto del handler: ogni metodo riceve e ritorna un google.protobuf.Struct.
type ClubServiceServer interface {
	Start(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRoster(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BuyPlayer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleActive(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetLineup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReleasePlayer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PlayMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Support(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClaimBonus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Leaderboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ClubServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ClubServiceDesc descrive i metodi unari del servizio per grpc.Server.
var ClubServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClubServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Start", Handler: unaryHandler("Start", ClubServiceServer.Start)},
		{MethodName: "GetRoster", Handler: unaryHandler("GetRoster", ClubServiceServer.GetRoster)},
		{MethodName: "BuyPlayer", Handler: unaryHandler("BuyPlayer", ClubServiceServer.BuyPlayer)},
		{MethodName: "ToggleActive", Handler: unaryHandler("ToggleActive", ClubServiceServer.ToggleActive)},
		{MethodName: "SetLineup", Handler: unaryHandler("SetLineup", ClubServiceServer.SetLineup)},
		{MethodName: "ReleasePlayer", Handler: unaryHandler("ReleasePlayer", ClubServiceServer.ReleasePlayer)},
		{MethodName: "PlayMatch", Handler: unaryHandler("PlayMatch", ClubServiceServer.PlayMatch)},
		{MethodName: "Support", Handler: unaryHandler("Support", ClubServiceServer.Support)},
		{MethodName: "ClaimBonus", Handler: unaryHandler("ClaimBonus", ClubServiceServer.ClaimBonus)},
		{MethodName: "Leaderboard", Handler: unaryHandler("Leaderboard", ClubServiceServer.Leaderboard)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "futbotchi/club/v1/club.proto",
}

// RegisterClubServiceServer registra il handler sul server gRPC.
func RegisterClubServiceServer(reg grpc.ServiceRegistrar, srv ClubServiceServer) {
	reg.RegisterService(&ClubServiceDesc, srv)
}

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ClubServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ClubServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GRPCServer espone il handler gRPC per il club-svc.
// Qui si leggono le metadata gRPC e si mappano gli errori in codici gRPC.
type GRPCServer struct {
	game   Game
	logger *slog.Logger
}

// NewGRPCServer crea il server gRPC con il dominio.
func NewGRPCServer(game Game, logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCServer{game: game, logger: logger}
}

// Start crea la squadra: {team_name}.
func (s *GRPCServer) Start(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, req, func(userID string) (any, error) {
		name := stringField(req, "team_name")
		if name == "" {
			return nil, status.Error(codes.InvalidArgument, "team_name is required")
		}
		return s.game.Start(ctx, userID, name)
	})
}

// GetRoster ritorna la rosa dell'utente.
func (s *GRPCServer) GetRoster(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, req, func(userID string) (any, error) {
		return s.game.GetRoster(ctx, userID)
	})
}

// BuyPlayer acquista una carta.
func (s *GRPCServer) BuyPlayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, req, func(userID string) (any, error) {
		return s.game.BuyPlayer(ctx, userID)
	})
}

// ToggleActive cambia lo stato titolare di una carta: {card_id}.
func (s *GRPCServer) ToggleActive(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, req, func(userID string) (any, error) {
		id, err := intField(req, "card_id")
		if err != nil {
			return nil, err
		}
		return s.game.ToggleActive(ctx, userID, id)
	})
}

// SetLineup imposta la formazione: {card_ids}.
func (s *GRPCServer) SetLineup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, req, func(userID string) (any, error) {
		ids, err := intListField(req, "card_ids")
		if err != nil {
			return nil, err
		}
		return s.game.SetLineup(ctx, userID, ids)
	})
}

// ReleasePlayer svincola una carta: {card_id}.
func (s *GRPCServer) ReleasePlayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, req, func(userID string) (any, error) {
		id, err := intField(req, "card_id")
		if err != nil {
			return nil, err
		}
		return s.game.ReleasePlayer(ctx, userID, id)
	})
}

// PlayMatch gioca una partita: {difficulty}.
func (s *GRPCServer) PlayMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, req, func(userID string) (any, error) {
		d, err := match.ParseDifficulty(stringField(req, "difficulty"))
		if err != nil {
			return nil, err
		}
		return s.game.PlayMatch(ctx, userID, d)
	})
}

// Support esegue un'azione di supporto: {action, strategy}.
func (s *GRPCServer) Support(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, req, func(userID string) (any, error) {
		action := SupportAction(strings.ToLower(stringField(req, "action")))
		return s.game.Support(ctx, userID, action, stringField(req, "strategy"))
	})
}

// ClaimBonus consuma un bonus: {bonus}.
func (s *GRPCServer) ClaimBonus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, req, func(userID string) (any, error) {
		bonus, err := roster.ParseAction(strings.ToLower(stringField(req, "bonus")))
		if err != nil {
			return nil, err
		}
		return s.game.ClaimBonus(ctx, userID, bonus)
	})
}

// Leaderboard ritorna la classifica: {limit}. Non richiede user_id.
func (s *GRPCServer) Leaderboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	limit := 0
	if _, ok := req.GetFields()["limit"]; ok {
		n, err := intField(req, "limit")
		if err != nil {
			return nil, err
		}
		limit = n
	}
	entries, err := s.game.Leaderboard(ctx, limit)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(map[string]any{"teams": entries})
}

// handle applica i passi comuni: richiesta, user_id, chiamata di dominio, mapping errori, encoding.
func (s *GRPCServer) handle(ctx context.Context, req *structpb.Struct, call func(userID string) (any, error)) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	result, err := call(userID)
	if err != nil {
		if _, ok := status.FromError(err); ok {
			return nil, err
		}
		return nil, s.toStatus(ctx, err, "user_id", userID)
	}
	return encode(result)
}

// toStatus traduce gli errori di dominio nei codici gRPC; il resto viene loggato e reso generico.
func (s *GRPCServer) toStatus(ctx context.Context, err error, attrs ...any) error {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	case errors.Is(err, ErrRosterNotFound):
		return status.Error(codes.NotFound, "roster not found, call Start first")
	case errors.Is(err, ErrRosterExists):
		return status.Error(codes.AlreadyExists, "team already created")
	case errors.Is(err, ErrBusy):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, roster.ErrCooldown):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, roster.ErrRosterFull), errors.Is(err, roster.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, roster.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		s.logger.ErrorContext(ctx, "errore interno club-svc", append(attrs, "error", err)...)
		return status.Error(codes.Internal, "internal error")
	}
}

// userIDFromContext prova prima dalle metadata gRPC, poi dal context locale.
func userIDFromContext(ctx context.Context) (string, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(grpcx.UserIDMetadataKey); len(values) > 0 {
			if userID := strings.TrimSpace(values[0]); userID != "" {
				return userID, nil
			}
		}
	}

	userID, ok := ctx.Value(grpcx.ContextUserIDKey).(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return "", ErrUnauthenticated
	}
	return strings.TrimSpace(userID), nil
}

// encode passa dalla forma JSON dei tipi di dominio a un Struct.
func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

// decode e' l'inverso di encode, usato dai client.
func decode(in *structpb.Struct, v any) error {
	data, err := in.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func stringField(req *structpb.Struct, key string) string {
	return strings.TrimSpace(req.GetFields()[key].GetStringValue())
}

func intField(req *structpb.Struct, key string) (int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return toInt(key, v)
}

func intListField(req *structpb.Struct, key string) ([]int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return []int{}, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a list", key)
	}
	out := make([]int, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		n, err := toInt(key, item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func toInt(key string, v *structpb.Value) (int, error) {
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
	f := v.GetNumberValue()
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be an integer", key))
	}
	return int(f), nil
}
