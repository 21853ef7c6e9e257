// Package grpcx raccoglie le convenzioni condivise per propagare l'identita' del giocatore su gRPC.
package grpcx

import (
	"context"

	"google.golang.org/grpc/metadata"
)

type contextKey string

// ContextUserIDKey e' la chiave per il context locale (chiamate in-process, test).
const ContextUserIDKey contextKey = "user_id"

// UserIDMetadataKey e' la chiave metadata che il bot imposta con l'id chat dell'utente.
const UserIDMetadataKey = "user_id"

// WithUserID salva l'id utente nel context locale.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, userID)
}

// OutgoingUserID aggiunge l'id utente alle metadata di una chiamata client.
func OutgoingUserID(ctx context.Context, userID string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, UserIDMetadataKey, userID)
}
