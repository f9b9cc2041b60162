package workflow

import (
	"context"

	"github.com/kbility/taxassist/internal/document"
)

// Transport is the request/response boundary to the backend services.
// *client.Client satisfies it; tests substitute fakes.
type Transport interface {
	Upload(ctx context.Context, up document.Upload) (document.Result, error)
	UploadMulti(ctx context.Context, ups []document.Upload) (document.Result, error)
	Analyze(ctx context.Context, recipient, message string) (string, error)
	Summary(ctx context.Context, recipient string) (string, error)
	GeneralChat(ctx context.Context, message string) (string, error)
	GeneralSummary(ctx context.Context) (string, error)
	SearchIRS(ctx context.Context, query string) (string, error)
	QuickIRS(ctx context.Context, topic string) (string, error)
}
