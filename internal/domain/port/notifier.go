package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, userEmail string, sessionID string, videoName string, errorMsg string) error
}
