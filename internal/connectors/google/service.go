package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveReadOnlyScope is the only scope salasync requests.
const DriveReadOnlyScope = drive.DriveReadonlyScope

// NewDriveService creates a Google Drive API service using the provided TokenSource.
// Extra options are appended, which lets tests point the client at a local endpoint.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	all := make([]option.ClientOption, 0, len(opts)+1)
	if ts != nil {
		all = append(all, option.WithTokenSource(ts))
	}
	all = append(all, opts...)

	svc, err := drive.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}
