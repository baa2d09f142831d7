package livekit

import (
	"context"
	"fmt"

	livekit "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"

	"github.com/johnquangdev/standup-assistant/pkg/config"
)

// Recorder captures room audio into object storage
type Recorder interface {
	// Start records the room's mixed audio to the object key
	Start(ctx context.Context, roomName, key string) (*livekit.EgressInfo, error)
	Stop(ctx context.Context, egressID string) (*livekit.EgressInfo, error)
}

// EgressRecorder records with audio-only room composite egress straight to S3/MinIO
type EgressRecorder struct {
	client  *lksdk.EgressClient
	storage config.StorageConfig
}

func NewEgressRecorder(lk config.LiveKitConfig, storage config.StorageConfig) *EgressRecorder {
	return &EgressRecorder{
		client:  lksdk.NewEgressClient(lk.URL, lk.APIKey, lk.APISecret),
		storage: storage,
	}
}

func (r *EgressRecorder) Start(ctx context.Context, roomName, key string) (*livekit.EgressInfo, error) {
	req := &livekit.RoomCompositeEgressRequest{
		RoomName:  roomName,
		AudioOnly: true,
		FileOutputs: []*livekit.EncodedFileOutput{{
			FileType: livekit.EncodedFileType_OGG,
			Filepath: key,
			Output: &livekit.EncodedFileOutput_S3{
				S3: &livekit.S3Upload{
					AccessKey:      r.storage.AccessKeyID,
					Secret:         r.storage.SecretAccessKey,
					Region:         r.storage.Region,
					Endpoint:       r.endpoint(),
					Bucket:         r.storage.BucketName,
					ForcePathStyle: true, // Required for MinIO
				},
			},
		}},
	}

	info, err := r.client.StartRoomCompositeEgress(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start egress: %w", err)
	}
	return info, nil
}

func (r *EgressRecorder) Stop(ctx context.Context, egressID string) (*livekit.EgressInfo, error) {
	info, err := r.client.StopEgress(ctx, &livekit.StopEgressRequest{EgressId: egressID})
	if err != nil {
		return nil, fmt.Errorf("failed to stop egress: %w", err)
	}
	return info, nil
}

func (r *EgressRecorder) endpoint() string {
	scheme := "http://"
	if r.storage.UseSSL {
		scheme = "https://"
	}
	return scheme + r.storage.Endpoint
}
