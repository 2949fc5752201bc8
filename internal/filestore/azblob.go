package filestore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"
)

const (
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// AzureBlob stores files as blobs in one container.
type AzureBlob struct {
	client    *azblob.Client
	container string
	logger    *zap.Logger
}

// NewAzureBlob connects with the well-known Azurite key when serviceURL is
// plain http, and with DefaultAzureCredential otherwise.
func NewAzureBlob(ctx context.Context, serviceURL, container string, logger *zap.Logger) (*AzureBlob, error) {
	var client *azblob.Client
	if strings.HasPrefix(serviceURL, "http://") {
		logger.Info("Using Azurite shared key credentials for blob storage")
		cred, err := azblob.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}

	_, err := client.CreateContainer(ctx, container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		logger.Warn("Failed to create blob container", zap.String("container", container), zap.Error(err))
	}

	logger.Info("Using Azure Blob statement storage", zap.String("container", container))
	return &AzureBlob{client: client, container: container, logger: logger}, nil
}

func (s *AzureBlob) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload: %w", err)
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, key, data, nil); err != nil {
		return 0, fmt.Errorf("failed to upload blob %s/%s: %w", s.container, key, err)
	}
	return int64(len(data)), nil
}

func (s *AzureBlob) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s/%s: %w", s.container, key, err)
	}
	return resp.Body, nil
}

func (s *AzureBlob) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, key, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("failed to delete blob %s/%s: %w", s.container, key, err)
	}
	return nil
}

func (s *AzureBlob) Close() error {
	return nil
}
