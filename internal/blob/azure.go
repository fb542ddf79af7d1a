package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/storylingo/storylingo/internal/common"
)

type azureStore struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// NewAzureStore connects to Azure Blob Storage and ensures the
// container exists.
func NewAzureStore(ctx context.Context, connectionString, container string, logger *slog.Logger) (Store, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	_, err = client.CreateContainer(ctx, container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("ensuring container %q: %w", container, err)
	}
	logger.Info("blob store ready", "container", container)
	return &azureStore{client: client, container: container, logger: logger}, nil
}

func (s *azureStore) UploadJSON(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, name, data, nil); err != nil {
		s.logger.Error("blob upload failed", "name", name, "error", err)
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	s.logger.Debug("blob uploaded", "name", name, "bytes", len(data))
	return nil
}

func (s *azureStore) DownloadJSON(ctx context.Context, name string, v any) error {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return common.NewAppError("BLOB_NOT_FOUND", fmt.Sprintf("blob %s not found", name), common.ErrNotFound)
		}
		s.logger.Error("blob download failed", "name", name, "error", err)
		return fmt.Errorf("downloading %s: %w", name, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func (s *azureStore) Exists(ctx context.Context, name string) (bool, error) {
	blobClient := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(name)
	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", name, err)
	}
	return true, nil
}

func (s *azureStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: to.Ptr(prefix),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *azureStore) DeletePrefix(ctx context.Context, prefix string) error {
	names, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := s.client.DeleteBlob(ctx, s.container, name, nil); err != nil {
			if bloberror.HasCode(err, bloberror.BlobNotFound) {
				continue
			}
			s.logger.Error("blob delete failed", "name", name, "error", err)
			return fmt.Errorf("deleting %s: %w", name, err)
		}
	}
	if len(names) > 0 {
		s.logger.Info("blobs deleted", "prefix", prefix, "count", len(names))
	}
	return nil
}
