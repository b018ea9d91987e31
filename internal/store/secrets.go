package store

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
)

// Secrets path
// projects/{project}/secrets/{secretID}/versions/latest

type secretsStore struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretsStore(client *secretmanager.Client, projectID string) *secretsStore {
	return &secretsStore{client: client, projectID: projectID}
}

func (s *secretsStore) versionName(secretID string) string {
	if strings.HasPrefix(secretID, "projects/") {
		if strings.Contains(secretID, "/versions/") {
			return secretID
		}
		return secretID + "/versions/latest"
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, secretID)
}

// GetSecret returns the latest version of secretID. A full resource name is
// accepted as well as a bare id.
func (s *secretsStore) GetSecret(ctx context.Context, secretID string) ([]byte, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.versionName(secretID),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("secret not found: " + secretID)
		}
		transient := status.Code(err) == codes.Unavailable || status.Code(err) == codes.DeadlineExceeded
		return nil, errs.NewExternalServiceError("secretmanager", "failed to access secret", transient, err)
	}
	return res.Payload.Data, nil
}
