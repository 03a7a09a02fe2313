package treasury

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/atinyakov/SolForge/internal/solana"
)

// ErrSecretNotFound is returned when the secret or its version is missing.
var ErrSecretNotFound = errors.New("treasury secret not found")

// secretAccessor is the part of the Secret Manager client the provider uses.
type secretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *smpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*smpb.AccessSecretVersionResponse, error)
}

// SecretManagerProvider reads the treasury keypair from GCP Secret Manager.
// A successful load is cached; failures are retried on the next call.
type SecretManagerProvider struct {
	client  secretAccessor
	name    string
	address string

	mu     sync.Mutex
	cached *types.Account
}

// NewSecretManagerProvider connects to Secret Manager. secret is either a
// full resource name or a bare secret id resolved against projectID (or
// GOOGLE_CLOUD_PROJECT) at version latest.
func NewSecretManagerProvider(ctx context.Context, secret, projectID, address string) (*SecretManagerProvider, error) {
	name, err := resourceName(secret, projectID)
	if err != nil {
		return nil, err
	}
	c, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secretmanager client: %w", err)
	}
	return newSecretManagerProvider(c, name, address), nil
}

func newSecretManagerProvider(c secretAccessor, name, address string) *SecretManagerProvider {
	return &SecretManagerProvider{client: c, name: name, address: strings.TrimSpace(address)}
}

func resourceName(secret, projectID string) (string, error) {
	s := strings.TrimSpace(secret)
	if strings.HasPrefix(s, "projects/") {
		if !strings.Contains(s, "/versions/") {
			s += "/versions/latest"
		}
		return s, nil
	}
	pid := strings.TrimSpace(projectID)
	if pid == "" {
		pid = strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT"))
	}
	if pid == "" {
		return "", fmt.Errorf("%w: secret %q needs a project id", ErrNotConfigured, s)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", pid, s), nil
}

// Treasury implements Provider.
func (p *SecretManagerProvider) Treasury(ctx context.Context) (types.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil {
		return *p.cached, nil
	}

	res, err := p.client.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{Name: p.name})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Account{}, fmt.Errorf("%w: %s", ErrSecretNotFound, p.name)
		}
		return types.Account{}, fmt.Errorf("access secret %s: %w", p.name, err)
	}
	if res == nil || res.Payload == nil || len(res.Payload.Data) == 0 {
		return types.Account{}, fmt.Errorf("%w: %s is empty", ErrSecretNotFound, p.name)
	}

	acc, err := solana.ParseKeypairJSON(res.Payload.Data)
	if err != nil {
		return types.Account{}, err
	}
	if err := verify(acc, p.address); err != nil {
		return types.Account{}, err
	}
	p.cached = &acc
	return acc, nil
}
