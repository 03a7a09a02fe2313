package treasury

import (
	"context"
	"errors"
	"testing"

	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/atinyakov/SolForge/internal/solana"
)

func keypairJSON(t *testing.T, acc types.Account) string {
	t.Helper()
	b, err := solana.MarshalKeypairJSON(acc)
	require.NoError(t, err)
	return string(b)
}

func TestKeyProvider(t *testing.T) {
	acc := types.NewAccount()
	secret := keypairJSON(t, acc)

	tests := []struct {
		name    string
		secret  string
		address string
		want    error
	}{
		{name: "valid", secret: secret},
		{name: "valid with matching address", secret: secret, address: acc.PublicKey.ToBase58()},
		{name: "empty", secret: "  ", want: ErrNotConfigured},
		{name: "garbage", secret: "not-a-key", want: solana.ErrInvalidKeypair},
		{name: "wrong address", secret: secret, address: types.NewAccount().PublicKey.ToBase58(), want: ErrAddressMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewKeyProvider(tt.secret, tt.address).Treasury(context.Background())
			if tt.want != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.want), err.Error())
				assert.NotContains(t, err.Error(), secret)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, acc.PublicKey, got.PublicKey)
		})
	}
}

type fakeAccessor struct {
	calls int
	data  []byte
	err   error
	names []string
}

func (f *fakeAccessor) AccessSecretVersion(_ context.Context, req *smpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*smpb.AccessSecretVersionResponse, error) {
	f.calls++
	f.names = append(f.names, req.GetName())
	if f.err != nil {
		return nil, f.err
	}
	return &smpb.AccessSecretVersionResponse{Payload: &smpb.SecretPayload{Data: f.data}}, nil
}

func TestSecretManagerProvider_CachesSuccess(t *testing.T) {
	acc := types.NewAccount()
	fa := &fakeAccessor{data: []byte(keypairJSON(t, acc))}
	p := newSecretManagerProvider(fa, "projects/p/secrets/treasury/versions/latest", acc.PublicKey.ToBase58())

	for i := 0; i < 3; i++ {
		got, err := p.Treasury(context.Background())
		require.NoError(t, err)
		assert.Equal(t, acc.PublicKey, got.PublicKey)
	}
	assert.Equal(t, 1, fa.calls)
	assert.Equal(t, []string{"projects/p/secrets/treasury/versions/latest"}, fa.names)
}

func TestSecretManagerProvider_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		fa := &fakeAccessor{err: status.Error(codes.NotFound, "secret missing")}
		p := newSecretManagerProvider(fa, "projects/p/secrets/s/versions/latest", "")
		_, err := p.Treasury(context.Background())
		assert.True(t, errors.Is(err, ErrSecretNotFound))

		fa.err = nil
		fa.data = []byte(keypairJSON(t, types.NewAccount()))
		_, err = p.Treasury(context.Background())
		assert.NoError(t, err, "failures are retried")
		assert.Equal(t, 2, fa.calls)
	})

	t.Run("empty payload", func(t *testing.T) {
		p := newSecretManagerProvider(&fakeAccessor{}, "projects/p/secrets/s/versions/latest", "")
		_, err := p.Treasury(context.Background())
		assert.True(t, errors.Is(err, ErrSecretNotFound))
	})

	t.Run("permission denied", func(t *testing.T) {
		fa := &fakeAccessor{err: status.Error(codes.PermissionDenied, "nope")}
		p := newSecretManagerProvider(fa, "projects/p/secrets/s/versions/latest", "")
		_, err := p.Treasury(context.Background())
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrSecretNotFound))
	})
}

func TestResourceName(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	tests := []struct {
		secret, project, want string
		wantErr               bool
	}{
		{secret: "projects/p/secrets/s/versions/3", want: "projects/p/secrets/s/versions/3"},
		{secret: "projects/p/secrets/s", want: "projects/p/secrets/s/versions/latest"},
		{secret: "treasury", project: "forge", want: "projects/forge/secrets/treasury/versions/latest"},
		{secret: "treasury", wantErr: true},
	}
	for _, tt := range tests {
		got, err := resourceName(tt.secret, tt.project)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrNotConfigured))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNew_SelectsSource(t *testing.T) {
	p, err := New(context.Background(), Options{})
	require.NoError(t, err)
	_, err = p.Treasury(context.Background())
	assert.True(t, errors.Is(err, ErrNotConfigured))

	acc := types.NewAccount()
	p, err = New(context.Background(), Options{SecretKey: keypairJSON(t, acc)})
	require.NoError(t, err)
	got, err := p.Treasury(context.Background())
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey, got.PublicKey)
}
