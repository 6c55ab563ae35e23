package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/errors"
	"github.com/careconnect/careconnect-go/internal/mocks"
	mockauth "github.com/careconnect/careconnect-go/internal/mocks/auth"
)

func TestRefresh_PersistFailureDoesNotInvalidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh-token" {
			w.Write([]byte(`{"success":true,"data":{"token":"access-new","refreshToken":"refresh-new"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"token expired"}`))
	}))
	defer server.Close()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creds := domainauth.Credentials{
		Tokens: &domainauth.TokenPair{AccessToken: "access-old", RefreshToken: "refresh-old"},
		User:   &domainauth.UserRecord{ID: "u-1", Email: "u@example.com", Role: domainauth.RoleDonor},
	}

	store := mocks.NewMockCredentialStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return(creds, nil).AnyTimes()
	store.EXPECT().Set(gomock.Any(), gomock.Any()).Return(assert.AnError).Times(1)
	// A write failure is not a rejection: the session must not be torn down.
	store.EXPECT().Clear(gomock.Any()).Times(0)

	sink := &mockauth.RecordingSink{}
	client, err := New(Options{
		BaseURL:       server.URL,
		Store:         store,
		Invalidations: sink,
		DemoLatency:   -1,
		Timeout:       5 * time.Second,
	})
	require.NoError(t, err)

	_, err = client.Request(context.Background(), http.MethodGet, "/donations", nil)
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
	assert.Equal(t, 0, sink.Broadcasts())
}
