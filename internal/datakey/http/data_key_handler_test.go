package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	"github.com/allisson/signatrust/internal/datakey/http/dto"
	dataKeyUseCase "github.com/allisson/signatrust/internal/datakey/usecase"
	"github.com/allisson/signatrust/internal/testutil"
)

type mockDataKeyUseCase struct {
	mock.Mock
}

func (m *mockDataKeyUseCase) List(ctx context.Context) ([]*dataKeyDomain.DataKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dataKeyDomain.DataKey), args.Error(1)
}

func (m *mockDataKeyUseCase) Create(
	ctx context.Context,
	input dataKeyUseCase.CreateInput,
) (*dataKeyDomain.DataKey, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataKeyDomain.DataKey), args.Error(1)
}

func (m *mockDataKeyUseCase) Import(
	ctx context.Context,
	input dataKeyUseCase.ImportInput,
) (*dataKeyDomain.DataKey, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataKeyDomain.DataKey), args.Error(1)
}

func (m *mockDataKeyUseCase) Get(ctx context.Context, id uuid.UUID) (*dataKeyDomain.DataKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataKeyDomain.DataKey), args.Error(1)
}

func (m *mockDataKeyUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDataKeyUseCase) Export(ctx context.Context, id uuid.UUID) (*dataKeyDomain.ExportKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataKeyDomain.ExportKey), args.Error(1)
}

func (m *mockDataKeyUseCase) Enable(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDataKeyUseCase) Disable(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func setupRouter(t *testing.T) (*gin.Engine, *mockDataKeyUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	useCase := &mockDataKeyUseCase{}
	t.Cleanup(func() { useCase.AssertExpectations(t) })

	router := gin.New()
	NewDataKeyHandler(useCase, testutil.DiscardLogger()).RegisterRoutes(router.Group("/v1/keys"))
	return router, useCase
}

func serve(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func storedKey() *dataKeyDomain.DataKey {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dataKey := dataKeyDomain.NewDataKey("default-pgp", "release", "admin", "release@example.com",
		dataKeyDomain.KeyTypeOpenPGP, nil, now, now.AddDate(1, 0, 0))
	dataKey.PrivateKey = []byte("ciphertext")
	return dataKey
}

func createBody() dto.CreateDataKeyRequest {
	return dto.CreateDataKeyRequest{
		Name:       "default-pgp",
		Email:      "release@example.com",
		KeyType:    "openpgp",
		Attributes: map[string]string{"key_length": "3072"},
		CreateAt:   "2024-01-01T00:00:00Z",
		ExpireAt:   "2025-01-01T00:00:00Z",
	}
}

func TestDataKeyHandler_Create(t *testing.T) {
	t.Run("Success_Created", func(t *testing.T) {
		router, useCase := setupRouter(t)
		dataKey := storedKey()

		useCase.On("Create", mock.Anything, mock.MatchedBy(func(input dataKeyUseCase.CreateInput) bool {
			return input.Name == "default-pgp" &&
				input.User == "admin" &&
				input.KeyType == dataKeyDomain.KeyTypeOpenPGP &&
				input.Attributes["key_length"] == "3072"
		})).Return(dataKey, nil).Once()

		w := serve(router, http.MethodPost, "/v1/keys", createBody())

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.DataKeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, dataKey.ID.String(), response.ID)
		assert.Equal(t, "enabled", response.KeyState)
		assert.NotContains(t, w.Body.String(), "ciphertext")
	})

	t.Run("Error_DuplicateName", func(t *testing.T) {
		router, useCase := setupRouter(t)
		useCase.On("Create", mock.Anything, mock.Anything).Return(nil, dataKeyDomain.ErrDataKeyAlreadyExists).Once()

		w := serve(router, http.MethodPost, "/v1/keys", createBody())

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_ValidationFailure", func(t *testing.T) {
		router, _ := setupRouter(t)
		body := createBody()
		body.Name = "abc"

		w := serve(router, http.MethodPost, "/v1/keys", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "name")
	})

	t.Run("Error_InvalidParameter", func(t *testing.T) {
		router, useCase := setupRouter(t)
		useCase.On("Create", mock.Anything, mock.Anything).Return(nil, dataKeyDomain.ErrParameter).Once()

		w := serve(router, http.MethodPost, "/v1/keys", createBody())

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys", bytes.NewReader([]byte("{")))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDataKeyHandler_Import(t *testing.T) {
	router, useCase := setupRouter(t)
	dataKey := storedKey()

	useCase.On("Import", mock.Anything, mock.MatchedBy(func(input dataKeyUseCase.ImportInput) bool {
		return string(input.PrivateKey) == "armored private" && input.Name == "default-pgp"
	})).Return(dataKey, nil).Once()

	w := serve(router, http.MethodPost, "/v1/keys/import", dto.ImportDataKeyRequest{
		CreateDataKeyRequest: createBody(),
		PrivateKey:           base64.StdEncoding.EncodeToString([]byte("armored private")),
		PublicKey:            base64.StdEncoding.EncodeToString([]byte("armored public")),
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDataKeyHandler_List(t *testing.T) {
	t.Run("Success_Paginated", func(t *testing.T) {
		router, useCase := setupRouter(t)
		useCase.On("List", mock.Anything).
			Return([]*dataKeyDomain.DataKey{storedKey(), storedKey(), storedKey()}, nil).Once()

		w := serve(router, http.MethodGet, "/v1/keys?offset=1&limit=1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListDataKeysResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 1)
		assert.Equal(t, 3, response.Total)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := serve(router, http.MethodGet, "/v1/keys?limit=1000", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDataKeyHandler_ByID(t *testing.T) {
	t.Run("Success_Get", func(t *testing.T) {
		router, useCase := setupRouter(t)
		dataKey := storedKey()
		useCase.On("Get", mock.Anything, dataKey.ID).Return(dataKey, nil).Once()

		w := serve(router, http.MethodGet, "/v1/keys/"+dataKey.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "default-pgp")
	})

	t.Run("Error_GetNotFound", func(t *testing.T) {
		router, useCase := setupRouter(t)
		id := uuid.Must(uuid.NewV7())
		useCase.On("Get", mock.Anything, id).Return(nil, dataKeyDomain.ErrDataKeyNotFound).Once()

		w := serve(router, http.MethodGet, "/v1/keys/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_InvalidUUID", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := serve(router, http.MethodGet, "/v1/keys/not-a-uuid", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Success_Export", func(t *testing.T) {
		router, useCase := setupRouter(t)
		id := uuid.Must(uuid.NewV7())
		useCase.On("Export", mock.Anything, id).
			Return(&dataKeyDomain.ExportKey{PublicKey: "-----BEGIN PGP PUBLIC KEY BLOCK-----"}, nil).Once()

		w := serve(router, http.MethodGet, "/v1/keys/"+id.String()+"/export", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ExportKeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response.PublicKey, "PGP PUBLIC KEY")
		assert.NotContains(t, w.Body.String(), "private")
	})

	t.Run("Success_StateAndDelete", func(t *testing.T) {
		router, useCase := setupRouter(t)
		id := uuid.Must(uuid.NewV7())
		useCase.On("Disable", mock.Anything, id).Return(nil).Once()
		useCase.On("Enable", mock.Anything, id).Return(nil).Once()
		useCase.On("Delete", mock.Anything, id).Return(nil).Once()

		assert.Equal(t, http.StatusNoContent, serve(router, http.MethodPost, "/v1/keys/"+id.String()+"/disable", nil).Code)
		assert.Equal(t, http.StatusNoContent, serve(router, http.MethodPost, "/v1/keys/"+id.String()+"/enable", nil).Code)
		assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/v1/keys/"+id.String(), nil).Code)
	})

	t.Run("Error_DeleteNotFound", func(t *testing.T) {
		router, useCase := setupRouter(t)
		id := uuid.Must(uuid.NewV7())
		useCase.On("Delete", mock.Anything, id).Return(dataKeyDomain.ErrDataKeyNotFound).Once()

		w := serve(router, http.MethodDelete, "/v1/keys/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
