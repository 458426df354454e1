package dto

import (
	"time"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	"github.com/allisson/signatrust/internal/httputil"
)

// DataKeyResponse represents a data key in API responses. Key material is never included.
type DataKeyResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	User        string            `json:"user"`
	Email       string            `json:"email"`
	Attributes  map[string]string `json:"attributes"`
	KeyType     string            `json:"key_type"`
	KeyState    string            `json:"key_state"`
	CreateAt    time.Time         `json:"create_at"`
	ExpireAt    time.Time         `json:"expire_at"`
}

// MapDataKeyToResponse converts a domain data key to an API response.
func MapDataKeyToResponse(dataKey *dataKeyDomain.DataKey) DataKeyResponse {
	return DataKeyResponse{
		ID:          dataKey.ID.String(),
		Name:        dataKey.Name,
		Description: dataKey.Description,
		User:        dataKey.User,
		Email:       dataKey.Email,
		Attributes:  dataKey.Attributes,
		KeyType:     dataKey.KeyType.String(),
		KeyState:    dataKey.KeyState.String(),
		CreateAt:    dataKey.CreatedAt,
		ExpireAt:    dataKey.ExpireAt,
	}
}

// ListDataKeysResponse is one page of data keys.
type ListDataKeysResponse struct {
	Data   []DataKeyResponse `json:"data"`
	Total  int               `json:"total"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
}

// MapDataKeysToListResponse renders the requested page of dataKeys. Total counts all keys.
func MapDataKeysToListResponse(dataKeys []*dataKeyDomain.DataKey, page httputil.Page) ListDataKeysResponse {
	window := httputil.Slice(dataKeys, page)
	response := ListDataKeysResponse{
		Data:   make([]DataKeyResponse, 0, len(window)),
		Total:  len(dataKeys),
		Offset: page.Offset,
		Limit:  page.Limit,
	}
	for _, dataKey := range window {
		response.Data = append(response.Data, MapDataKeyToResponse(dataKey))
	}
	return response
}

// ExportKeyResponse contains the public material of a data key.
type ExportKeyResponse struct {
	PublicKey   string `json:"public_key"`
	Certificate string `json:"certificate"`
}

// MapExportKeyToResponse converts an exported key to an API response.
func MapExportKeyToResponse(exported *dataKeyDomain.ExportKey) ExportKeyResponse {
	return ExportKeyResponse{
		PublicKey:   exported.PublicKey,
		Certificate: exported.Certificate,
	}
}
