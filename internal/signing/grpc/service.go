// Package grpc exposes signing over a client-streaming RPC. A stream carries the content
// to sign in chunks plus the key selection; the response reports either a signature or
// an error message.
package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"google.golang.org/grpc"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	apperrors "github.com/allisson/signatrust/internal/errors"
	signingService "github.com/allisson/signatrust/internal/signing/service"
)

const (
	ServiceName      = "signatrust.Signatrust"
	SignStreamMethod = "/" + ServiceName + "/SignStream"
)

// ErrPayloadTooLarge is reported in-band when a stream carries more data than the handler accepts.
var ErrPayloadTooLarge = apperrors.Wrap(dataKeyDomain.ErrParameter, "sign payload too large")

// SignStreamRequest is one chunk of a sign stream. It maps to signatrust.SignStreamRequest.
type SignStreamRequest struct {
	Data    []byte
	KeyID   string
	KeyType string
	Options map[string]string
}

// SignStreamResponse holds the signature, or a non-empty Error when signing failed.
// It maps to signatrust.SignStreamResponse.
type SignStreamResponse struct {
	Signature []byte
	Error     string
}

// SignatrustServer is the server API of the signing service.
type SignatrustServer interface {
	SignStream(stream grpc.ClientStreamingServer[SignStreamRequest, SignStreamResponse]) error
}

// ServiceDesc describes the signing service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SignatrustServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SignStream",
			Handler:       signStreamHandler,
			ClientStreams: true,
		},
	},
	Metadata: "signatrust.proto",
}

func signStreamHandler(srv any, stream grpc.ServerStream) error {
	return srv.(SignatrustServer).SignStream(
		&signStreamServer{ServerStream: stream},
	)
}

// Signer signs content with the key named by a type and a name.
type Signer interface {
	Sign(
		ctx context.Context,
		keyType dataKeyDomain.KeyType,
		name string,
		content []byte,
		options map[string]string,
	) ([]byte, error)
}

// DataKeyResolver returns the data key snapshot for a type and a name.
type DataKeyResolver interface {
	Get(ctx context.Context, keyType dataKeyDomain.KeyType, name string) (*dataKeyDomain.DataKey, error)
}

// DataKeySigner signs with the backend.
type DataKeySigner interface {
	Sign(ctx context.Context, dataKey *dataKeyDomain.DataKey, content []byte, options map[string]string) ([]byte, error)
}

// PluginResolver returns a ready signing plugin for a type and a name.
type PluginResolver interface {
	Get(ctx context.Context, keyType dataKeyDomain.KeyType, name string) (signingService.SigningPlugin, error)
}

type backendSigner struct {
	keys    DataKeyResolver
	backend DataKeySigner
}

// NewBackendSigner resolves data keys through keys and decrypts them for every request.
func NewBackendSigner(keys DataKeyResolver, backend DataKeySigner) Signer {
	return &backendSigner{keys: keys, backend: backend}
}

func (s *backendSigner) Sign(
	ctx context.Context,
	keyType dataKeyDomain.KeyType,
	name string,
	content []byte,
	options map[string]string,
) ([]byte, error) {
	dataKey, err := s.keys.Get(ctx, keyType, name)
	if err != nil {
		return nil, err
	}
	return s.backend.Sign(ctx, dataKey, content, options)
}

type pluginSigner struct {
	plugins PluginResolver
}

// NewPluginSigner signs with cached plugins, so key material is decrypted once per key.
func NewPluginSigner(plugins PluginResolver) Signer {
	return &pluginSigner{plugins: plugins}
}

func (s *pluginSigner) Sign(
	ctx context.Context,
	keyType dataKeyDomain.KeyType,
	name string,
	content []byte,
	options map[string]string,
) ([]byte, error) {
	plugin, err := s.plugins.Get(ctx, keyType, name)
	if err != nil {
		return nil, err
	}
	return plugin.Sign(content, options)
}

// SignHandler implements SignatrustServer.
type SignHandler struct {
	signer         Signer
	maxPayloadSize int
	logger         *slog.Logger
}

// NewSignHandler creates a SignHandler. Streams whose concatenated data exceeds
// maxPayloadSize bytes are refused; zero or less accepts any size.
func NewSignHandler(signer Signer, maxPayloadSize int, logger *slog.Logger) *SignHandler {
	return &SignHandler{signer: signer, maxPayloadSize: maxPayloadSize, logger: logger}
}

// SignStream reads the whole stream, then signs the concatenated data. Every chunk
// replaces the key selection and options, so the values of the last chunk are used.
// Signing failures and an oversized payload are returned in SignStreamResponse.Error
// with an OK status; only receive failures end the RPC with an error status.
func (h *SignHandler) SignStream(stream grpc.ClientStreamingServer[SignStreamRequest, SignStreamResponse]) error {
	var (
		content []byte
		keyName string
		keyType string
		options map[string]string
	)

	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if h.maxPayloadSize > 0 && len(content)+len(req.Data) > h.maxPayloadSize {
			h.logger.Warn("sign request refused",
				slog.String("key_type", req.KeyType),
				slog.String("key_name", req.KeyID),
				slog.Int("max_payload_size", h.maxPayloadSize),
			)
			return stream.SendAndClose(&SignStreamResponse{Error: ErrPayloadTooLarge.Error()})
		}

		content = append(content, req.Data...)
		keyName = req.KeyID
		keyType = req.KeyType
		options = req.Options
	}

	signature, err := h.sign(stream.Context(), keyType, keyName, content, options)
	if err != nil {
		h.logger.Warn("sign request failed",
			slog.String("key_type", keyType),
			slog.String("key_name", keyName),
			slog.Int("content_size", len(content)),
			slog.Any("error", err),
		)
		return stream.SendAndClose(&SignStreamResponse{Error: err.Error()})
	}

	h.logger.Debug("sign request completed",
		slog.String("key_type", keyType),
		slog.String("key_name", keyName),
		slog.Int("content_size", len(content)),
	)
	return stream.SendAndClose(&SignStreamResponse{Signature: signature})
}

func (h *SignHandler) sign(
	ctx context.Context,
	keyType, keyName string,
	content []byte,
	options map[string]string,
) ([]byte, error) {
	parsedType, err := dataKeyDomain.ParseKeyType(keyType)
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = map[string]string{}
	}
	return h.signer.Sign(ctx, parsedType, keyName, content, options)
}
