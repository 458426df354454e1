package grpc

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
)

// rawCodec sends pre-encoded frames, standing in for a client generated from signatrust.proto.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(*[]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected message type %T", v)
	}
	return *b, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("unexpected message type %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

func (rawCodec) Name() string {
	return "proto"
}

func encodeRequest(data []byte, keyID, keyType string, options map[string]string) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, data)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, keyID)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendString(b, keyType)
	for k, v := range options {
		var entry []byte
		entry = protowire.AppendTag(entry, 1, protowire.BytesType)
		entry = protowire.AppendString(entry, k)
		entry = protowire.AppendTag(entry, 2, protowire.BytesType)
		entry = protowire.AppendString(entry, v)
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func decodeResponse(t *testing.T, b []byte) *SignStreamResponse {
	t.Helper()

	resp := &SignStreamResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		require.NoError(t, protowire.ParseError(n))
		b = b[n:]
		require.Equal(t, protowire.BytesType, typ)

		value, n := protowire.ConsumeBytes(b)
		require.NoError(t, protowire.ParseError(n))
		b = b[n:]

		switch num {
		case 1:
			resp.Signature = append([]byte(nil), value...)
		case 2:
			resp.Error = string(value)
		default:
			t.Fatalf("unexpected field %d", num)
		}
	}
	return resp
}

func rawSignStream(t *testing.T, conn *grpc.ClientConn, method string, frames ...[]byte) (*SignStreamResponse, error) {
	t.Helper()

	stream, err := conn.NewStream(context.Background(), &grpc.StreamDesc{ClientStreams: true}, method,
		grpc.ForceCodec(rawCodec{}),
	)
	require.NoError(t, err)
	for _, frame := range frames {
		// io.EOF means the server already ended the stream; its status comes from RecvMsg.
		if err := stream.SendMsg(&frame); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
	}
	require.NoError(t, stream.CloseSend())

	var out []byte
	if err := stream.RecvMsg(&out); err != nil {
		return nil, err
	}
	return decodeResponse(t, out), nil
}

func TestFileDescriptor(t *testing.T) {
	service := FileDescriptor.Services().ByName("Signatrust")
	require.NotNil(t, service)
	assert.Equal(t, ServiceName, string(service.FullName()))

	method := service.Methods().ByName("SignStream")
	require.NotNil(t, method)
	assert.True(t, method.IsStreamingClient())
	assert.False(t, method.IsStreamingServer())
	assert.Equal(t, "/signatrust.Signatrust/SignStream", SignStreamMethod)

	options := requestDesc.Fields().ByNumber(4)
	require.NotNil(t, options)
	assert.True(t, options.IsMap())
}

func TestSignStreamRequest_Message(t *testing.T) {
	req := &SignStreamRequest{
		Data:    []byte("ab"),
		KeyID:   "default-pgp",
		KeyType: "openpgp",
		Options: map[string]string{"armored": "false"},
	}

	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(req.Message())
	require.NoError(t, err)
	assert.Equal(t, encodeRequest(req.Data, req.KeyID, req.KeyType, req.Options), b)
}

func TestSignStream_ProtobufWire(t *testing.T) {
	f := newFixture(t, backendSignerFactory)
	dataKey := f.generate(t, dataKeyDomain.KeyTypeOpenPGP, "wire-pgp")

	t.Run("Success_ChunkedFrames", func(t *testing.T) {
		resp, err := rawSignStream(t, f.client.conn, "/signatrust.Signatrust/SignStream",
			encodeRequest([]byte("ab"), "", "", nil),
			encodeRequest([]byte("cd"), "wire-pgp", "openpgp", map[string]string{"detached": "true"}),
		)
		require.NoError(t, err)
		require.Empty(t, resp.Error)

		verifyOpenPGP(t, f.publicMaterial(t, dataKey).PublicKey, []byte("abcd"), resp.Signature)
	})

	t.Run("Success_ErrorInBand", func(t *testing.T) {
		resp, err := rawSignStream(t, f.client.conn, "/signatrust.Signatrust/SignStream",
			encodeRequest([]byte("ab"), "missing", "openpgp", nil),
		)
		require.NoError(t, err)
		assert.Empty(t, resp.Signature)
		assert.Contains(t, resp.Error, "data key not found")
	})

	t.Run("Error_UnknownService", func(t *testing.T) {
		_, err := rawSignStream(t, f.client.conn, "/signatrust.SignatrustService/SignStream",
			encodeRequest([]byte("ab"), "wire-pgp", "openpgp", nil),
		)
		require.Error(t, err)
		assert.Equal(t, codes.Unimplemented, status.Code(err))
	})
}
