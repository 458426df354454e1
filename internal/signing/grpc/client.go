package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DefaultChunkSize is the chunk size used when SignStream is given a non-positive one.
const DefaultChunkSize = 2 * 1024 * 1024

// Client calls the signing service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a plaintext client for target.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client: %w", err)
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection. The caller keeps ownership of conn.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SignStream streams content in chunks of chunkSize and returns the signature.
// The key selection and options are sent with every chunk. A SignStreamResponse
// carrying an error is returned as an error.
func (c *Client) SignStream(
	ctx context.Context,
	keyType, keyName string,
	options map[string]string,
	content io.Reader,
	chunkSize int,
) ([]byte, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	stream, err := c.OpenSignStream(ctx)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, chunkSize)
	sent := false
send:
	for {
		n, readErr := io.ReadFull(content, buf)
		if n > 0 || !sent {
			req := &SignStreamRequest{
				Data:    append([]byte(nil), buf[:n]...),
				KeyID:   keyName,
				KeyType: keyType,
				Options: options,
			}
			if err := stream.Send(req); err != nil {
				// io.EOF means the server ended the stream; its status comes from CloseAndRecv.
				if errors.Is(err, io.EOF) {
					break send
				}
				return nil, fmt.Errorf("failed to send chunk: %w", err)
			}
			sent = true
		}
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break send
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read content: %w", readErr)
		}
	}

	resp, err := stream.CloseAndRecv()
	if err != nil {
		return nil, fmt.Errorf("failed to receive signature: %w", err)
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return resp.Signature, nil
}

// OpenSignStream opens a raw sign stream for callers that build chunks themselves.
func (c *Client) OpenSignStream(
	ctx context.Context,
) (grpc.ClientStreamingClient[SignStreamRequest, SignStreamResponse], error) {
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], SignStreamMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to open sign stream: %w", err)
	}
	return &signStreamClient{ClientStream: stream}, nil
}
