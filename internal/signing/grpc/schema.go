package grpc

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// FileDescriptor describes signatrust.proto. Messages on the wire are plain protobuf,
// so any client generated from signatrust.proto can call the service.
var FileDescriptor protoreflect.FileDescriptor

var (
	requestDesc  protoreflect.MessageDescriptor
	responseDesc protoreflect.MessageDescriptor

	requestData    protoreflect.FieldDescriptor
	requestKeyID   protoreflect.FieldDescriptor
	requestKeyType protoreflect.FieldDescriptor
	requestOptions protoreflect.FieldDescriptor

	responseSignature protoreflect.FieldDescriptor
	responseError     protoreflect.FieldDescriptor
)

func init() {
	file, err := protodesc.NewFile(fileDescriptorProto(), new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("signatrust.proto: %v", err))
	}
	FileDescriptor = file

	requestDesc = file.Messages().ByName("SignStreamRequest")
	responseDesc = file.Messages().ByName("SignStreamResponse")

	requestData = requestDesc.Fields().ByName("data")
	requestKeyID = requestDesc.Fields().ByName("key_id")
	requestKeyType = requestDesc.Fields().ByName("key_type")
	requestOptions = requestDesc.Fields().ByName("options")

	responseSignature = responseDesc.Fields().ByName("signature")
	responseError = responseDesc.Fields().ByName("error")
}

func field(
	name string,
	number int32,
	label descriptorpb.FieldDescriptorProto_Label,
	kind descriptorpb.FieldDescriptorProto_Type,
) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  label.Enum(),
		Type:   kind.Enum(),
	}
}

// fileDescriptorProto mirrors signatrust.proto.
func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	const (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
		bytes    = descriptorpb.FieldDescriptorProto_TYPE_BYTES
		str      = descriptorpb.FieldDescriptorProto_TYPE_STRING
		message  = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)

	options := field("options", 4, repeated, message)
	options.TypeName = proto.String(".signatrust.SignStreamRequest.OptionsEntry")

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("signatrust.proto"),
		Package: proto.String("signatrust"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("SignStreamRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("data", 1, optional, bytes),
					field("key_id", 2, optional, str),
					field("key_type", 3, optional, str),
					options,
				},
				NestedType: []*descriptorpb.DescriptorProto{
					{
						Name: proto.String("OptionsEntry"),
						Field: []*descriptorpb.FieldDescriptorProto{
							field("key", 1, optional, str),
							field("value", 2, optional, str),
						},
						Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
					},
				},
			},
			{
				Name: proto.String("SignStreamResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("signature", 1, optional, bytes),
					field("error", 2, optional, str),
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto.String("Signatrust"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{
						Name:            proto.String("SignStream"),
						InputType:       proto.String(".signatrust.SignStreamRequest"),
						OutputType:      proto.String(".signatrust.SignStreamResponse"),
						ClientStreaming: proto.Bool(true),
					},
				},
			},
		},
	}
}

// Message converts r to its protobuf form.
func (r *SignStreamRequest) Message() proto.Message {
	msg := dynamicpb.NewMessage(requestDesc)
	if len(r.Data) > 0 {
		msg.Set(requestData, protoreflect.ValueOfBytes(r.Data))
	}
	if r.KeyID != "" {
		msg.Set(requestKeyID, protoreflect.ValueOfString(r.KeyID))
	}
	if r.KeyType != "" {
		msg.Set(requestKeyType, protoreflect.ValueOfString(r.KeyType))
	}
	if len(r.Options) > 0 {
		options := msg.Mutable(requestOptions).Map()
		for k, v := range r.Options {
			options.Set(protoreflect.ValueOfString(k).MapKey(), protoreflect.ValueOfString(v))
		}
	}
	return msg
}

func requestFromMessage(msg protoreflect.Message) *SignStreamRequest {
	req := &SignStreamRequest{
		Data:    msg.Get(requestData).Bytes(),
		KeyID:   msg.Get(requestKeyID).String(),
		KeyType: msg.Get(requestKeyType).String(),
	}
	if options := msg.Get(requestOptions).Map(); options.Len() > 0 {
		req.Options = make(map[string]string, options.Len())
		options.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
			req.Options[k.String()] = v.String()
			return true
		})
	}
	return req
}

// Message converts r to its protobuf form.
func (r *SignStreamResponse) Message() proto.Message {
	msg := dynamicpb.NewMessage(responseDesc)
	if len(r.Signature) > 0 {
		msg.Set(responseSignature, protoreflect.ValueOfBytes(r.Signature))
	}
	if r.Error != "" {
		msg.Set(responseError, protoreflect.ValueOfString(r.Error))
	}
	return msg
}

func responseFromMessage(msg protoreflect.Message) *SignStreamResponse {
	return &SignStreamResponse{
		Signature: msg.Get(responseSignature).Bytes(),
		Error:     msg.Get(responseError).String(),
	}
}

// signStreamServer adapts a grpc.ServerStream carrying protobuf messages to the
// typed stream seen by SignatrustServer.
type signStreamServer struct {
	grpc.ServerStream
}

func (s *signStreamServer) Recv() (*SignStreamRequest, error) {
	msg := dynamicpb.NewMessage(requestDesc)
	if err := s.ServerStream.RecvMsg(msg); err != nil {
		return nil, err
	}
	return requestFromMessage(msg), nil
}

func (s *signStreamServer) SendAndClose(resp *SignStreamResponse) error {
	return s.ServerStream.SendMsg(resp.Message())
}

type signStreamClient struct {
	grpc.ClientStream
}

func (c *signStreamClient) Send(req *SignStreamRequest) error {
	return c.ClientStream.SendMsg(req.Message())
}

func (c *signStreamClient) CloseAndRecv() (*SignStreamResponse, error) {
	if err := c.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	msg := dynamicpb.NewMessage(responseDesc)
	if err := c.ClientStream.RecvMsg(msg); err != nil {
		return nil, err
	}
	return responseFromMessage(msg), nil
}
