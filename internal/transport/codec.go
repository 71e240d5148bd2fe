package transport

import (
	"encoding/json"
	"fmt"

	"NetPulse/internal/model"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Codec turns a Reading into the bytes carried by a transport and back. Only the content
// text crosses the wire.
type Codec interface {
	Name() string
	Encode(reading model.Reading) ([]byte, error)
	Decode(data []byte) (model.Reading, error)
}

// NewCodec returns the codec registered under name: json, proto or text.
func NewCodec(name string) (Codec, error) {
	switch name {
	case "json", "":
		return JSONCodec{}, nil
	case "proto":
		return ProtoCodec{}, nil
	case "text":
		return TextCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec: '%s'", name)
	}
}

// message is the JSON envelope the dashboard reads `content` from.
type message struct {
	Content string `json:"content"`
}

// JSONCodec encodes {"content": "..."}.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(reading model.Reading) ([]byte, error) {
	return json.Marshal(message{Content: reading.Content})
}

func (JSONCodec) Decode(data []byte) (model.Reading, error) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return model.Reading{}, fmt.Errorf("failed to decode json reading: %w", err)
	}
	return model.ParseContent(msg.Content)
}

// ProtoCodec encodes a protobuf Struct with a single `content` field.
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return "proto" }

func (ProtoCodec) Encode(reading model.Reading) ([]byte, error) {
	msg := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"content": structpb.NewStringValue(reading.Content),
		},
	}
	return proto.Marshal(msg)
}

func (ProtoCodec) Decode(data []byte) (model.Reading, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return model.Reading{}, fmt.Errorf("error unmarshalling protobuf: %w", err)
	}
	v, ok := msg.Fields["content"]
	if !ok {
		return model.Reading{}, fmt.Errorf("protobuf reading has no content field")
	}
	return model.ParseContent(v.GetStringValue())
}

// TextCodec sends the content text as is.
type TextCodec struct{}

func (TextCodec) Name() string { return "text" }

func (TextCodec) Encode(reading model.Reading) ([]byte, error) {
	return []byte(reading.Content), nil
}

func (TextCodec) Decode(data []byte) (model.Reading, error) {
	return model.ParseContent(string(data))
}
