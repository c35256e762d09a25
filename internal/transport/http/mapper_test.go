package http

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/driftroom/driftroom-server/internal/core"
	"github.com/driftroom/driftroom-server/internal/proto"
)

func testLogger() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestInboundToCommandUnknownType(t *testing.T) {
	_, protoErr, err := inboundToCommand(proto.Inbound{Type: "subscribe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if protoErr == nil || protoErr.Code != "invalid_message" {
		t.Fatalf("expected invalid_message, got %+v", protoErr)
	}
}

func TestInboundToCommandJoinRequiresCode(t *testing.T) {
	inbound := proto.Inbound{
		Type: proto.InboundTypeJoinRoom,
		Data: rawJSON(t, proto.JoinRoomData{}),
	}
	_, protoErr, err := inboundToCommand(inbound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if protoErr == nil || protoErr.Code != core.ErrCodeBadRequest {
		t.Fatalf("expected bad_request, got %+v", protoErr)
	}
}

func TestInboundToCommandMalformedData(t *testing.T) {
	inbound := proto.Inbound{
		Type: proto.InboundTypeSendMessage,
		Data: json.RawMessage(`{"roomId": 42}`),
	}
	if _, _, err := inboundToCommand(inbound); err == nil {
		t.Fatalf("expected unmarshal error for malformed data")
	}
}

func TestInboundToCommandSendMessageMapping(t *testing.T) {
	inbound := proto.Inbound{
		Type: proto.InboundTypeSendMessage,
		Data: rawJSON(t, proto.SendMessageData{
			RoomID:    "ROOM0001",
			MessageID: "m-1",
			EncryptedMessage: &proto.EncryptedPayload{
				Encrypted: bytes.Repeat([]byte{0xAB}, 16),
				IV:        bytes.Repeat([]byte{0x01}, 12),
				Algorithm: core.AlgorithmAESGCM,
			},
		}),
	}

	cmd, protoErr, err := inboundToCommand(inbound)
	if err != nil || protoErr != nil {
		t.Fatalf("unexpected failure: %v %+v", err, protoErr)
	}
	if cmd.Kind != core.CommandSendMessage || cmd.Message == nil {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	if cmd.Message.RoomID != "ROOM0001" || cmd.Message.MessageID != "m-1" {
		t.Fatalf("envelope fields lost in mapping: %+v", cmd.Message)
	}
	if cmd.Message.Payload == nil || cmd.Message.Payload.Algorithm != core.AlgorithmAESGCM {
		t.Fatalf("payload lost in mapping")
	}
}

func TestInboundToCommandShareFileMapping(t *testing.T) {
	inbound := proto.Inbound{
		Type: proto.InboundTypeShareFile,
		Data: rawJSON(t, proto.ShareFileData{
			RoomID: "ROOM0001",
			FileID: "f-1",
			EncryptedFile: &proto.EncryptedPayload{
				Encrypted: bytes.Repeat([]byte{0xCD}, 64),
				IV:        bytes.Repeat([]byte{0x02}, 12),
				Algorithm: core.AlgorithmAESGCM,
			},
			FileMetadata: &proto.FileMetadata{Name: "x.enc", Size: 1024},
		}),
	}

	cmd, protoErr, err := inboundToCommand(inbound)
	if err != nil || protoErr != nil {
		t.Fatalf("unexpected failure: %v %+v", err, protoErr)
	}
	if cmd.Kind != core.CommandShareFile || cmd.File == nil || cmd.File.Metadata == nil {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	if cmd.File.Metadata.Size != 1024 {
		t.Fatalf("metadata lost in mapping: %+v", cmd.File.Metadata)
	}
}

func TestOutboundFromEventErrorMapping(t *testing.T) {
	out := outboundFromEvent(&core.Event{
		Kind:  core.EventError,
		Error: &core.RelayError{Code: core.ErrCodeRoomNotFound, Message: "no such room"},
	})
	if out.Type != proto.OutboundTypeError || out.Error == nil || out.Error.Code != core.ErrCodeRoomNotFound {
		t.Fatalf("unexpected outbound: %+v", out)
	}
}

func TestOutboundFromEventNewMessage(t *testing.T) {
	now := time.Now()
	out := outboundFromEvent(&core.Event{
		Kind: core.EventNewMessage,
		Room: "ROOM0001",
		Message: &core.MessageEnvelope{
			MessageID: "m-1",
			RoomID:    "ROOM0001",
			Sender:    "anon-a",
			Payload: &core.EncryptedPayload{
				Encrypted: bytes.Repeat([]byte{0xAB}, 16),
				IV:        bytes.Repeat([]byte{0x01}, 12),
				Algorithm: core.AlgorithmAESGCM,
			},
			Timestamp: now,
		},
	})

	if out.Type != proto.OutboundTypeNewMessage {
		t.Fatalf("unexpected type: %s", out.Type)
	}
	data, ok := out.Data.(proto.NewMessageData)
	if !ok {
		t.Fatalf("unexpected data type: %T", out.Data)
	}
	if data.Sender != "anon-a" || data.Timestamp != now.UnixMilli() {
		t.Fatalf("unexpected payload: %+v", data)
	}
}
