package http

import (
	"encoding/json"

	"github.com/driftroom/driftroom-server/internal/core"
	"github.com/driftroom/driftroom-server/internal/proto"
)

func toCorePayload(p *proto.EncryptedPayload) *core.EncryptedPayload {
	if p == nil {
		return nil
	}
	return &core.EncryptedPayload{
		Encrypted: p.Encrypted,
		IV:        p.IV,
		Algorithm: p.Algorithm,
	}
}

func toProtoPayload(p *core.EncryptedPayload) *proto.EncryptedPayload {
	if p == nil {
		return nil
	}
	return &proto.EncryptedPayload{
		Encrypted: p.Encrypted,
		IV:        p.IV,
		Algorithm: p.Algorithm,
	}
}

func toProtoMetadata(m *core.FileMetadata) *proto.FileMetadata {
	if m == nil {
		return nil
	}
	return &proto.FileMetadata{
		Name:     m.Name,
		Size:     m.Size,
		MimeType: m.MimeType,
	}
}

// inboundToCommand maps one wire message to a core command. A non-nil
// proto.Error means the message was structurally unusable and should be
// answered directly; a non-nil error means the connection is misbehaving.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeAuthenticate:
		return &core.Command{Kind: core.CommandAuthenticate}, nil, nil

	case proto.InboundTypeSetupProfile:
		var data proto.SetupProfileData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:        core.CommandSetupProfile,
			DisplayName: data.DisplayName,
		}, nil, nil

	case proto.InboundTypeCreateRoom:
		return &core.Command{Kind: core.CommandCreateRoom}, nil, nil

	case proto.InboundTypeJoinRoom:
		var data proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomCode == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomCode is required"}, nil
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: data.RoomCode}, nil, nil

	case proto.InboundTypeLeaveRoom:
		var data proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomCode == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomCode is required"}, nil
		}
		return &core.Command{Kind: core.CommandLeaveRoom, Room: data.RoomCode}, nil, nil

	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Room: data.RoomID,
			Message: &core.MessageEnvelope{
				MessageID: data.MessageID,
				RoomID:    data.RoomID,
				Payload:   toCorePayload(data.EncryptedMessage),
			},
		}, nil, nil

	case proto.InboundTypeShareFile:
		var data proto.ShareFileData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		var meta *core.FileMetadata
		if data.FileMetadata != nil {
			meta = &core.FileMetadata{
				Name:     data.FileMetadata.Name,
				Size:     data.FileMetadata.Size,
				MimeType: data.FileMetadata.MimeType,
			}
		}
		return &core.Command{
			Kind: core.CommandShareFile,
			Room: data.RoomID,
			File: &core.FileEnvelope{
				FileID:   data.FileID,
				RoomID:   data.RoomID,
				Data:     toCorePayload(data.EncryptedFile),
				Metadata: meta,
			},
		}, nil, nil

	case proto.InboundTypeTyping:
		var data proto.TypingData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandTyping,
			Room:     data.RoomID,
			IsTyping: data.IsTyping,
		}, nil, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventAuthenticated:
		return proto.Outbound{
			Type: proto.OutboundTypeAuthenticated,
			Data: proto.AuthenticatedData{
				Success:      true,
				AnonymousID:  event.AnonymousID,
				SessionToken: event.SessionToken,
			},
		}

	case core.EventProfileComplete:
		var profile *proto.ProfileInfo
		if event.Profile != nil {
			profile = &proto.ProfileInfo{DisplayName: event.Profile.DisplayName}
		}
		return proto.Outbound{
			Type: proto.OutboundTypeProfileComplete,
			Data: proto.ProfileCompleteData{Success: true, Profile: profile},
		}

	case core.EventProfileFailed:
		return proto.Outbound{
			Type: proto.OutboundTypeProfileFailed,
			Data: proto.ProfileFailedData{Error: errorCode(event.Error)},
		}

	case core.EventRoomCreated:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomCreated,
			Data: proto.RoomCreatedData{
				Success: true,
				Room:    proto.RoomInfo{ID: event.Room, Participants: event.Participants},
			},
		}

	case core.EventRoomJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomJoined,
			Data: proto.RoomJoinedData{
				Success: true,
				Room:    proto.RoomInfo{ID: event.Room, Participants: event.Participants},
			},
		}

	case core.EventUserJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeUserJoined,
			Data: proto.UserJoinedData{
				RoomID:       event.Room,
				User:         event.User,
				Participants: event.Participants,
			},
		}

	case core.EventUserLeft:
		return proto.Outbound{
			Type: proto.OutboundTypeUserLeft,
			Data: proto.UserLeftData{
				RoomID:       event.Room,
				User:         event.User,
				Participants: event.Participants,
			},
		}

	case core.EventNewMessage:
		msg := event.Message
		return proto.Outbound{
			Type: proto.OutboundTypeNewMessage,
			Data: proto.NewMessageData{
				MessageID:        msg.MessageID,
				RoomID:           msg.RoomID,
				Sender:           msg.Sender,
				EncryptedPayload: toProtoPayload(msg.Payload),
				Timestamp:        msg.Timestamp.UnixMilli(),
			},
		}

	case core.EventMessageDelivered:
		return proto.Outbound{
			Type: proto.OutboundTypeMessageDelivered,
			Data: proto.MessageDeliveredData{MessageID: event.MessageID, Delivered: true},
		}

	case core.EventMessageFailed:
		return proto.Outbound{
			Type: proto.OutboundTypeMessageFailed,
			Data: proto.MessageFailedData{Error: errorCode(event.Error), MessageID: event.MessageID},
		}

	case core.EventNewFile:
		file := event.File
		return proto.Outbound{
			Type: proto.OutboundTypeNewFile,
			Data: proto.NewFileData{
				FileID:        file.FileID,
				RoomID:        file.RoomID,
				Sender:        file.Sender,
				EncryptedFile: toProtoPayload(file.Data),
				FileMetadata:  toProtoMetadata(file.Metadata),
				Timestamp:     file.Timestamp.UnixMilli(),
			},
		}

	case core.EventFileShared:
		return proto.Outbound{
			Type: proto.OutboundTypeFileShared,
			Data: proto.FileSharedData{FileID: event.FileID, Shared: true},
		}

	case core.EventFileFailed:
		return proto.Outbound{
			Type: proto.OutboundTypeFileFailed,
			Data: proto.FileFailedData{Error: errorCode(event.Error), FileID: event.FileID},
		}

	case core.EventUserTyping:
		return proto.Outbound{
			Type: proto.OutboundTypeUserTyping,
			Data: proto.UserTypingData{
				RoomID:   event.Room,
				User:     event.User,
				IsTyping: event.IsTyping,
			},
		}

	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}

	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}

func errorCode(err *core.RelayError) string {
	if err == nil {
		return "unknown"
	}
	return err.Code
}
