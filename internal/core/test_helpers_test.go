package core

import (
	"bytes"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// nextEvent pops the next buffered event from a client driven synchronously
// (no Run goroutine involved).
func nextEvent(t *testing.T, c *Client) *Event {
	t.Helper()

	select {
	case ev := <-c.Events:
		return ev
	default:
		t.Fatalf("expected a buffered event for %s, got none", c.ID)
		return nil
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case ev := <-c.Events:
		t.Fatalf("expected no event for %s, got kind %v", c.ID, ev.Kind)
	default:
	}
}

func validMessageEnvelope(roomID, messageID string) *MessageEnvelope {
	return &MessageEnvelope{
		MessageID: messageID,
		RoomID:    roomID,
		Payload: &EncryptedPayload{
			Encrypted: bytes.Repeat([]byte{0xAB}, 32),
			IV:        bytes.Repeat([]byte{0x01}, 12),
			Algorithm: AlgorithmAESGCM,
		},
	}
}

func validFileEnvelope(roomID, fileID string, size int64) *FileEnvelope {
	return &FileEnvelope{
		FileID: fileID,
		RoomID: roomID,
		Data: &EncryptedPayload{
			Encrypted: bytes.Repeat([]byte{0xCD}, 64),
			IV:        bytes.Repeat([]byte{0x02}, 12),
			Algorithm: AlgorithmAESGCM,
		},
		Metadata: &FileMetadata{Name: "notes.txt.enc", Size: size, MimeType: "application/octet-stream"},
	}
}
