package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const formatVersion = 1

// Encode serializes s into the compact binary storage format:
// version byte, two length-prefixed strings, two big-endian int64
// timestamps. The session ID is the Redis key and is not encoded.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(formatVersion)

	if len(s.UserID) > 255 {
		return nil, errors.New("user id too long")
	}
	buf.WriteByte(byte(len(s.UserID)))
	buf.WriteString(s.UserID)

	if len(s.Provider) > 255 {
		return nil, errors.New("provider too long")
	}
	buf.WriteByte(byte(len(s.Provider)))
	buf.WriteString(s.Provider)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a value produced by Encode. The caller fills in the ID.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	userID, err := readString(reader)
	if err != nil {
		return nil, err
	}
	s.UserID = userID

	provider, err := readString(reader)
	if err != nil {
		return nil, err
	}
	s.Provider = provider

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing session bytes")
	}

	return s, nil
}

func readString(reader *bytes.Reader) (string, error) {
	length, err := reader.ReadByte()
	if err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
