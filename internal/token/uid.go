package token

import (
	"encoding/base64"
	"errors"
	"strconv"
)

// ErrInvalidUID is returned for uid path segments that do not decode to an id.
var ErrInvalidUID = errors.New("invalid uid")

// EncodeUID encodes a user id for use in a link path.
func EncodeUID(id uint64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(id, 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (uint64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, ErrInvalidUID
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidUID
	}
	return id, nil
}
