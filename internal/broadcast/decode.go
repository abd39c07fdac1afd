package broadcast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/swamyhotfoods/shopfront/internal/domain"
)

var ErrNoRecognizedFields = errors.New("update has no recognized fields")

// DecodeUpdate parses a client message into a sparse status update.
// Field names must match exactly; anything else is ignored. A recognized field with
// the wrong type rejects the whole message.
func DecodeUpdate(payload []byte) (domain.StatusUpdate, error) {
	var update domain.StatusUpdate

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return update, fmt.Errorf("invalid update: expected JSON object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return domain.StatusUpdate{}, fmt.Errorf("invalid update: %w", err)
	}

	targets := []struct {
		key string
		dst any
	}{
		{"shopOpen", &update.ShopOpen},
		{"cooking", &update.Cooking},
		{"holiday", &update.Holiday},
		{"holidayText", &update.HolidayText},
		{"noticeBoard", &update.NoticeBoard},
		{"noticeBoardText", &update.NoticeBoardText},
	}
	for _, t := range targets {
		raw, ok := fields[t.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, t.dst); err != nil {
			return domain.StatusUpdate{}, fmt.Errorf("invalid update field %q: %w", t.key, err)
		}
	}

	if update.IsEmpty() {
		return update, ErrNoRecognizedFields
	}
	return update, nil
}

func rejectReason(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, ErrNoRecognizedFields):
		return "empty"
	case errors.As(err, &typeErr):
		return "type"
	default:
		return "malformed"
	}
}
