package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONWithLevel(t *testing.T) {
	var buf bytes.Buffer
	Init("warn", "json", &buf)
	t.Cleanup(func() { Init("info", "json", nil) })

	Info("BookingService:CreateBooking:Start", "organizer", "alice@example.com")
	Warn("BookingService:CreateBooking:Rejected", "code", "SLOT_UNAVAILABLE")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "info should be filtered at warn level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "BookingService:CreateBooking:Rejected", entry["msg"])
	assert.Equal(t, "SLOT_UNAVAILABLE", entry["code"])
}

func TestInit_Text(t *testing.T) {
	var buf bytes.Buffer
	Init("debug", "text", &buf)
	t.Cleanup(func() { Init("info", "json", nil) })

	Debug("Store:Mutate", "booking_id", "b-1")
	assert.Contains(t, buf.String(), "booking_id=b-1")
}
