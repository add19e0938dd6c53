package storage

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/zaliyaya/RunConnect/internal/models"
)

// TestNotificationWireForm pins the empty-vs-absent distinction on the
// wire: an empty snapshot must serialize as an empty array so the
// receiver applies it, while a field that was not set stays nil after
// the round trip.
func TestNotificationWireForm(t *testing.T) {
	t.Run("empty events snapshot survives the round trip", func(t *testing.T) {
		wire, err := json.Marshal(Notification{Events: []models.Event{}, OriginID: "device-a"})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(wire), `"events":[]`) {
			t.Fatalf("empty snapshot omitted from the wire: %s", wire)
		}

		var got Notification
		if err := json.Unmarshal(wire, &got); err != nil {
			t.Fatal(err)
		}
		if got.Events == nil {
			t.Error("empty events snapshot decoded as absent")
		}
		if got.Participants != nil {
			t.Error("unset participants field decoded as present")
		}
	})

	t.Run("empty roster snapshot survives the round trip", func(t *testing.T) {
		wire, err := json.Marshal(Notification{Participants: []models.EventRoster{}, OriginID: "device-a"})
		if err != nil {
			t.Fatal(err)
		}
		var got Notification
		if err := json.Unmarshal(wire, &got); err != nil {
			t.Fatal(err)
		}
		if got.Participants == nil {
			t.Error("empty roster snapshot decoded as absent")
		}
		if got.Events != nil {
			t.Error("unset events field decoded as present")
		}
	})
}
