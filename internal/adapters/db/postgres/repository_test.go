package postgres

import (
	"errors"
	"testing"

	"golang-wa-broadcast/internal/domain"
)

func TestRowMappingKeepsEvent(t *testing.T) {
	b := domain.NewBroadcast(domain.KindText)
	ev := domain.NewDeliveryEvent(b, "15551234567", domain.OutcomeFailed, errors.New("socket closed"))

	row := toRow(ev)
	if row.Outcome != "failed" || row.Error != "socket closed" || row.BroadcastID != b.ID {
		t.Fatalf("row = %+v", row)
	}

	back := fromRow(row)
	if back != ev {
		t.Fatalf("round trip = %+v, want %+v", back, ev)
	}
}
