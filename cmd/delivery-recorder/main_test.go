package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"golang-wa-broadcast/internal/app"
	"golang-wa-broadcast/internal/domain"

	"github.com/google/uuid"
)

func TestPrintSummary(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	sum := app.DeliverySummary{
		BroadcastID: uuid.MustParse("5f0c7a52-7d55-4c4e-9d3a-0b8f1f7a9f10"),
		Kind:        domain.KindMedia,
		Total:       3,
		Sent:        1,
		Unreachable: 1,
		Failures:    []domain.DeliveryEvent{{Number: "333333", Error: "stream replaced"}},
		FirstAt:     start,
		LastAt:      start.Add(4 * time.Second),
	}

	var buf bytes.Buffer
	printSummary(&buf, sum)
	out := buf.String()

	for _, want := range []string{
		"Broadcast 5f0c7a52-7d55-4c4e-9d3a-0b8f1f7a9f10 (media)",
		"Recipients:  3",
		"Sent:        1",
		"Unreachable: 1",
		"Failed:      1",
		"Duration:    4s",
		"- 333333: stream replaced",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
