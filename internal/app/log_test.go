package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestTabHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "collect-1a2b3c4d",
			level:   slog.LevelInfo,
			message: "snapshot written",
			want:    "2024-06-15T14:30:45Z\tINFO\tcollect-1a2b3c4d\tsnapshot written\n",
		},
		{
			name:    "warn level",
			opID:    "collect-1a2b3c4d",
			level:   slog.LevelWarn,
			message: "lineage fetch failed",
			want:    "2024-06-15T14:30:45Z\tWARN\tcollect-1a2b3c4d\tlineage fetch failed\n",
		},
		{
			name:    "with record attrs",
			opID:    "export-9f8e7d6c",
			level:   slog.LevelInfo,
			message: "snapshot loaded",
			attrs:   []slog.Attr{slog.String("file", "sales_20240310_142500.json"), slog.Int("records", 42)},
			want:    "2024-06-15T14:30:45Z\tINFO\texport-9f8e7d6c\tsnapshot loaded\tfile=sales_20240310_142500.json\trecords=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &tabHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestTabHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &tabHandler{w: &buf, opID: "op-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("target", "local")})

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "snapshot written", 0)
	r.AddAttrs(slog.String("file", "a.json"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "\ttarget=local") {
		t.Errorf("output missing pre-set attr: %q", got)
	}
	if !strings.Contains(got, "\tfile=a.json") {
		t.Errorf("output missing record attr: %q", got)
	}

	// The original handler must be unaffected.
	buf.Reset()
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if strings.Contains(buf.String(), "target=local") {
		t.Errorf("original handler picked up attrs: %q", buf.String())
	}
}

func TestTabHandler_Enabled(t *testing.T) {
	h := &tabHandler{level: slog.LevelInfo}

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(debug) = true at info level")
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = false at info level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false at info level")
	}
}
