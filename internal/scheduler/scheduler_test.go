package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestAddSweepValidSpec(t *testing.T) {
	s := New(zerolog.Nop())
	if err := s.AddSweep("@every 10m", "gate", func() int { return 0 }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddSweepRejectsBadSpec(t *testing.T) {
	s := New(zerolog.Nop())
	if err := s.AddSweep("every now and then", "gate", func() int { return 0 }); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestStartStop(t *testing.T) {
	s := New(zerolog.Nop())
	if err := s.AddSweep("@every 1h", "sessions", func() int { return 1 }); err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop()
}
