package main

import (
	"context"
	"testing"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(context.Background(), "down", nil); err == nil {
		t.Fatalf("expected error for unsupported command")
	}
}

func TestRunUpWithoutDatabaseIsNoop(t *testing.T) {
	if err := run(context.Background(), "up", nil); err != nil {
		t.Fatalf("expected nil database to be a no-op, got %v", err)
	}
}
