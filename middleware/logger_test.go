package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/yourusername/pulsar"
)

func TestRequestTimeLoggerLogsSuccessEntry(t *testing.T) {
	var buf bytes.Buffer
	u, _ := url.Parse("/widgets")
	req := pulsar.NewRequest("GET", u, "HTTP/1.1", http.Header{}, nil)

	next := pulsar.BuildNext(pulsar.HandlerFunc(func(*pulsar.Request) (*pulsar.Response, error) {
		return pulsar.Text("hello"), nil
	}), nil)

	if _, err := RequestTimeLogger(&buf).Handle(req, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry LogEntry
	if err := json.NewDecoder(strings.NewReader(buf.String())).Decode(&entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry.Method != "GET" {
		t.Errorf("got method %q", entry.Method)
	}
	if entry.Path != "/widgets" {
		t.Errorf("got path %q", entry.Path)
	}
	if entry.Status != 200 {
		t.Errorf("got status %d, want 200", entry.Status)
	}
	if entry.Error != "" {
		t.Errorf("expected no error field, got %q", entry.Error)
	}
}

func TestRequestTimeLoggerLogsErrorEntry(t *testing.T) {
	var buf bytes.Buffer
	u, _ := url.Parse("/widgets")
	req := pulsar.NewRequest("GET", u, "HTTP/1.1", http.Header{}, nil)

	next := pulsar.BuildNext(pulsar.HandlerFunc(func(*pulsar.Request) (*pulsar.Response, error) {
		return nil, pulsar.ErrInternal.WithCause(errors.New("db down"))
	}), nil)

	if _, err := RequestTimeLogger(&buf).Handle(req, next); err == nil {
		t.Fatal("expected error to propagate")
	}

	var entry LogEntry
	if err := json.NewDecoder(strings.NewReader(buf.String())).Decode(&entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry.Status != 500 {
		t.Errorf("got status %d, want 500", entry.Status)
	}
	if entry.Error == "" {
		t.Error("expected error field to be populated")
	}
}

func TestRequestTimeLoggerHandlesNilURI(t *testing.T) {
	var buf bytes.Buffer
	req := pulsar.NewRequest("GET", nil, "HTTP/1.1", http.Header{}, nil)

	next := pulsar.BuildNext(pulsar.HandlerFunc(func(*pulsar.Request) (*pulsar.Response, error) {
		return pulsar.Empty(), nil
	}), nil)

	if _, err := RequestTimeLogger(&buf).Handle(req, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry LogEntry
	if err := json.NewDecoder(strings.NewReader(buf.String())).Decode(&entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry.Path != "" {
		t.Errorf("expected empty path for nil URI, got %q", entry.Path)
	}
}
