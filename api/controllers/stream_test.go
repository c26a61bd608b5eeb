package controllers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/medfinder-backend/internal/realtime"
	"github.com/angelmondragon/medfinder-backend/pkg/config"
)

func TestStockStreamDeliversEnvelopes(t *testing.T) {
	hub := realtime.NewHub(nil)
	srv := httptest.NewServer(StockStream(hub, config.RealtimeConfig{ClientBuffer: 4, KeepAlive: time.Minute}, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream, got %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != ": connected" {
		t.Fatalf("expected connected comment, got %q (%v)", line, err)
	}

	event := realtime.StockUpdatedEvent{PharmacyID: uuid.New(), MedicineID: uuid.New(), Quantity: 7}
	env, err := realtime.NewEnvelope(realtime.EventStockUpdated, event, time.Now())
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	hub.Broadcast(env)

	var eventLine, dataLine string
	for eventLine == "" || dataLine == "" {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "event: "):
			eventLine = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLine = strings.TrimPrefix(line, "data: ")
		}
	}

	if eventLine != realtime.EventStockUpdated {
		t.Fatalf("expected StockUpdated event, got %q", eventLine)
	}
	var got realtime.Envelope
	if err := json.Unmarshal([]byte(dataLine), &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	var payload realtime.StockUpdatedEvent
	if err := json.Unmarshal(got.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload != event {
		t.Fatalf("expected %+v got %+v", event, payload)
	}
}

func TestStockStreamUnsubscribesOnDisconnect(t *testing.T) {
	hub := realtime.NewHub(nil)
	srv := httptest.NewServer(StockStream(hub, config.RealtimeConfig{ClientBuffer: 1}, nil))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := bufio.NewReader(resp.Body).ReadString('\n'); err != nil {
		t.Fatalf("read connected: %v", err)
	}
	if hub.Len() != 1 {
		t.Fatalf("expected one subscriber, got %d", hub.Len())
	}

	cancel()
	resp.Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected subscriber removed after disconnect, still %d", hub.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
