package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"
)

func startHTTP(t *testing.T, status int) int {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := &http.Server{Handler: mux}
	go srv.Serve(listener)
	t.Cleanup(func() { srv.Close() })
	return listener.Addr().(*net.TCPAddr).Port
}

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestHTTPCheckHealthy(t *testing.T) {
	port := startHTTP(t, http.StatusOK)

	err := Check(context.Background(), Config{Type: "http", Path: "/", Port: port, Timeout: time.Second})
	if err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
}

func TestHTTPCheckUnhealthyStatus(t *testing.T) {
	port := startHTTP(t, http.StatusInternalServerError)

	err := Check(context.Background(), Config{Type: "http", Path: "/", Port: port, Timeout: time.Second})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestHTTPCheckExpectedStatus(t *testing.T) {
	port := startHTTP(t, http.StatusNoContent)

	if err := Check(context.Background(), Config{Type: "http", Path: "/", Port: port}); err != nil {
		t.Errorf("204 should pass when no status is required, got %v", err)
	}
	err := Check(context.Background(), Config{Type: "http", Path: "/", Status: http.StatusOK, Port: port})
	if err == nil {
		t.Fatal("expected error when 200 is required and server answers 204")
	}
}

func TestHTTPCheckRefused(t *testing.T) {
	port := closedPort(t)

	if err := Check(context.Background(), Config{Type: "http", Path: "/", Port: port}); err == nil {
		t.Fatal("expected error for closed port")
	}
}

func TestTCPCheck(t *testing.T) {
	port := startHTTP(t, http.StatusOK)

	if err := Check(context.Background(), Config{Type: "tcp", Port: port}); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
	if err := Check(context.Background(), Config{Type: "tcp", Port: closedPort(t)}); err == nil {
		t.Error("expected error for closed port")
	}
}

func TestUnknownType(t *testing.T) {
	if err := Check(context.Background(), Config{Type: "grpc", Port: 1}); err == nil {
		t.Fatal("expected error for unknown probe type")
	}
}

func TestWaitReadyTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := WaitReady(ctx, Config{Type: "tcp", Port: closedPort(t)}, 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestWaitReadyEventuallyPasses(t *testing.T) {
	port := closedPort(t)

	lnCh := make(chan net.Listener, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			lnCh <- nil
			return
		}
		lnCh <- ln
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := WaitReady(ctx, Config{Type: "tcp", Port: port}, 20*time.Millisecond)
	if ln := <-lnCh; ln != nil {
		ln.Close()
	} else {
		t.Skip("port was taken before the listener could bind")
	}
	if err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
}
